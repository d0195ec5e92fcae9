package proc

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
)

// JumpToContext runs p for the first time on this CPU: there is no current
// process whose state needs saving. p must be Ready.
func JumpToContext(p *Process) {
	if p.state != Ready {
		kernel.Panic(errInvalidTransition)
	}
	p.state = Running
	p.addrSpace.Activate()
	jumpToContextAsm(p.savedKernelRSP)
}

// ContextSwitch saves curr's execution state and resumes to. curr must be
// Running or Blocked; to must be Ready.
func ContextSwitch(curr, to *Process) {
	switch curr.state {
	case Running:
		curr.state = Ready
	case Blocked:
		// stays Blocked
	default:
		kernel.Panic(errInvalidTransition)
	}
	if to.state != Ready {
		kernel.Panic(errInvalidTransition)
	}
	to.state = Running

	to.addrSpace.Activate()
	contextSwitchAsm(&curr.savedKernelRSP, to.savedKernelRSP)
}

// jumpToContextAsm loads RSP from rsp and pops the callee-saved register
// frame NewWithEntry (or a prior contextSwitchAsm) laid down, then returns
// into whatever return address sits on top of it. It never returns to its
// caller.
func jumpToContextAsm(rsp mem.VirtAddr)

// contextSwitchAsm pushes the current callee-saved registers, stores the
// resulting stack pointer through savedRSP, loads RSP from toRSP, and pops
// that stack's callee-saved registers before returning into it. Their
// count and order must match numCalleeSavedSlots and the fake frame
// NewWithEntry builds.
func contextSwitchAsm(savedRSP *mem.VirtAddr, toRSP mem.VirtAddr)
