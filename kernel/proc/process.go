// Package proc implements processes and context switching: kernel-stack
// and address-space setup at creation time, the state machine governing a
// process's lifetime, and the low-level stack swap a context switch
// performs.
package proc

import (
	"sync/atomic"

	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/heap"
	"x86kernel/kernel/mem/pmm"
	"x86kernel/kernel/mem/vmm"
)

// State is one of a process's lifecycle states.
type State uint8

const (
	Blocked State = iota
	Ready
	Running
)

func (s State) String() string {
	switch s {
	case Blocked:
		return "blocked"
	case Ready:
		return "ready"
	case Running:
		return "running"
	default:
		return "invalid"
	}
}

var errInvalidTransition = &kernel.Error{Module: "proc", Message: "invalid process state transition"}

// kernelStackSize is the size of the kernel-mode stack allocated for every
// process.
const kernelStackSize = 16 * mem.PageSize

// Process is a single schedulable unit: an address space, a kernel stack
// and the saved stack pointer a context switch resumes from.
type Process struct {
	id             uint64
	addrSpace      *vmm.AddrSpace
	stackBase      mem.VirtAddr
	savedKernelRSP mem.VirtAddr
	state          State
}

// ID returns the process's unique, never-reused identifier.
func (p *Process) ID() uint64 { return p.id }

// State returns the process's current lifecycle state.
func (p *Process) State() State { return p.state }

// AddrSpace returns the process's address space.
func (p *Process) AddrSpace() *vmm.AddrSpace { return p.addrSpace }

var nextID atomic.Uint64

func allocateID() uint64 {
	return nextID.Add(1)
}

// allocFrameFn is overridden in tests, since the real implementation needs
// a live frame allocator.
var allocFrameFn vmm.FrameAllocatorFn = pmm.AllocFrame

// New creates a process with a fresh kernel stack and address space, in
// state Blocked. The caller is expected to unblock it (transition to
// Ready) once it has something to run.
func New() (*Process, *kernel.Error) {
	addrSpace, err := vmm.NewAddrSpace(allocFrameFn)
	if err != nil {
		return nil, err
	}

	stack, err := heap.Alloc(kernelStackSize)
	if err != nil {
		return nil, err
	}

	return &Process{
		id:             allocateID(),
		addrSpace:      addrSpace,
		stackBase:      stack,
		savedKernelRSP: stack.Add(int64(kernelStackSize)),
		state:          Blocked,
	}, nil
}

// NewWithEntry creates a process exactly like New, then lays down a fake
// call stack so that the first context switch into it "returns" into fn,
// which in turn "returns" into limbo: a process whose entry function
// returns is a bug, and limbo's job is to turn that into a panic rather
// than undefined behavior. The process starts in state Ready.
func NewWithEntry(fn func()) (*Process, *kernel.Error) {
	p, err := New()
	if err != nil {
		return nil, err
	}

	p.savedKernelRSP = buildEntryFrame(p.savedKernelRSP, fn)
	p.state = Ready
	return p, nil
}

// buildEntryFrame lays down the fake call stack jumpToContextAsm expects to
// find: from top to bottom, a return address into limbo, a return address
// into fn, then numCalleeSavedSlots zeroed callee-saved-register slots. It
// returns the new, lower stack pointer, pointing at the top callee-saved
// slot.
func buildEntryFrame(top mem.VirtAddr, fn func()) mem.VirtAddr {
	top = pushUintptr(top, functionAddr(limbo))
	top = pushUintptr(top, functionAddr(fn))
	for i := 0; i < numCalleeSavedSlots; i++ {
		top = pushUintptr(top, 0)
	}
	return top
}

// limbo is where a process's entry function "returns" to. An entry
// function returning at all means the process has nothing left to do and
// no one to hand control back to, which is always a bug.
func limbo() {
	kernel.Panic(&kernel.Error{Module: "proc", Message: "process entry function returned"})
}

// transition asserts that p is in one of from and moves it to to, panicking
// on any other transition.
func (p *Process) transition(to State, from ...State) {
	for _, f := range from {
		if p.state == f {
			p.state = to
			return
		}
	}
	kernel.Panic(errInvalidTransition)
}

// Unblock transitions a Blocked process to Ready.
func (p *Process) Unblock() { p.transition(Ready, Blocked) }

// Preempt transitions a Running process back to Ready.
func (p *Process) Preempt() { p.transition(Ready, Running) }

// Block transitions a Running process to Blocked.
func (p *Process) Block() { p.transition(Blocked, Running) }

// Destroy releases the process's kernel stack and address space. The
// process must not be Running.
func (p *Process) Destroy(freeFn vmm.FrameFreerFn) {
	if p.state == Running {
		kernel.Panic(errInvalidTransition)
	}
	p.addrSpace.Destroy(freeFn)
	heap.Free(p.stackBase)
}
