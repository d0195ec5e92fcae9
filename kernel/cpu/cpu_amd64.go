// Package cpu exposes the architecture primitives the rest of the kernel
// needs: control-register access, MSRs, CPUID, interrupt masking and the
// instructions with no pure-Go equivalent. Each function here is implemented
// in cpu_amd64.s.
package cpu

// Halt stops instruction execution on the current CPU. It executes HLT in an
// endless loop, so it never returns.
func Halt()

// Pause executes the PAUse instruction; used by busy-wait loops to reduce
// memory-bus contention and power draw.
func Pause()

// EnableInterrupts unmasks maskable interrupts on the current CPU (STI).
func EnableInterrupts()

// DisableInterrupts masks maskable interrupts on the current CPU (CLI).
func DisableInterrupts()

// InterruptsEnabled reports whether RFLAGS.IF is currently set.
func InterruptsEnabled() bool

// FlushTLBEntry invalidates the TLB entry for the given virtual address.
func FlushTLBEntry(virtAddr uintptr)

// ReadCR2 returns the faulting address recorded by the last page fault.
func ReadCR2() uint64

// ReadCR3 returns the raw contents of CR3 (PML4 physical address plus the
// low PCID/flag bits).
func ReadCR3() uint64

// WriteCR3 loads CR3 with the given value and implicitly flushes the TLB
// (barring global pages).
func WriteCR3(value uint64)

// ID executes CPUID with EAX=leaf, ECX=0 and returns EAX, EBX, ECX, EDX.
func ID(leaf uint32) (eax, ebx, ecx, edx uint32)

// ReadMSR returns the 64-bit value of the given model-specific register.
func ReadMSR(msr uint32) uint64

// WriteMSR writes a 64-bit value to the given model-specific register.
func WriteMSR(msr uint32, value uint64)

var (
	// cpuidFn is the CPUID primitive IsIntel calls.
	cpuidFn = ID
)

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && // "Genu"
		edx == 0x49656e69 && // "ineI"
		ecx == 0x6c65746e // "ntel"
}

// ActivePML4 returns the physical address of the currently loaded PML4,
// masking off the low control bits preserved by CR3.
func ActivePML4() uintptr {
	const pml4AddrMask = ^uint64(0xfff)
	return uintptr(ReadCR3() & pml4AddrMask)
}

// SwitchPML4 replaces the PML4 physical address encoded in CR3 while
// preserving the low bits (PCID and friends).
func SwitchPML4(pml4PhysAddr uintptr) {
	const pml4AddrMask = ^uint64(0xfff)
	cur := ReadCR3()
	WriteCR3((cur &^ pml4AddrMask) | (uint64(pml4PhysAddr) & pml4AddrMask))
}
