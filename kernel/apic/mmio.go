package apic

import (
	"unsafe"

	"x86kernel/kernel/mem"
)

// read32Fn and write32Fn perform the actual MMIO access. They are package
// vars, not direct unsafe dereferences inline, so tests can redirect every
// Local/IO APIC register access at a real Go-allocated buffer instead of
// faulting against an unmapped address.
var (
	read32Fn  = hardwareRead32
	write32Fn = hardwareWrite32
)

func hardwareRead32(addr mem.VirtAddr) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr.Value())))
}

func hardwareWrite32(addr mem.VirtAddr, value uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr.Value()))) = value
}
