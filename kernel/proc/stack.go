package proc

import (
	"unsafe"

	"x86kernel/kernel/mem"
)

// numCalleeSavedSlots is the number of callee-saved general-purpose
// registers a context switch preserves across the stack swap: RBX, RBP,
// R12, R13, R14, R15 (the System V AMD64 callee-saved set, minus RSP
// itself). Its value must match contextSwitchAsm's push/pop count and the
// fake frame NewWithEntry lays down.
const numCalleeSavedSlots = 6

// pushUintptr writes value just below top and returns the new, lower stack
// pointer, mirroring how a PUSHQ instruction grows the stack downward.
func pushUintptr(top mem.VirtAddr, value uintptr) mem.VirtAddr {
	newTop := top.Add(-8)
	*(*uintptr)(unsafe.Pointer(uintptr(newTop))) = value
	return newTop
}

// functionAddr returns fn's entry point. A Go func value is, in the
// current ABI, a pointer to a closure record whose first word is the code
// pointer; dereferencing it twice recovers that address. This is the one
// place in the package that depends on that unexported layout.
func functionAddr(fn func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&fn))
}
