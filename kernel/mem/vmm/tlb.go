package vmm

import (
	"x86kernel/kernel/cpu"
	"x86kernel/kernel/mem"
)

// flushTLBEntry invalidates the cached translation for a single page.
func flushTLBEntry(vaddr mem.VirtAddr) {
	cpu.FlushTLBEntry(uintptr(vaddr))
}
