package vmm

import "x86kernel/kernel/mem"

// Page identifies a single page-sized unit of virtual address space.
type Page mem.VirtAddr

// Address returns the page-aligned virtual address this page begins at.
func (p Page) Address() mem.VirtAddr { return mem.VirtAddr(p) }

// PageFromAddress returns the page containing virtAddr, rounding down to the
// nearest page boundary if virtAddr is not itself aligned.
func PageFromAddress(virtAddr mem.VirtAddr) Page {
	return Page(virtAddr.Value() &^ (uint64(mem.PageSize) - 1))
}
