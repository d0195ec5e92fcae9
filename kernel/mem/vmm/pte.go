package vmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

// ErrInvalidMapping is returned when looking up a virtual address that is
// not currently mapped.
var ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

// PageTableEntryFlag is a single bit of a page table entry's attribute word.
type PageTableEntryFlag uint64

// pageTableEntry is the in-memory representation of one page table entry at
// any of the four paging levels. The layout is architecture-defined: bits
// 12-51 hold the physical address of the next level (or, at the leaf, of the
// mapped page); the remaining bits are flags.
type pageTableEntry uint64

// HasFlags reports whether every bit in flags is set.
func (pte pageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return uint64(pte)&uint64(flags) == uint64(flags)
}

// SetFlags ORs flags into the entry, leaving the frame field untouched.
func (pte *pageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*pte = pageTableEntry(uint64(*pte) | uint64(flags))
}

// ClearFlags clears flags from the entry, leaving the frame field untouched.
func (pte *pageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*pte = pageTableEntry(uint64(*pte) &^ uint64(flags))
}

// Frame returns the physical frame this entry points to.
func (pte pageTableEntry) Frame() pmm.Frame {
	return pmm.FrameFromAddress(mem.PhyAddr(uint64(pte) & ptePhysPageMask))
}

// SetFrame rewrites the entry's physical-address field to point at frame,
// leaving every flag bit untouched.
func (pte *pageTableEntry) SetFrame(frame pmm.Frame) {
	*pte = pageTableEntry((uint64(*pte) &^ ptePhysPageMask) | frame.Address().Value())
}
