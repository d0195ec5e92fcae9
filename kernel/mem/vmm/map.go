package vmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

// FrameAllocatorFn supplies physical frames for newly created page-table
// levels encountered while establishing a mapping.
type FrameAllocatorFn func() (pmm.Frame, *kernel.Error)

var (
	// flushTLBEntryFn invalidates the TLB entry for a virtual address.
	// Overridden in tests, since calling the real primitive on a host
	// would fault.
	flushTLBEntryFn = flushTLBEntry
)

// mapInto maps vaddr to frame within the page table hierarchy rooted at
// root, whose table frames are reachable through access. Missing
// intermediate levels are created on demand by calling allocFn and are
// hoisted permissive (present, writable, user); the leaf entry alone carries
// the caller-requested flags, which is the sole authority on the effective
// permission of the mapping. On a frame-allocation failure mapInto returns
// the error immediately and leaves whatever partial work was already done in
// place; there is no rollback.
func mapInto(root pmm.Frame, access tableAccessFn, vaddr mem.VirtAddr, frame pmm.Frame, flags PageTableEntryFlag, allocFn FrameAllocatorFn) *kernel.Error {
	var err *kernel.Error

	walk(root, vaddr, access, func(level uint8, pte *pageTableEntry) bool {
		if level == pageLevels-1 {
			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(FlagPresent | flags)
			flushTLBEntryFn(vaddr)
			return true
		}

		if pte.HasFlags(FlagPresent) {
			return true
		}

		var tableFrame pmm.Frame
		tableFrame, err = allocFn()
		if err != nil {
			return false
		}

		*pte = 0
		pte.SetFrame(tableFrame)
		pte.SetFlags(PermissiveParentFlags)
		mem.Memset(access(tableFrame), 0, mem.PageSize)
		return true
	})

	return err
}

// mapRange maps nPages consecutive pages starting at vaddr to the physical
// range starting at paddr within the hierarchy rooted at root. Both
// addresses must be page-aligned. It stops and returns the error from the
// first page that fails to map, leaving every earlier page mapped.
func mapRange(root pmm.Frame, access tableAccessFn, vaddr mem.VirtAddr, paddr mem.PhyAddr, attrs PageTableEntryFlag, nPages uint64, allocFn FrameAllocatorFn) *kernel.Error {
	for i := uint64(0); i < nPages; i++ {
		off := int64(i * uint64(mem.PageSize))
		frame := pmm.FrameFromAddress(paddr.Add(off))
		if err := mapInto(root, access, vaddr.Add(off), frame, attrs, allocFn); err != nil {
			return err
		}
	}
	return nil
}

// unmapRange removes the mapping for nPages consecutive pages starting at
// vaddr within the hierarchy rooted at root.
func unmapRange(root pmm.Frame, access tableAccessFn, vaddr mem.VirtAddr, nPages uint64) *kernel.Error {
	for i := uint64(0); i < nPages; i++ {
		off := int64(i * uint64(mem.PageSize))
		if err := unmapFrom(root, access, vaddr.Add(off)); err != nil {
			return err
		}
	}
	return nil
}

// Map installs a mapping for nPages consecutive pages starting at vaddr into
// the currently active PML4 (the one loaded in CR3).
func Map(vaddr mem.VirtAddr, paddr mem.PhyAddr, attrs PageTableEntryFlag, nPages uint64, allocFn FrameAllocatorFn) *kernel.Error {
	root := pmm.FrameFromAddress(mem.PhyAddr(activePML4Fn()))
	return mapRange(root, directMapAccess, vaddr, paddr, attrs, nPages, allocFn)
}

// Unmap removes the mapping for nPages consecutive pages starting at vaddr
// from the currently active PML4.
func Unmap(vaddr mem.VirtAddr, nPages uint64) *kernel.Error {
	root := pmm.FrameFromAddress(mem.PhyAddr(activePML4Fn()))
	return unmapRange(root, directMapAccess, vaddr, nPages)
}

// unmapFrom removes whatever mapping covers vaddr within the hierarchy
// rooted at root. It returns ErrInvalidMapping if any level along the walk
// is not present.
func unmapFrom(root pmm.Frame, access tableAccessFn, vaddr mem.VirtAddr) *kernel.Error {
	var err *kernel.Error

	walk(root, vaddr, access, func(level uint8, pte *pageTableEntry) bool {
		if level == pageLevels-1 {
			pte.ClearFlags(FlagPresent)
			flushTLBEntryFn(vaddr)
			return true
		}

		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}
		return true
	})

	return err
}
