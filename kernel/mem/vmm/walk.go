package vmm

import (
	"unsafe"

	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

var (
	// entryPtrFn resolves the address of a page table entry given the
	// kernel-virtual address of the table that holds it and the entry's
	// index within that table.
	entryPtrFn = func(tableAddr mem.VirtAddr, index uint64) *pageTableEntry {
		return (*pageTableEntry)(unsafe.Pointer(uintptr(tableAddr.Value() + index<<mem.PointerShift)))
	}
)

// tableAccessFn resolves the kernel-virtual address at which the contents of
// a physical page-table frame can be read or written. Outside of direct-map
// construction this is always frame.Address().ToVirtual(); during
// construction it additionally has to cope with frames the direct map does
// not cover yet (see directMapBuildAccessFn in directmap.go).
type tableAccessFn func(pmm.Frame) mem.VirtAddr

// directMapAccess reaches a table frame through the direct map. It is a
// variable so host tests can point it at fake tables.
var directMapAccess tableAccessFn = func(f pmm.Frame) mem.VirtAddr {
	return f.Address().ToVirtual()
}

// pageTableWalker is invoked once per paging level while walking the table
// hierarchy for a virtual address. Returning false aborts the walk.
type pageTableWalker func(level uint8, pte *pageTableEntry) bool

// walk descends the four paging levels rooted at root for virtAddr, invoking
// walkFn with the entry at each level. access resolves the contents of the
// table visited at each of the four levels; the frame a leaf (PT) entry
// points at is never passed to it.
func walk(root pmm.Frame, virtAddr mem.VirtAddr, access tableAccessFn, walkFn pageTableWalker) {
	tableFrame := root
	for level := uint8(0); level < pageLevels; level++ {
		tableAddr := access(tableFrame)
		index := (virtAddr.Value() >> pageLevelShifts[level]) & ((1 << pageLevelBits[level]) - 1)

		pte := entryPtrFn(tableAddr, index)
		if !walkFn(level, pte) {
			return
		}
		if level < pageLevels-1 {
			tableFrame = pte.Frame()
		}
	}
}
