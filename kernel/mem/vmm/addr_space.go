package vmm

import (
	"unsafe"

	"x86kernel/kernel"
	"x86kernel/kernel/cpu"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

// entriesPerTable is the number of slots in every paging-level table.
const entriesPerTable = 512

// userEntries is the number of PML4 slots (0..255) that belong to the user
// half of the address space; the remaining 256..511 are the shared kernel
// mapping.
const userEntries = entriesPerTable / 2

var activePML4Fn = cpu.ActivePML4

func tableEntries(tableAddr mem.VirtAddr) []pageTableEntry {
	return unsafe.Slice((*pageTableEntry)(unsafe.Pointer(uintptr(tableAddr.Value()))), entriesPerTable)
}

// AddrSpace is a process's page-table hierarchy: a PML4 whose upper half
// (the kernel mapping) is shared with every other address space and whose
// lower half is private. Values of this type must not be copied; pass a
// pointer.
type AddrSpace struct {
	pml4 pmm.Frame
}

// PML4 returns the physical frame backing this address space's top-level
// table.
func (s *AddrSpace) PML4() pmm.Frame { return s.pml4 }

// NewAddrSpace allocates a PML4 frame, zeroes its user half (entries 0..255)
// and copies the kernel half (entries 256..511) from the currently active
// PML4.
func NewAddrSpace(allocFn FrameAllocatorFn) (*AddrSpace, *kernel.Error) {
	pml4Frame, err := allocFn()
	if err != nil {
		return nil, err
	}

	dst := tableEntries(directMapAccess(pml4Frame))
	for i := range dst {
		dst[i] = 0
	}

	activeFrame := pmm.FrameFromAddress(mem.PhyAddr(activePML4Fn()))
	src := tableEntries(directMapAccess(activeFrame))
	copy(dst[userEntries:], src[userEntries:])

	return &AddrSpace{pml4: pml4Frame}, nil
}

// Activate loads this address space's PML4 into CR3, preserving whatever
// PCID/low bits the active CR3 already carries.
func (s *AddrSpace) Activate() {
	cpu.SwitchPML4(uintptr(s.pml4.Address().Value()))
}

// Map installs a mapping for nPages consecutive pages starting at vaddr into
// this address space.
func (s *AddrSpace) Map(vaddr mem.VirtAddr, paddr mem.PhyAddr, attrs PageTableEntryFlag, nPages uint64, allocFn FrameAllocatorFn) *kernel.Error {
	return mapRange(s.pml4, directMapAccess, vaddr, paddr, attrs, nPages, allocFn)
}

// Unmap removes the mapping for nPages consecutive pages starting at vaddr
// from this address space.
func (s *AddrSpace) Unmap(vaddr mem.VirtAddr, nPages uint64) *kernel.Error {
	return unmapRange(s.pml4, directMapAccess, vaddr, nPages)
}

// FrameFreerFn releases a physical frame back to the frame allocator.
type FrameFreerFn func(pmm.Frame)

// Destroy walks the user half of the owned PML4 depth-first, freeing every
// page-table frame it finds (PML4, PDPT, PD and PT frames alike), then
// frees the PML4 itself. The shared kernel half is left untouched.
func (s *AddrSpace) Destroy(freeFn FrameFreerFn) {
	entries := tableEntries(directMapAccess(s.pml4))
	for i := 0; i < userEntries; i++ {
		if entries[i].HasFlags(FlagPresent) {
			freeSubtree(entries[i].Frame(), 1, freeFn)
		}
	}
	freeFn(s.pml4)
}

// freeSubtree frees every page-table frame reachable from frame, which sits
// at the given paging level. Level pageLevels-1 (the PT level) has no
// table-frame children to recurse into: its entries point at mapped data
// pages, which are not owned by the address space and are left alone.
func freeSubtree(frame pmm.Frame, level uint8, freeFn FrameFreerFn) {
	if level < pageLevels-1 {
		entries := tableEntries(directMapAccess(frame))
		for i := range entries {
			if entries[i].HasFlags(FlagPresent) {
				freeSubtree(entries[i].Frame(), level+1, freeFn)
			}
		}
	}
	freeFn(frame)
}
