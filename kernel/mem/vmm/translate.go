package vmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

func translateIn(root pmm.Frame, access tableAccessFn, vaddr mem.VirtAddr) (mem.PhyAddr, *kernel.Error) {
	var (
		err   *kernel.Error
		frame pmm.Frame
		found bool
	)

	walk(root, vaddr, access, func(level uint8, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}
		if level == pageLevels-1 {
			frame = pte.Frame()
			found = true
		}
		return true
	})

	if !found {
		return 0, err
	}

	pageOffset := vaddr.Value() & (uint64(mem.PageSize) - 1)
	return frame.Address().Add(int64(pageOffset)), nil
}

// Translate returns the physical address vaddr currently maps to within the
// active PML4, or ErrInvalidMapping if no mapping covers it.
func Translate(vaddr mem.VirtAddr) (mem.PhyAddr, *kernel.Error) {
	root := pmm.FrameFromAddress(mem.PhyAddr(activePML4Fn()))
	return translateIn(root, directMapAccess, vaddr)
}

// Translate returns the physical address vaddr currently maps to within
// this address space, or ErrInvalidMapping if no mapping covers it.
func (s *AddrSpace) Translate(vaddr mem.VirtAddr) (mem.PhyAddr, *kernel.Error) {
	return translateIn(s.pml4, directMapAccess, vaddr)
}
