package vmm

import (
	"unsafe"

	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

// fakeTables emulates a page-table hierarchy using ordinary Go-allocated
// backing arrays instead of real physical frames. Each table is assigned a
// distinct fabricated page-aligned "physical" address; fakeTables.access
// resolves that fabricated address back to the real Go memory backing it,
// standing in for the direct map in host tests.
type fakeTables struct {
	backing []*[entriesPerTable]pageTableEntry
	addrOf  map[pmm.Frame]mem.VirtAddr
	frameOf map[mem.VirtAddr]pmm.Frame
}

func newFakeTables() *fakeTables {
	return &fakeTables{
		addrOf:  make(map[pmm.Frame]mem.VirtAddr),
		frameOf: make(map[mem.VirtAddr]pmm.Frame),
	}
}

// add registers a new backing table under the given fabricated physical
// address (which must be page-aligned) and returns its Frame.
func (f *fakeTables) add(fakePhys uint64) pmm.Frame {
	tbl := new([entriesPerTable]pageTableEntry)
	f.backing = append(f.backing, tbl)

	frame := pmm.FrameFromAddress(mem.PhyAddr(fakePhys))
	vaddr := mem.VirtAddr(uintptr(unsafe.Pointer(&tbl[0])))
	f.addrOf[frame] = vaddr
	f.frameOf[vaddr] = frame
	return frame
}

func (f *fakeTables) access(frame pmm.Frame) mem.VirtAddr {
	vaddr, ok := f.addrOf[frame]
	if !ok {
		panic("fakeTables: access of unregistered frame")
	}
	return vaddr
}

func (f *fakeTables) entries(frame pmm.Frame) *[entriesPerTable]pageTableEntry {
	vaddr := f.access(frame)
	return (*[entriesPerTable]pageTableEntry)(unsafe.Pointer(uintptr(vaddr)))
}
