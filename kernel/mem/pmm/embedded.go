package pmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/freelist"
)

// EmbeddedFreeListAllocator is the phase-2 frame allocator. It holds an
// embedded free-list (kernel/mem/freelist) over the direct-mapped
// kernel-virtual alias of every free frame.
type EmbeddedFreeListAllocator struct {
	list    freelist.List
	started bool
}

var errInsertAfterUse = &kernel.Error{Module: "pmm", Message: "InsertFreeRegion called after alloc/free"}

// InsertFreeRegion adds numFrames contiguous frames starting at base to the
// free list. It is used to populate the allocator during the phase-1 to
// phase-2 handover and panics if called again after any Alloc/Free call.
func (a *EmbeddedFreeListAllocator) InsertFreeRegion(base mem.PhyAddr, numFrames uint64) {
	if a.started {
		kernel.Panic(errInsertAfterUse)
	}
	a.list.Insert(base.ToVirtual(), mem.Size(numFrames)*mem.PageSize)
}

// Alloc removes one 4 KiB frame from the free list.
func (a *EmbeddedFreeListAllocator) Alloc() (Frame, *kernel.Error) {
	a.started = true
	vaddr, err := a.list.Alloc(mem.PageSize)
	if err != nil {
		return Frame{}, ErrOutOfPhysicalMemory
	}
	return FrameFromAddress(vaddr.ToPhysical()), nil
}

// Free returns a frame to the free list.
func (a *EmbeddedFreeListAllocator) Free(f Frame) {
	a.started = true
	a.list.Free(f.Address().ToVirtual(), mem.PageSize)
}
