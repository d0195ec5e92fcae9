package pmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/boot"
	"x86kernel/kernel/mem"
)

// cursor tracks the bootstrap allocator's position: the free-region node
// currently being consumed and the index of the next frame inside it.
type cursor struct {
	base      mem.PhyAddr
	numFrames uint64
	index     uint64
	next      *cursor
}

// BootstrapAllocator is a monotonic allocator built directly from the
// bootloader's free-region list. It never frees: frames it hands out (page
// tables for the direct map, the heap's first page, ...) are never returned
// individually, only handed over in bulk to the phase-2 allocator once it is
// ready (see Handover).
type BootstrapAllocator struct {
	cur *cursor

	// watermark is the highest physical address the direct map has been
	// built up to so far. Frames below the watermark already have a
	// usable kernel-virtual alias (through whatever identity mapping the
	// bootloader left in place, or the portion of the direct map already
	// constructed); frames above it do not yet have one. The mapper
	// queries BelowWatermark to decide how to reach a freshly allocated
	// page-table frame's contents. This is the one place in phase 1 that
	// needs to know about the direct map's construction progress (see
	// spec §4.B/§4.C).
	watermark mem.PhyAddr
}

// NewBootstrapAllocator builds a BootstrapAllocator from the head of the
// bootloader's free-region list, in list order. The bootloader guarantees
// this list is sorted ascending by base with no overlaps.
func NewBootstrapAllocator(head *boot.FreeListNode) *BootstrapAllocator {
	return &BootstrapAllocator{cur: nodesToCursor(head)}
}

func nodesToCursor(n *boot.FreeListNode) *cursor {
	if n == nil {
		return nil
	}
	return &cursor{base: n.Base, numFrames: n.NumFrames, next: nodesToCursor(n.Next)}
}

// SetWatermark records how far the direct map has been built so far.
func (a *BootstrapAllocator) SetWatermark(addr mem.PhyAddr) {
	a.watermark = addr
}

// BelowWatermark reports whether the given frame already has a usable
// kernel-virtual alias because the direct map has been built past it.
func (a *BootstrapAllocator) BelowWatermark(f Frame) bool {
	return f.Address() < a.watermark
}

// Alloc returns the next available frame, advancing the cursor. It returns
// ErrOutOfPhysicalMemory once every region has been exhausted.
func (a *BootstrapAllocator) Alloc() (Frame, *kernel.Error) {
	for a.cur != nil {
		if a.cur.index >= a.cur.numFrames {
			a.cur = a.cur.next
			continue
		}
		addr := a.cur.base.Add(int64(a.cur.index) * int64(mem.PageSize))
		a.cur.index++
		return FrameFromAddress(addr), nil
	}
	return Frame{}, ErrOutOfPhysicalMemory
}

// Free panics: the bootstrap allocator never frees by design.
func (a *BootstrapAllocator) Free(Frame) {
	kernel.Panic(errBootstrapFree)
}

var errBootstrapFree = &kernel.Error{Module: "pmm", Message: "bootstrap allocator does not support free"}

// Handover transfers every frame the bootstrap allocator has not yet handed
// out (the remainder of its current node plus every subsequent node) into
// the phase-2 allocator by repeated calls to InsertFreeRegion. It does not
// touch the package-level allocator pointer; PromoteToEmbeddedFreeList
// swings that over to phase 2 after Handover returns.
func (a *BootstrapAllocator) Handover(phase2 *EmbeddedFreeListAllocator) {
	for c := a.cur; c != nil; c = c.next {
		remaining := c.numFrames - c.index
		if remaining == 0 {
			continue
		}
		base := c.base.Add(int64(c.index) * int64(mem.PageSize))
		phase2.InsertFreeRegion(base, remaining)
	}
	a.cur = nil
}
