// Package boot describes the data the bootloader hands the kernel before any
// Go-managed memory allocator is available. Every type here is a read-only,
// packed view over memory the bootloader populated; this package never
// allocates and never outlives the bootstrap phase. Parsing the bootloader's
// own handoff protocol (multiboot, the E820 call, ACPI discovery, ...) is an
// external collaborator's job — this package only describes the shape that
// collaborator is expected to produce.
package boot

import (
	"unsafe"

	"x86kernel/kernel/mem"
)

// MemoryType classifies a MemoryMapEntry.
type MemoryType uint64

const (
	// MemReserved marks memory that must never be handed to an allocator.
	MemReserved MemoryType = 0
	// MemAvailable marks memory that the frame allocator may claim.
	MemAvailable MemoryType = 1
)

// MemoryMapEntry is a single, packed E820-style memory region description.
// The bootloader provides these sorted ascending by Base with no overlaps.
type MemoryMapEntry struct {
	Base   mem.PhyAddr
	Length uint64
	Type   MemoryType
}

// End returns the (exclusive) end address of this region.
func (e *MemoryMapEntry) End() mem.PhyAddr {
	return e.Base.Add(int64(e.Length))
}

// FreeListNode is one node of the bootloader-provided singly linked list of
// free physical regions. Base and NumFrames are guaranteed page-aligned by
// the bootloader; the list is sorted ascending by Base with no overlaps.
type FreeListNode struct {
	Base      mem.PhyAddr
	NumFrames uint64
	Next      *FreeListNode
}

// End returns the (exclusive) end address of this free region.
func (n *FreeListNode) End() mem.PhyAddr {
	return n.Base.Add(int64(n.NumFrames) * int64(mem.PageSize))
}

// Info is the packed structure the bootloader hands off to the kernel entry
// point. All three fields are raw pointers/counts exactly as the bootloader
// wrote them; Info itself performs no validation.
type Info struct {
	MemMapPtr   uintptr
	MemMapCount uint64
	FreeListPtr uintptr
}

// MemoryMap returns the memory-map entries described by this Info as a Go
// slice aliasing the bootloader-provided memory. The slice must not be
// retained past the bootstrap phase.
func (i *Info) MemoryMap() []MemoryMapEntry {
	if i.MemMapPtr == 0 || i.MemMapCount == 0 {
		return nil
	}
	return unsafe.Slice((*MemoryMapEntry)(unsafe.Pointer(i.MemMapPtr)), int(i.MemMapCount))
}

// FreeList returns the head of the bootloader-provided free-region list, or
// nil if the bootloader reported no free regions.
func (i *Info) FreeList() *FreeListNode {
	if i.FreeListPtr == 0 {
		return nil
	}
	return (*FreeListNode)(unsafe.Pointer(i.FreeListPtr))
}

// VisitMemRegions calls visit for every memory-map entry, in order, stopping
// early if visit returns false.
func (i *Info) VisitMemRegions(visit func(*MemoryMapEntry) bool) {
	for idx := range i.MemoryMap() {
		if !visit(&i.MemoryMap()[idx]) {
			return
		}
	}
}

// VisitFreeList calls visit for every free-list node, in order, stopping
// early if visit returns false.
func (i *Info) VisitFreeList(visit func(*FreeListNode) bool) {
	for n := i.FreeList(); n != nil; n = n.Next {
		if !visit(n) {
			return
		}
	}
}
