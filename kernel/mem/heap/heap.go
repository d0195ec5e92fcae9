// Package heap implements the kernel's lazily-growing byte allocator: a
// coalescing embedded free-list (kernel/mem/freelist) backed by frames
// mapped in one page at a time as demand outgrows what has been mapped so
// far.
package heap

import (
	"unsafe"

	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/freelist"
	"x86kernel/kernel/mem/pmm"
	"x86kernel/kernel/mem/vmm"
)

// magic is XORed with a live allocation's user pointer to produce the token
// stored in its metadata block. A free() whose token does not match catches
// both double-frees and frees of pointers the heap never handed out.
const magic = 0x5a5a_c0ffee_5a5a5a

// Metadata immediately precedes every live allocation.
type Metadata struct {
	UserSize uint64
	Token    uint64
}

// metadataSize is the number of bytes every allocation's bookkeeping costs
// on top of what the caller asked for.
var metadataSize = mem.Size(unsafe.Sizeof(Metadata{}))

// MetadataSize returns the per-allocation bookkeeping overhead.
func MetadataSize() mem.Size { return metadataSize }

var (
	// ErrMaxHeapSizeReached is returned when growing the heap by one more
	// page would exceed the configured maximum size.
	ErrMaxHeapSizeReached = &kernel.Error{Module: "heap", Message: "heap cannot grow further"}

	errTokenMismatch = &kernel.Error{Module: "heap", Message: "free of invalid or already-freed pointer"}

	// allocFrameFn and mapFn are mocked in tests, since the real
	// implementations require a live frame allocator and page mapper.
	allocFrameFn = pmm.AllocFrame
	mapFn        = vmm.Map
)

// Allocator is a single growable heap. The zero value is not usable; call
// Init first.
type Allocator struct {
	heapStart   mem.VirtAddr
	maxSize     mem.Size
	currentSize mem.Size
	list        freelist.List
}

// Init configures a fresh heap of at most maxSize bytes starting at
// heapStart. No frames are mapped yet; the heap grows lazily as Alloc needs
// more room.
func (h *Allocator) Init(heapStart mem.VirtAddr, maxSize mem.Size) {
	h.heapStart = heapStart
	h.maxSize = maxSize
	h.currentSize = 0
	h.list = freelist.List{}
}

// Alloc returns size bytes of heap memory. If the free-list cannot satisfy
// the request, the heap grows by one page and retries; it gives up with
// ErrMaxHeapSizeReached once growing would exceed maxSize.
func (h *Allocator) Alloc(size mem.Size) (mem.VirtAddr, *kernel.Error) {
	for {
		blockAddr, err := h.list.Alloc(metadataSize + size)
		if err == nil {
			userPtr := blockAddr.Add(int64(metadataSize))
			meta := (*Metadata)(unsafe.Pointer(uintptr(blockAddr)))
			meta.UserSize = uint64(size)
			meta.Token = userPtr.Value() ^ magic
			return userPtr, nil
		}
		if err != freelist.ErrOutOfMemory {
			return 0, err
		}

		if h.currentSize+mem.PageSize > h.maxSize {
			return 0, ErrMaxHeapSizeReached
		}

		frame, ferr := allocFrameFn()
		if ferr != nil {
			return 0, ferr
		}

		growAt := h.heapStart.Add(int64(h.currentSize))
		if merr := mapFn(growAt, frame.Address(), vmm.FlagWritable, 1, allocFrameFn); merr != nil {
			return 0, merr
		}

		h.list.Insert(growAt, mem.PageSize)
		h.currentSize += mem.PageSize
	}
}

// Free returns a previously-allocated pointer to the heap. It panics if the
// pointer's metadata token does not match, which catches both a double-free
// and a free of a pointer the heap never handed out.
func (h *Allocator) Free(ptr mem.VirtAddr) {
	metaAddr := ptr.Add(-int64(metadataSize))
	meta := (*Metadata)(unsafe.Pointer(uintptr(metaAddr)))

	if meta.Token != ptr.Value()^magic {
		kernel.Panic(errTokenMismatch)
	}

	h.list.Free(metaAddr, metadataSize+mem.Size(meta.UserSize))
}
