package heap

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/sync"
)

var (
	active     *Allocator
	activeLock = sync.NewInterruptSafeSpinLock()

	errNotInitialized = &kernel.Error{Module: "heap", Message: "heap used before Init"}
)

// Init installs the process-wide heap singleton. Must run after the direct
// map and frame allocator phase 2 are both up, per the fixed initialization
// order.
func Init(heapStart mem.VirtAddr, maxSize mem.Size) {
	a := &Allocator{}
	a.Init(heapStart, maxSize)
	active = a
}

// Alloc allocates size bytes from the process-wide heap.
func Alloc(size mem.Size) (mem.VirtAddr, *kernel.Error) {
	activeLock.Lock()
	defer activeLock.Unlock()
	if active == nil {
		kernel.Panic(errNotInitialized)
	}
	return active.Alloc(size)
}

// Free returns ptr to the process-wide heap.
func Free(ptr mem.VirtAddr) {
	activeLock.Lock()
	defer activeLock.Unlock()
	if active == nil {
		kernel.Panic(errNotInitialized)
	}
	active.Free(ptr)
}
