package pmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/boot"
)

var (
	// active is the package-level allocator singleton. It starts out nil
	// and must not be used before Init; per the initialization-order
	// rule in the design notes, any use before Init panics.
	active Allocator

	errNotInitialized = &kernel.Error{Module: "pmm", Message: "frame allocator used before Init"}
)

// Init constructs the bootstrap allocator from the bootloader's free-region
// list and installs it as the active allocator. It returns the allocator so
// the paging subsystem can call SetWatermark on it while building the direct
// map.
func Init(info *boot.Info) *BootstrapAllocator {
	b := NewBootstrapAllocator(info.FreeList())
	active = b
	return b
}

// PromoteToEmbeddedFreeList hands over every frame remaining in the
// bootstrap allocator to an embedded free-list allocator anchored in the
// direct map, then swings the active allocator over to it. Called once the
// direct map is fully constructed.
func PromoteToEmbeddedFreeList(boot *BootstrapAllocator, embedded *EmbeddedFreeListAllocator) {
	boot.Handover(embedded)
	active = embedded
}

// AllocFrame allocates one 4 KiB frame from the active allocator.
func AllocFrame() (Frame, *kernel.Error) {
	if active == nil {
		kernel.Panic(errNotInitialized)
	}
	return active.Alloc()
}

// FreeFrame returns a frame to the active allocator.
func FreeFrame(f Frame) {
	if active == nil {
		kernel.Panic(errNotInitialized)
	}
	active.Free(f)
}
