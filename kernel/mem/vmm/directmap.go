package vmm

import (
	"x86kernel/kernel"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/pmm"
)

// directMapBuildAccessFn resolves a table frame's contents while the direct
// map is under construction. Overridden in tests, since the real
// implementation's fallback branch assumes a bootloader identity mapping
// that only exists on real hardware.
var directMapBuildAccessFn = func(bootstrap *pmm.BootstrapAllocator, f pmm.Frame) mem.VirtAddr {
	if bootstrap.BelowWatermark(f) {
		return f.Address().ToVirtual()
	}
	return mem.VirtAddr(f.Address().Value())
}

// InitDirectMap walks the active PML4, creating missing levels via the
// bootstrap allocator, and maps every physical page in [0, maxPhyAddr) to
// DirectMapBase+offset, writable and non-executable.
//
// Constructing the map is a chicken-and-egg problem: the frames handed out
// for new PDPT/PD/PT levels need their contents zeroed, but the direct map
// that would normally give us a way to reach a frame's contents is exactly
// what we are in the middle of building. bootstrap.SetWatermark is kept in
// lockstep with how far the map has progressed, so for any table frame
// below the watermark we use its now-valid direct-map alias, and for one at
// or above it we fall back to the identity alias the bootloader's own early
// page tables still provide.
func InitDirectMap(bootstrap *pmm.BootstrapAllocator, maxPhyAddr mem.PhyAddr) *kernel.Error {
	root := pmm.FrameFromAddress(mem.PhyAddr(activePML4Fn()))

	allocFn := func() (pmm.Frame, *kernel.Error) { return bootstrap.Alloc() }
	access := func(f pmm.Frame) mem.VirtAddr { return directMapBuildAccessFn(bootstrap, f) }

	for off := mem.PhyAddr(0); off < maxPhyAddr; off = off.Add(int64(mem.PageSize)) {
		vaddr := mem.DirectMapBase.Add(int64(off.Value()))
		if err := mapInto(root, access, vaddr, pmm.FrameFromAddress(off), FlagWritable|FlagNoExecute, allocFn); err != nil {
			return err
		}
		bootstrap.SetWatermark(off.Add(int64(mem.PageSize)))
	}

	return nil
}
