package mem

// PhyAddr is an opaque physical address. It is never constructible from, nor
// comparable with, a VirtAddr.
type PhyAddr uint64

// Value returns the raw numeric value of this address.
func (p PhyAddr) Value() uint64 { return uint64(p) }

// Aligned reports whether this address is aligned on a page boundary.
func (p PhyAddr) Aligned() bool { return p.Value()&uint64(PageSize-1) == 0 }

// Add returns the address offset by the given number of bytes.
func (p PhyAddr) Add(offset int64) PhyAddr {
	return PhyAddr(int64(p) + offset)
}

// ToVirtual returns the kernel-virtual address that aliases this physical
// address through the direct map. The direct map must already be installed;
// callers performing bootstrap-time translations before that point use the
// watermark-aware allocator path instead (see kernel/mem/pmm).
func (p PhyAddr) ToVirtual() VirtAddr {
	return VirtAddr(uint64(DirectMapBase) + p.Value())
}

// VirtAddr is an opaque virtual address. It is never constructible from, nor
// comparable with, a PhyAddr.
type VirtAddr uint64

// Value returns the raw numeric value of this address.
func (v VirtAddr) Value() uint64 { return uint64(v) }

// Aligned reports whether this address is aligned on a page boundary.
func (v VirtAddr) Aligned() bool { return v.Value()&uint64(PageSize-1) == 0 }

// Add returns the address offset by the given number of bytes.
func (v VirtAddr) Add(offset int64) VirtAddr {
	return VirtAddr(int64(v) + offset)
}

// Pointer returns an unsafe pointer aliasing this virtual address. Callers
// are expected to immediately convert it to the pointer type they need.
func (v VirtAddr) Pointer() uintptr { return uintptr(v) }

// ToPhysical translates a direct-map kernel-virtual address back to the
// physical address it aliases. Callers are expected to only ever call this
// on addresses they themselves derived from PhyAddr.ToVirtual; it does not
// re-validate membership in the direct map.
func (v VirtAddr) ToPhysical() PhyAddr {
	return PhyAddr(v.Value() - uint64(DirectMapBase))
}
