package mem

import "unsafe"

// Memset sets size bytes starting at addr to value. It overlays a byte slice
// on top of the target region and doubles the filled prefix on each pass
// instead of looping byte by byte, which pays off since callers always deal
// in page-sized, page-aligned regions.
func Memset(addr VirtAddr, value byte, size Size) {
	if size == 0 {
		return
	}

	target := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), int(size))

	target[0] = value
	for filled := Size(1); filled < size; filled *= 2 {
		copy(target[filled:], target[:filled])
	}
}
