// Package freelist implements an embedded free-list: a sorted list of free
// byte ranges whose bookkeeping nodes live inside the free ranges themselves.
// It backs both the phase-2 frame allocator (kernel/mem/pmm) and the heap
// allocator (kernel/mem/heap), mirroring the role gopher-os's bitmap
// allocator and bump allocator play for those two layers, but using the
// embedded-node design this kernel's spec calls for instead of a bitmap.
package freelist

import (
	"unsafe"

	"x86kernel/kernel"
	"x86kernel/kernel/mem"
)

var (
	// ErrOutOfMemory is returned by Alloc when no node can satisfy the
	// request.
	ErrOutOfMemory = &kernel.Error{Module: "freelist", Message: "out of memory"}
)

// node is the bookkeeping header written at the base of every free region.
type node struct {
	size mem.Size
	next *node
}

// nodeSize is the minimum number of bytes a free region must have in order
// to host a node header; it is also the implementation-defined minimum
// allocation granularity, since any remainder left behind by Alloc must be
// able to host a node of its own.
const nodeSize = mem.Size(unsafe.Sizeof(node{}))

// List is a sorted, non-overlapping, non-adjacent list of free byte ranges.
// The zero value is an empty list.
type List struct {
	head *node
}

func nodeAt(addr mem.VirtAddr) *node {
	return (*node)(unsafe.Pointer(uintptr(addr)))
}

func addrOf(n *node) mem.VirtAddr {
	return mem.VirtAddr(uintptr(unsafe.Pointer(n)))
}

func end(addr mem.VirtAddr, size mem.Size) mem.VirtAddr {
	return addr.Add(int64(size))
}

// Insert places a node describing size bytes starting at addr into the
// sorted list, merging with an adjacent predecessor and/or successor. It
// panics if the new range overlaps an existing node — overlap is always a
// programming error (typically a double free).
func (l *List) Insert(addr mem.VirtAddr, size mem.Size) {
	if size == 0 {
		return
	}

	n := nodeAt(addr)
	n.size = size
	n.next = nil

	var prev *node
	cur := l.head
	for cur != nil && addrOf(cur) < addr {
		if overlaps(addrOf(cur), cur.size, addr, size) {
			kernel.Panic(errOverlap)
		}
		prev = cur
		cur = cur.next
	}
	if cur != nil && overlaps(addr, size, addrOf(cur), cur.size) {
		kernel.Panic(errOverlap)
	}

	// Merge with successor first: if the new node's end touches cur's
	// base, absorb cur into the new node so the new node's base stays at
	// addr (this matches the order specified by the component: successor
	// merge, then predecessor merge).
	if cur != nil && end(addr, n.size) == addrOf(cur) {
		n.size += cur.size
		n.next = cur.next
	} else {
		n.next = cur
	}

	// Merge with predecessor: if prev's end touches the new node's base,
	// the predecessor absorbs the new node and becomes the live node at
	// that address.
	if prev != nil && end(addrOf(prev), prev.size) == addr {
		prev.size += n.size
		prev.next = n.next
		return
	}

	if prev == nil {
		l.head = n
	} else {
		prev.next = n
	}
}

func overlaps(aAddr mem.VirtAddr, aSize mem.Size, bAddr mem.VirtAddr, bSize mem.Size) bool {
	return aAddr < end(bAddr, bSize) && bAddr < end(aAddr, aSize)
}

var errOverlap = &kernel.Error{Module: "freelist", Message: "inserted range overlaps an existing node (double free?)"}

// Alloc removes size bytes from the list using first-fit and returns their
// address. The allocation is always cut from the end of the chosen node so
// the node's base address — and therefore its identity in the list — never
// moves. Requests smaller than the minimum node size are rounded up.
func (l *List) Alloc(size mem.Size) (mem.VirtAddr, *kernel.Error) {
	if size < nodeSize {
		size = nodeSize
	}

	var prev *node
	cur := l.head
	for cur != nil {
		if cur.size >= size {
			remainder := cur.size - size
			if remainder != 0 && remainder < nodeSize {
				// Cannot leave an unrepresentable remainder behind;
				// this node cannot satisfy the request after all.
				prev = cur
				cur = cur.next
				continue
			}

			allocAddr := end(addrOf(cur), remainder)
			cur.size = remainder
			if remainder == 0 {
				if prev == nil {
					l.head = cur.next
				} else {
					prev.next = cur.next
				}
			}
			return allocAddr, nil
		}
		prev = cur
		cur = cur.next
	}

	return 0, ErrOutOfMemory
}

// Free returns size bytes at addr to the list. It is equivalent to Insert.
func (l *List) Free(addr mem.VirtAddr, size mem.Size) {
	l.Insert(addr, size)
}

// TotalFree returns the sum of every free node's size; used by tests to
// check the invariant that total free bytes equals inserted-minus-allocated.
func (l *List) TotalFree() mem.Size {
	var total mem.Size
	for cur := l.head; cur != nil; cur = cur.next {
		total += cur.size
	}
	return total
}

// Nodes returns the (address, size) pairs of every node in ascending order,
// for use by invariant-checking tests.
func (l *List) Nodes() []struct {
	Addr mem.VirtAddr
	Size mem.Size
} {
	var out []struct {
		Addr mem.VirtAddr
		Size mem.Size
	}
	for cur := l.head; cur != nil; cur = cur.next {
		out = append(out, struct {
			Addr mem.VirtAddr
			Size mem.Size
		}{addrOf(cur), cur.size})
	}
	return out
}

// MinAllocSize returns the implementation-defined minimum allocation size.
func MinAllocSize() mem.Size { return nodeSize }
