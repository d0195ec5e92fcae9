// +build amd64

package mem

const (
	// PointerShift is log2(unsafe.Sizeof(uintptr)); the pointer size for
	// this architecture is (1 << PointerShift) bytes.
	PointerShift = 3

	// PageShift is log2(PageSize). Used to convert between a physical/
	// virtual address and its frame/page number.
	PageShift = 12

	// PageSize is the system's page size in bytes.
	PageSize = Size(1 << PageShift)

	// HeapBase is the fixed kernel-virtual address where the lazily
	// grown kernel heap begins. It sits in a reserved range well past the
	// direct map and the kernel image, avoiding the unusual
	// top-down-from-zero placement the original implementation used for
	// kernel stacks.
	HeapBase = VirtAddr(0xffff_a000_0000_0000)

	// KernelStackRegionBase is a kernel-virtual range reserved for
	// per-process kernel stacks, away from virtual address 0 and its
	// null-pointer guard page. No code allocates from this range:
	// kernel/proc takes every kernel stack from the heap.
	KernelStackRegionBase = VirtAddr(0xffff_b000_0000_0000)

	// KernelStackSize is a per-stack size for the reserved stack range.
	// kernel/proc does not use it; its stacks are kernelStackSize
	// (16 pages) each.
	KernelStackSize = Size(4 * Kb)

	// KernelStackGuardSize is the size of an unmapped guard gap between
	// stacks in the reserved stack range. Heap-allocated kernel stacks
	// have no such gap, so an overflowing stack is not caught by a fault.
	KernelStackGuardSize = Size(1 * Kb)

	// defaultDirectMapBase is this architecture's fixed kernel-virtual
	// address for the start of the direct map of all physical memory.
	defaultDirectMapBase = VirtAddr(0xffff_8000_0000_0000)
)

// DirectMapBase is the kernel-virtual address where the direct map of all
// physical memory begins. It defaults to the architecture's fixed slot but
// is a variable, not a constant, so tests running on a host (rather than on
// real hardware with the direct map actually installed) can point it at an
// address that makes PhyAddr/VirtAddr round-trips land inside a real Go
// buffer instead of the unmapped amd64 canonical-address range.
var DirectMapBase = defaultDirectMapBase
