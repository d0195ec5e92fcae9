// +build amd64

package vmm

const (
	// pageLevels is the number of page-table levels amd64 paging uses:
	// PML4, PDPT, PD and PT.
	pageLevels = 4

	// ptePhysPageMask extracts the 51-bit physical address (bits 12-51)
	// encoded in a page table entry.
	ptePhysPageMask = uint64(0x000f_ffff_ffff_f000)
)

var (
	// pageLevelShifts gives the bit position, within a virtual address,
	// of the index into each level's 512-entry table.
	pageLevelShifts = [pageLevels]uint8{39, 30, 21, 12}

	// pageLevelBits is the number of virtual-address bits consumed by
	// each level's index (9 bits -> 512 entries, uniform across levels).
	pageLevelBits = [pageLevels]uint8{9, 9, 9, 9}
)

const (
	// FlagPresent marks an entry as valid; the MMU ignores every other
	// bit of an entry with this flag cleared.
	FlagPresent PageTableEntryFlag = 1 << 0

	// FlagWritable allows writes through this mapping.
	FlagWritable PageTableEntryFlag = 1 << 1

	// FlagUser allows user-mode access through this mapping. Without it
	// only kernel-mode code may use the mapping.
	FlagUser PageTableEntryFlag = 1 << 2

	// FlagWriteThrough selects write-through caching for this mapping.
	FlagWriteThrough PageTableEntryFlag = 1 << 3

	// FlagCacheDisable disables caching for this mapping.
	FlagCacheDisable PageTableEntryFlag = 1 << 4

	// FlagAccessed is set by the CPU the first time this entry is used
	// for a translation.
	FlagAccessed PageTableEntryFlag = 1 << 5

	// FlagDirty is set by the CPU when a write occurs through a leaf
	// entry carrying this flag. Meaningless on non-leaf levels.
	FlagDirty PageTableEntryFlag = 1 << 6

	// FlagGlobal excludes a leaf entry's TLB entry from invalidation on
	// a CR3 reload. Meaningless on non-leaf levels.
	FlagGlobal PageTableEntryFlag = 1 << 8

	// FlagNoExecute marks the mapped page as non-executable.
	FlagNoExecute PageTableEntryFlag = 1 << 63

	// PermissiveParentFlags are the flags set on every non-leaf entry
	// created while establishing a mapping. Permissions are hoisted
	// permissive at the upper levels; the leaf entry is the authoritative
	// source of the effective permission.
	PermissiveParentFlags = FlagPresent | FlagWritable | FlagUser
)
