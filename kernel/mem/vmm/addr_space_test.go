package vmm

import (
	"testing"

	"x86kernel/kernel"
	"x86kernel/kernel/mem/pmm"
)

func withActivePML4(t *testing.T, frame pmm.Frame) {
	t.Helper()
	saved := activePML4Fn
	activePML4Fn = func() uintptr { return uintptr(frame.Address().Value()) }
	t.Cleanup(func() { activePML4Fn = saved })
}

func withTableAccess(t *testing.T, tables *fakeTables) {
	t.Helper()
	saved := directMapAccess
	directMapAccess = tables.access
	t.Cleanup(func() { directMapAccess = saved })
}

func TestNewAddrSpaceCopiesKernelHalf(t *testing.T) {
	tables := newFakeTables()
	withTableAccess(t, tables)
	active := tables.add(0x1000)
	withActivePML4(t, active)

	for i := userEntries; i < entriesPerTable; i++ {
		tables.entries(active)[i].SetFlags(FlagPresent | FlagWritable)
		tables.entries(active)[i].SetFrame(pmm.FrameFromAddress(0))
	}
	for i := 0; i < userEntries; i++ {
		tables.entries(active)[i].SetFlags(FlagPresent | FlagUser)
	}

	newPML4 := tables.add(0x2000)
	allocFn := func() (pmm.Frame, *kernel.Error) { return newPML4, nil }

	space, err := NewAddrSpace(allocFn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := tables.entries(space.PML4())
	for i := 0; i < userEntries; i++ {
		if entries[i].HasFlags(FlagPresent) {
			t.Errorf("user entry %d: expected zeroed entry, got %#x", i, uint64(entries[i]))
		}
	}
	for i := userEntries; i < entriesPerTable; i++ {
		if !entries[i].HasFlags(FlagPresent | FlagWritable) {
			t.Errorf("kernel entry %d: expected to be copied from the active PML4", i)
		}
	}
}

func TestNewAddrSpacePropagatesAllocError(t *testing.T) {
	tables := newFakeTables()
	withActivePML4(t, tables.add(0x1000))

	wantErr := &kernel.Error{Module: "test", Message: "out of frames"}
	if _, err := NewAddrSpace(func() (pmm.Frame, *kernel.Error) { return pmm.Frame{}, wantErr }); err != wantErr {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestAddrSpaceDestroyFreesUserSubtreeOnly(t *testing.T) {
	tables := newFakeTables()
	withTableAccess(t, tables)
	pml4 := tables.add(0x1000)
	p3 := tables.add(0x2000)
	p2 := tables.add(0x3000)
	p1 := tables.add(0x4000)

	// one user mapping, walking down to a PT frame
	tables.entries(pml4)[0].SetFlags(FlagPresent)
	tables.entries(pml4)[0].SetFrame(p3)
	tables.entries(p3)[0].SetFlags(FlagPresent)
	tables.entries(p3)[0].SetFrame(p2)
	tables.entries(p2)[0].SetFlags(FlagPresent)
	tables.entries(p2)[0].SetFrame(p1)

	// a kernel-half entry that must never be freed
	kernelTable := tables.add(0x5000)
	tables.entries(pml4)[userEntries].SetFlags(FlagPresent)
	tables.entries(pml4)[userEntries].SetFrame(kernelTable)

	space := &AddrSpace{pml4: pml4}

	var freed []pmm.Frame
	space.Destroy(func(f pmm.Frame) { freed = append(freed, f) })

	want := map[pmm.Frame]bool{p3: true, p2: true, p1: true, pml4: true}
	if len(freed) != len(want) {
		t.Fatalf("expected %d frames freed, got %d (%v)", len(want), len(freed), freed)
	}
	for _, f := range freed {
		if !want[f] {
			t.Errorf("unexpected frame freed: %#x", f.Address())
		}
		if f == kernelTable {
			t.Error("kernel-half table must not be freed")
		}
	}
}
