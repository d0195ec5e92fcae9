package freelist

import (
	"testing"
	"unsafe"

	"x86kernel/kernel"
	"x86kernel/kernel/mem"
)

func bufAddr(buf []byte) mem.VirtAddr {
	return mem.VirtAddr(uintptr(unsafe.Pointer(&buf[0])))
}

func TestInsertCoalesce(t *testing.T) {
	buf := make([]byte, 256)
	base := bufAddr(buf)

	var l List

	l.Insert(base, 64)
	l.Insert(base.Add(128), 64)
	if got := len(l.Nodes()); got != 2 {
		t.Fatalf("expected 2 nodes, got %d", got)
	}
	for _, n := range l.Nodes() {
		if n.Size != 64 {
			t.Errorf("expected node size 64, got %d", n.Size)
		}
	}

	l.Insert(base.Add(64), 64)
	l.Insert(base.Add(192), 64)

	nodes := l.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected the list to collapse to 1 node, got %d", len(nodes))
	}
	if nodes[0].Addr != base || nodes[0].Size != 256 {
		t.Errorf("expected a single [base, base+256) node, got addr=%v size=%v", nodes[0].Addr, nodes[0].Size)
	}
}

func TestInsertSorted(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base.Add(1024), 64)
	l.Insert(base, 64)
	l.Insert(base.Add(2048), 64)

	nodes := l.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 disjoint nodes, got %d", len(nodes))
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].Addr >= nodes[i].Addr {
			t.Fatalf("list is not sorted ascending by base: %v", nodes)
		}
	}
}

func TestInsertOverlapPanics(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base, 128)

	kernel.SetPanicSink(func(_, message string) { panic(message) })
	t.Cleanup(func() { kernel.SetPanicSink(nil) })
	defer func() {
		if recover() == nil {
			t.Fatal("expected Insert to panic on overlapping range")
		}
	}()
	l.Insert(base.Add(64), 64)
}

func TestAllocCutsFromEnd(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base, 256)

	got, err := l.Alloc(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != base.Add(192) {
		t.Errorf("expected allocation to be cut from the node's end, got %v want %v", got, base.Add(192))
	}
	if nodes := l.Nodes(); len(nodes) != 1 || nodes[0].Size != 192 {
		t.Errorf("expected remaining node of size 192, got %v", nodes)
	}
}

func TestAllocExactConsumesNode(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base, 64)

	if _, err := l.Alloc(64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nodes := l.Nodes(); len(nodes) != 0 {
		t.Errorf("expected node to be fully consumed, got %v", nodes)
	}
}

func TestAllocOutOfMemory(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base, 32)

	if _, err := l.Alloc(4096); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}

func TestAllocRoundsUpBelowMinimum(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base, uint64AsSize(MinAllocSize()))

	got, err := l.Alloc(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != base {
		t.Errorf("expected allocation at base, got %v", got)
	}
}

func uint64AsSize(s mem.Size) mem.Size { return s }

func TestFreeReinsertsRange(t *testing.T) {
	buf := make([]byte, 4096)
	base := bufAddr(buf)

	var l List
	l.Insert(base, 256)

	a, _ := l.Alloc(64)
	l.Free(a, 64)

	if total := l.TotalFree(); total != 256 {
		t.Errorf("expected total free bytes to return to 256, got %d", total)
	}
}
