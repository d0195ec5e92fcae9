package proc

import (
	"testing"
	"unsafe"

	"x86kernel/kernel"
	"x86kernel/kernel/mem"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	// kernel.Panic halts the CPU, which faults on a host; a sink that panics
	// first turns it into a recoverable Go panic.
	kernel.SetPanicSink(func(_, message string) { panic(message) })
	t.Cleanup(func() { kernel.SetPanicSink(nil) })
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	fn()
}

func TestStateTransitions(t *testing.T) {
	p := &Process{state: Blocked}
	p.Unblock()
	if p.state != Ready {
		t.Fatalf("expected Ready after Unblock, got %v", p.state)
	}

	p.state = Running
	p.Preempt()
	if p.state != Ready {
		t.Fatalf("expected Ready after Preempt, got %v", p.state)
	}

	p.state = Running
	p.Block()
	if p.state != Blocked {
		t.Fatalf("expected Blocked after Block, got %v", p.state)
	}
}

func TestInvalidTransitionsPanic(t *testing.T) {
	expectPanic(t, func() { (&Process{state: Ready}).Unblock() })
	expectPanic(t, func() { (&Process{state: Blocked}).Preempt() })
	expectPanic(t, func() { (&Process{state: Ready}).Block() })
}

func TestBuildEntryFrameLayout(t *testing.T) {
	buf := make([]uintptr, 64)
	top := mem.VirtAddr(uintptr(unsafe.Pointer(&buf[32])))

	fn := func() {}
	newTop := buildEntryFrame(top, fn)

	wantSlots := 2 + numCalleeSavedSlots
	gotSlots := int(uintptr(top)-uintptr(newTop)) / 8
	if gotSlots != wantSlots {
		t.Fatalf("expected %d pushed words, got %d", wantSlots, gotSlots)
	}

	read := func(addr mem.VirtAddr) uintptr {
		return *(*uintptr)(unsafe.Pointer(uintptr(addr)))
	}

	// From the bottom (newTop) upward: 6 zeroed callee-saved slots, then
	// fn's address, then limbo's address.
	for i := 0; i < numCalleeSavedSlots; i++ {
		if got := read(newTop.Add(int64(i * 8))); got != 0 {
			t.Errorf("callee-saved slot %d: got %#x, want 0", i, got)
		}
	}
	if got, want := read(newTop.Add(int64(numCalleeSavedSlots*8))), functionAddr(fn); got != want {
		t.Errorf("fn return address: got %#x, want %#x", got, want)
	}
	if got, want := read(newTop.Add(int64((numCalleeSavedSlots+1)*8))), functionAddr(limbo); got != want {
		t.Errorf("limbo return address: got %#x, want %#x", got, want)
	}
}

func TestLimboPanics(t *testing.T) {
	expectPanic(t, limbo)
}
