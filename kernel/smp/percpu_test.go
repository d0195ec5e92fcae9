package smp

import (
	"testing"

	"x86kernel/kernel"
)

func resetTable(t *testing.T, apicIDs []uint8) {
	t.Helper()
	table = make([]cpu, len(apicIDs))
	for i, id := range apicIDs {
		table[i].apicID = id
	}
	saved := currentAPICIDFn
	t.Cleanup(func() { currentAPICIDFn = saved })
}

func TestCurrentIndexFindsOwnAPICID(t *testing.T) {
	resetTable(t, []uint8{0, 1, 2})
	currentAPICIDFn = func() uint8 { return 2 }

	if got := currentIndex(); got != 2 {
		t.Errorf("got index %d, want 2", got)
	}
}

func TestCurrentIndexPanicsOnUnknownAPICID(t *testing.T) {
	resetTable(t, []uint8{0, 1})
	currentAPICIDFn = func() uint8 { return 99 }
	kernel.SetPanicSink(func(_, message string) { panic(message) })
	t.Cleanup(func() { kernel.SetPanicSink(nil) })

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unknown Local APIC ID")
		}
	}()
	currentIndex()
}

func TestCallQueueFIFO(t *testing.T) {
	var q callQueue
	order := []int{}

	q.push(CallDesc{invoke: func() { order = append(order, 1) }})
	q.push(CallDesc{invoke: func() { order = append(order, 2) }})
	q.push(CallDesc{invoke: func() { order = append(order, 3) }})

	for {
		d, ok := q.pop()
		if !ok {
			break
		}
		d.invoke()
	}

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected FIFO order [1 2 3], got %v", order)
	}
}
