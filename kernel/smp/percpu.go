// Package smp implements the per-CPU table, the cross-CPU remote-call
// queue, and application-processor bring-up.
package smp

import (
	"x86kernel/kernel"
	"x86kernel/kernel/apic"
	"x86kernel/kernel/sync"
)

var errUnknownCPU = &kernel.Error{Module: "smp", Message: "current CPU is not present in the per-CPU table"}

// callQueue is a per-CPU FIFO of pending remote-call descriptors.
type callQueue struct {
	lock  sync.SpinLock
	items []CallDesc
}

func (q *callQueue) push(d CallDesc) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.items = append(q.items, d)
}

// pop removes and returns the front descriptor, or reports false if the
// queue is empty.
func (q *callQueue) pop() (CallDesc, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) == 0 {
		return CallDesc{}, false
	}
	d := q.items[0]
	q.items = q.items[1:]
	return d, true
}

// cpu is one entry of the per-CPU table. draining is only ever touched by
// code running on this CPU (the remote-call IPI handler), so it needs no
// synchronization of its own.
type cpu struct {
	apicID   uint8
	queue    callQueue
	draining bool
}

var (
	table []cpu
	lapic *apic.LocalAPIC

	// currentAPICIDFn resolves the calling CPU's Local APIC ID. Overridden
	// in tests, since the real implementation reads LAPIC MMIO.
	currentAPICIDFn = func() uint8 { return lapic.ID() }
)

// InitTable populates the per-CPU table, one entry per Local APIC ID in
// apicIDs. Must run after heap init and before AP bring-up, per the fixed
// initialization order.
func InitTable(l *apic.LocalAPIC, apicIDs []uint8) {
	lapic = l
	table = make([]cpu, len(apicIDs))
	for i, id := range apicIDs {
		table[i].apicID = id
	}
}

// NumCPUs returns the number of entries in the per-CPU table.
func NumCPUs() int { return len(table) }

// currentIndex returns the calling CPU's slot in the table.
func currentIndex() int {
	id := currentAPICIDFn()
	for i := range table {
		if table[i].apicID == id {
			return i
		}
	}
	kernel.Panic(errUnknownCPU)
	return -1
}
