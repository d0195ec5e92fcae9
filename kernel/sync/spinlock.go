// Package sync provides the synchronization primitives used throughout the
// kernel core: a spinlock that optionally masks interrupts around its
// critical section, and an atomic integer wrapper.
package sync

import "x86kernel/kernel/cpu"

import stdatomic "sync/atomic"

var (
	// pauseFn is the PAUSE primitive the busy-wait loop below runs between
	// attempts.
	pauseFn = cpu.Pause
)

// SpinLock is a single-word atomic flag. A task trying to acquire an already
// held lock busy-waits until the owner releases it. Re-acquiring a lock
// already held by the current context deadlocks, same as the teacher's
// implementation.
//
// The zero value leaves the interrupt-enable state alone. A lock built by
// NewInterruptSafeSpinLock instead disables interrupts for the duration of
// the critical section, and Unlock restores whatever interrupt-enable state
// was in effect before Lock ran.
type SpinLock struct {
	state     uint32
	savedIF   bool
	disableIF bool
}

// NewInterruptSafeSpinLock returns a SpinLock that disables interrupts around
// its critical section. The heap's lock is built this way; the per-CPU
// remote-call queues use the zero value, which does not mask interrupts.
func NewInterruptSafeSpinLock() *SpinLock {
	return &SpinLock{disableIF: true}
}

// Lock blocks until the lock can be acquired by the current CPU.
func (l *SpinLock) Lock() {
	if l.disableIF {
		ifWasSet := cpu.InterruptsEnabled()
		cpu.DisableInterrupts()
		l.acquire()
		l.savedIF = ifWasSet
		return
	}
	l.acquire()
}

func (l *SpinLock) acquire() {
	for !stdatomic.CompareAndSwapUint32(&l.state, 0, 1) {
		pauseFn()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *SpinLock) TryLock() bool {
	return stdatomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Unlock releases a held lock, restoring the interrupt-enable state that was
// in effect before the matching Lock call if this SpinLock disables
// interrupts. Calling Unlock on a free lock has no effect.
func (l *SpinLock) Unlock() {
	restore := l.disableIF && l.savedIF
	l.savedIF = false
	stdatomic.StoreUint32(&l.state, 0)
	if restore {
		cpu.EnableInterrupts()
	}
}
