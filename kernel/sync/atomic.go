package sync

import stdatomic "sync/atomic"

// Unsigned is the set of integer types an Atomic can wrap. Every operation is
// implemented as a single lock-prefixed 64-bit instruction regardless of the
// nominal width: this is an implementation simplification (all the counts
// this kernel tracks — refcounts, per-CPU counters, done flags — fit in 64
// bits) rather than a real per-width atomic.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Atomic wraps a value of type T and serializes every access through a
// lock-prefixed 64-bit operation.
type Atomic[T Unsigned] struct {
	v stdatomic.Uint64
}

// NewAtomic returns an Atomic initialized to the given value.
func NewAtomic[T Unsigned](initial T) *Atomic[T] {
	a := &Atomic[T]{}
	a.v.Store(uint64(initial))
	return a
}

// Read atomically returns the current value.
func (a *Atomic[T]) Read() T {
	return T(a.v.Load())
}

// Write atomically stores a new value.
func (a *Atomic[T]) Write(value T) {
	a.v.Store(uint64(value))
}

// FetchAdd atomically adds delta to the value and returns the value from
// before the add.
func (a *Atomic[T]) FetchAdd(delta T) T {
	old := a.v.Add(uint64(delta)) - uint64(delta)
	return T(old)
}

// CompareAndSwap atomically sets the value to new if it currently equals old,
// returning whether the swap took place.
func (a *Atomic[T]) CompareAndSwap(old, new T) bool {
	return a.v.CompareAndSwap(uint64(old), uint64(new))
}

// Inc atomically increments the value and returns the value after the
// increment (pre-increment semantics for the caller: read the return value).
func (a *Atomic[T]) Inc() T {
	return a.FetchAdd(1) + 1
}

// PostInc atomically increments the value and returns the value from before
// the increment.
func (a *Atomic[T]) PostInc() T {
	return a.FetchAdd(1)
}

// Dec atomically decrements the value and returns the value after the
// decrement.
func (a *Atomic[T]) Dec() T {
	return a.sub(1) - 1
}

// PostDec atomically decrements the value and returns the value from before
// the decrement.
func (a *Atomic[T]) PostDec() T {
	return a.sub(1)
}

// Add atomically adds delta to the value.
func (a *Atomic[T]) Add(delta T) {
	a.FetchAdd(delta)
}

// Sub atomically subtracts delta from the value. The source this kernel is
// based on has a known bug here where the subtraction is implemented as a
// fetch-add with the operand left unchanged (effectively adding instead of
// subtracting); this implementation performs real subtraction.
func (a *Atomic[T]) Sub(delta T) {
	a.sub(delta)
}

func (a *Atomic[T]) sub(delta T) T {
	old := a.v.Add(^(uint64(delta) - 1)) + uint64(delta)
	return T(old)
}
