package smp

import (
	"sync/atomic"

	"x86kernel/kernel/cpu"
	"x86kernel/kernel/irq"
)

// CallDesc is a type-erased, owning reference to one pending remote call.
// invoke performs the caller's work and stores its result; it captures
// everything it needs by value, since the caller's stack frame may be gone
// by the time the destination CPU gets to it.
type CallDesc struct {
	invoke func()
}

// CallResult is the shared handle a caller uses to wait for and retrieve
// the outcome of a call running on another CPU.
type CallResult[R any] struct {
	done  atomic.Bool
	value R
}

func (r *CallResult[R]) store(v R) {
	r.value = v
	r.done.Store(true)
}

// Wait busy-loops, with a pause hint, until the remote call has completed.
func (r *CallResult[R]) Wait() {
	for !r.done.Load() {
		cpu.Pause()
	}
}

// ReturnValue waits for the call to complete and returns its result.
func (r *CallResult[R]) ReturnValue() R {
	r.Wait()
	return r.value
}

// sendRemoteCallFn delivers the IPI that triggers draining of destCPU's
// queue. Overridden in tests, since the real implementation touches LAPIC
// MMIO.
var sendRemoteCallFn = func(destCPU int) {
	lapic.SendIPI(table[destCPU].apicID, uint8(irq.RemoteCallVector))
}

// InvokeOn queues fn to run on destCPU and returns immediately with a
// CallResult the caller can wait on. fn must not close over any variable
// the caller still mutates afterwards: the queued closure runs on another
// CPU, at a time of its choosing, long after this call returns.
func InvokeOn[R any](destCPU int, fn func() R) *CallResult[R] {
	result := &CallResult[R]{}
	desc := CallDesc{invoke: func() {
		result.store(fn())
	}}

	table[destCPU].queue.push(desc)
	sendRemoteCallFn(destCPU)

	return result
}

// remoteCallHandler drains the calling CPU's queue in strict FIFO order.
// The draining guard means a handler invoked from inside this loop that
// itself enqueues further work (or whose IPI fires again before this loop
// notices the queue is empty) never starts a second, overlapping drain: the
// outer loop will simply see the new item on its next iteration.
func remoteCallHandler(vector irq.Vector, regs *irq.Regs, frame *irq.Frame) {
	c := &table[currentIndex()]
	if c.draining {
		return
	}

	c.draining = true
	for {
		desc, ok := c.queue.pop()
		if !ok {
			break
		}
		desc.invoke()
	}
	c.draining = false
}

// Init registers the remote-call IPI handler. Must run after irq.Init.
func Init() {
	irq.RegisterHandler(irq.RemoteCallVector, remoteCallHandler)
}
