package kernel

import "x86kernel/kernel/cpu"

var (
	// cpuHaltFn is the halt primitive Panic ends with.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}

	// panicSink receives the formatted panic report before the CPU halts.
	// It defaults to nil (dropped) until a logger wires itself in via
	// SetPanicSink; this keeps the kernel package free of a hard
	// dependency on kfmt so early boot code that cannot yet allocate can
	// still call Panic safely.
	panicSink func(module, message string)
)

// SetPanicSink registers the function used to report a panic before halting.
func SetPanicSink(fn func(module, message string)) {
	panicSink = fn
}

// Panic reports the supplied error (if any) through the panic sink, masks
// interrupts on the calling CPU and halts it. Other CPUs are not signalled
// and keep running. Panic never returns. It accepts *Error, string and error values so it can also serve as
// a redirection target for the builtin panic().
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	default:
		err = errRuntimePanic
	}

	if panicSink != nil && err != nil {
		panicSink(err.Module, err.Message)
	}

	cpu.DisableInterrupts()
	cpuHaltFn()
}

// Assert panics with the given message if cond is false.
func Assert(cond bool, module, message string) {
	if !cond {
		Panic(&Error{Module: module, Message: message})
	}
}
