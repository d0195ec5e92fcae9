package irq

import "x86kernel/kernel"

// Handler processes an interrupt or exception once it has been routed to a
// specific vector.
type Handler func(vector Vector, regs *Regs, frame *Frame)

var (
	handlers   [256]Handler
	loggedOnce [256]bool

	errReservedVector         = &kernel.Error{Module: "irq", Message: "vector has no valid exception or handler slot"}
	errUnhandledArchitectural = &kernel.Error{Module: "irq", Message: "architectural exception fired with no registered handler"}

	// eoiFn sends end-of-interrupt to the Local APIC. It is a var, not a
	// direct call, because the real implementation touches LAPIC MMIO and
	// because wiring it to the concrete apic package here would need that
	// package to exist before irq can even be compiled standalone; kernel
	// init assigns it once the Local APIC is up.
	eoiFn = func() {}

	// logUnhandledFn reports an unregistered user-defined vector the first
	// time it fires. Overridden in tests to avoid depending on kfmt output.
	logUnhandledFn = func(v Vector) {}
)

// SetEOIFunc wires the function GenericInterruptHandler calls to signal
// end-of-interrupt to the Local APIC. Kernel init calls this once the
// Local APIC is mapped and enabled.
func SetEOIFunc(fn func()) {
	eoiFn = fn
}

func init() {
	for v := 0; v <= int(architecturalRangeEnd); v++ {
		vector := Vector(v)
		if !IsReserved(vector) {
			handlers[vector] = defaultArchitecturalHandler
		}
	}
}

// defaultArchitecturalHandler is installed for every architectural vector
// until something overrides it with RegisterHandler, and restored by
// DeregisterHandler. A fired architectural exception with no real handler
// is fatal.
func defaultArchitecturalHandler(vector Vector, regs *Regs, frame *Frame) {
	kernel.Panic(errUnhandledArchitectural)
}

// RegisterHandler installs handler for vector. Registering a reserved
// vector panics: it has no exception defined and can never legitimately
// fire.
func RegisterHandler(vector Vector, handler Handler) {
	if IsReserved(vector) {
		kernel.Panic(errReservedVector)
	}
	handlers[vector] = handler
}

// DeregisterHandler removes the handler installed for vector. User-defined
// vectors go back to unhandled (logged once and skipped if they fire
// again); architectural vectors go back to panic-on-fire.
func DeregisterHandler(vector Vector) {
	if IsReserved(vector) {
		kernel.Panic(errReservedVector)
	}
	if IsUserDefined(vector) {
		handlers[vector] = nil
		return
	}
	handlers[vector] = defaultArchitecturalHandler
}

// GenericInterruptHandler is the single Go-level entry point every IDT
// gate funnels into, after the per-vector stub and the shared assembly
// trampoline have built regs and frame on the stack. It always EOIs the
// Local APIC before returning, whether or not a handler ran.
func GenericInterruptHandler(vector Vector, regs *Regs, frame *Frame) {
	if IsReserved(vector) {
		kernel.Panic(errReservedVector)
	}

	h := handlers[vector]
	if h == nil {
		if IsUserDefined(vector) {
			if !loggedOnce[vector] {
				loggedOnce[vector] = true
				logUnhandledFn(vector)
			}
			eoiFn()
			return
		}
		kernel.Panic(errUnhandledArchitectural)
	}

	h(vector, regs, frame)
	eoiFn()
}
