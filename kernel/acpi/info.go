// Package acpi holds the decoded subset of the platform's ACPI tables that
// interrupt routing and SMP bring-up need: Local APIC base, the legacy
// dual-8259 presence bit, the processor list, the I/O APIC list and IRQ
// source overrides. Parsing the raw RSDP/XSDT/MADT tables to produce an Info
// value is an external collaborator's job; this package only describes the
// result.
package acpi

// Info is the decoded view of a platform's MADT (Multiple APIC Description
// Table) and related tables.
type Info struct {
	LocalAPICBase   uint64
	Dual8259Present bool
	Processors      []Processor
	IOAPICs         []IOAPICDescriptor
	IRQOverrides    []IRQOverride
}

// Processor describes one logical CPU as enumerated by the MADT.
type Processor struct {
	ACPIProcessorID uint8
	APICID          uint8

	// Enabled means the CPU is usable right away. OnlineCapable means it
	// isn't currently enabled but can be brought up later (ACPI 6.3+);
	// wake_application_processor accepts either.
	Enabled       bool
	OnlineCapable bool
}

// IOAPICDescriptor describes one I/O APIC and the Global System Interrupt
// range it owns, as enumerated by the MADT.
type IOAPICDescriptor struct {
	ID      uint8
	Address uint32
	GSIBase uint32
}

// Polarity is an interrupt source's electrical polarity.
type Polarity uint8

const (
	PolarityBusDefault Polarity = iota
	PolarityActiveHigh
	PolarityActiveLow
)

// TriggerMode is an interrupt source's trigger mode.
type TriggerMode uint8

const (
	TriggerBusDefault TriggerMode = iota
	TriggerEdge
	TriggerLevel
)

// IRQOverride records that legacy ISA IRQ BusIRQ is actually wired to
// Global System Interrupt GSI, with the given polarity and trigger mode
// instead of the ISA bus defaults.
type IRQOverride struct {
	BusIRQ   uint8
	GSI      uint32
	Polarity Polarity
	Trigger  TriggerMode
}

// IOAPICFor returns the I/O APIC descriptor most likely to own gsi: ACPI
// only gives each I/O APIC its base GSI, not its entry count, so callers
// still need to confirm ownership against the live apic.IOAPIC's
// NumRedirEntries/Handles once it's mapped.
func (i *Info) IOAPICFor(gsi uint32) (IOAPICDescriptor, bool) {
	best, found := IOAPICDescriptor{}, false
	for _, d := range i.IOAPICs {
		if gsi >= d.GSIBase && (!found || d.GSIBase > best.GSIBase) {
			best, found = d, true
		}
	}
	return best, found
}

// OverrideFor returns the IRQ override record for the given legacy ISA IRQ,
// if ACPI declared one.
func (i *Info) OverrideFor(irq uint8) (IRQOverride, bool) {
	for _, o := range i.IRQOverrides {
		if o.BusIRQ == irq {
			return o, true
		}
	}
	return IRQOverride{}, false
}

// Processor returns the processor descriptor for the given Local APIC ID,
// if ACPI enumerated one.
func (i *Info) Processor(apicID uint8) (Processor, bool) {
	for _, p := range i.Processors {
		if p.APICID == apicID {
			return p, true
		}
	}
	return Processor{}, false
}
