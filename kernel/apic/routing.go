package apic

import (
	"x86kernel/kernel"
	"x86kernel/kernel/acpi"
)

var errNoIOAPICForIRQ = &kernel.Error{Module: "apic", Message: "no I/O APIC owns this IRQ's Global System Interrupt"}

// MapIRQ resolves the legacy ISA IRQ irq (0..15) to a Global System
// Interrupt via info's interrupt source overrides (identity if ACPI
// declared none), finds the I/O APIC among ioapics whose range contains
// that GSI, and programs its redirection entry: fixed delivery, physical
// destination destAPICID, polarity and trigger mode from the override (or
// the ISA bus defaults of active-high/edge), unmasked.
func MapIRQ(info *acpi.Info, ioapics []*IOAPIC, irq uint8, vector uint8, destAPICID uint8) *kernel.Error {
	gsi := uint32(irq)
	polarity, trigger := acpi.PolarityActiveHigh, acpi.TriggerEdge

	if ov, ok := info.OverrideFor(irq); ok {
		gsi = ov.GSI
		if ov.Polarity != acpi.PolarityBusDefault {
			polarity = ov.Polarity
		}
		if ov.Trigger != acpi.TriggerBusDefault {
			trigger = ov.Trigger
		}
	}

	for _, io := range ioapics {
		if !io.Handles(gsi) {
			continue
		}

		pin := uint8(gsi - io.GSIBase())
		pol, trig := uint8(0), uint8(0)
		if polarity == acpi.PolarityActiveLow {
			pol = 1
		}
		if trigger == acpi.TriggerLevel {
			trig = 1
		}

		io.RedirectEntry(pin, vector, 0 /* fixed */, 0 /* physical */, pol, trig, destAPICID)
		io.MaskEntry(pin, false)
		return nil
	}

	return errNoIOAPICForIRQ
}
