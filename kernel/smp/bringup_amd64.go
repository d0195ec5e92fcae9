package smp

import (
	"x86kernel/kernel"
	"x86kernel/kernel/acpi"
	"x86kernel/kernel/mem"
)

var (
	errNotPageAligned  = &kernel.Error{Module: "smp", Message: "AP bootstrap trampoline must be page-aligned"}
	errAboveRealMode   = &kernel.Error{Module: "smp", Message: "AP bootstrap trampoline must live below 1MiB"}
	errCPUNotAvailable = &kernel.Error{Module: "smp", Message: "target CPU is not present and enabled/online-capable per ACPI"}

	// DelayFn busy-waits for roughly the given number of milliseconds. The
	// real implementation is LAPIC-timer based; it is an external
	// collaborator injected here so wake_application_processor's sequencing
	// can be tested without a working timer.
	DelayFn = func(ms uint32) {}
)

// realModeLimit is the top of the address range real-mode code (and hence
// an AP's startup trampoline) can live in.
const realModeLimit = mem.PhyAddr(1 << 20)

// WakeApplicationProcessor brings up the CPU with Local APIC ID id,
// following the INIT-delay-SIPI sequence: send INIT, wait ~10ms, then send
// one Startup IPI carrying bootstrapPaddr's page number in the vector
// field. The woken core is expected to begin executing real-mode code at
// bootstrapPaddr.
func WakeApplicationProcessor(info *acpi.Info, id uint8, bootstrapPaddr mem.PhyAddr) {
	if !bootstrapPaddr.Aligned() {
		kernel.Panic(errNotPageAligned)
	}
	if bootstrapPaddr >= realModeLimit {
		kernel.Panic(errAboveRealMode)
	}

	proc, found := info.Processor(id)
	if !found || !(proc.Enabled || proc.OnlineCapable) {
		kernel.Panic(errCPUNotAvailable)
	}

	sendInitIPIFn(id)
	DelayFn(10)
	sendStartupIPIFn(id, bootstrapPaddr)
}

// ICR message-type/trigger field values, combined the way apic.WriteICR
// expects: level-assert | message type | vector.
const (
	icrLevelAssert = 0x4000
	icrMsgTypeINIT = 0x0500
	icrMsgTypeSIPI = 0x0600
)

var (
	sendInitIPIFn = func(destAPICID uint8) {
		value := uint64(destAPICID)<<56 | uint64(icrMsgTypeINIT)
		lapic.WriteICR(value)
	}

	sendStartupIPIFn = func(destAPICID uint8, bootstrapPaddr mem.PhyAddr) {
		page := uint8(bootstrapPaddr.Value() >> 12)
		value := uint64(destAPICID)<<56 | uint64(icrLevelAssert) | uint64(icrMsgTypeSIPI) | uint64(page)
		lapic.WriteICR(value)
	}
)
