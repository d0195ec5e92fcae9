// Package kmain is the x86_64 entry point. It owns the fixed
// initialization order every other package assumes has already run:
// bootstrap frame allocation, the direct map, phase-2 frame allocation, the
// heap, interrupts and the Local/IO APICs, the per-CPU table, remote calls,
// and finally routing of the legacy PIT IRQ. Kmain does not wake the
// application processors.
package kmain

import (
	"unsafe"

	"x86kernel/kernel"
	"x86kernel/kernel/acpi"
	"x86kernel/kernel/apic"
	"x86kernel/kernel/boot"
	"x86kernel/kernel/irq"
	"x86kernel/kernel/kfmt"
	"x86kernel/kernel/mem"
	"x86kernel/kernel/mem/heap"
	"x86kernel/kernel/mem/pmm"
	"x86kernel/kernel/mem/vmm"
	"x86kernel/kernel/smp"
)

const (
	heapStart   = mem.HeapBase
	heapMaxSize = mem.Size(256 << 20)
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "kmain returned; this must never happen"}

// Kmain is the only Go symbol the rt0 assembly trampoline calls, after it
// has set up the GDT and a minimal stack. It is handed a pointer to the
// boot.Info handoff block, a populated acpi.Info describing the platform's
// interrupt routing, and the highest physical address the bootloader's
// memory map reports.
//
// Kmain is not expected to return. If it does, the rt0 code halts the CPU.
//
//go:noinline
func Kmain(infoPtr uintptr, acpiInfo *acpi.Info, maxPhyAddr mem.PhyAddr) {
	kernel.SetPanicSink(kfmt.PanicSink)
	kfmt.Printf("booting...\n")

	info := (*boot.Info)(unsafe.Pointer(infoPtr))

	bootstrap := pmm.Init(info)

	if err := vmm.InitDirectMap(bootstrap, maxPhyAddr); err != nil {
		kernel.Panic(err)
	}

	var embedded pmm.EmbeddedFreeListAllocator
	pmm.PromoteToEmbeddedFreeList(bootstrap, &embedded)

	heap.Init(heapStart, heapMaxSize)

	irq.Init()

	lapic := apic.New(mem.PhyAddr(acpiInfo.LocalAPICBase).ToVirtual())
	irq.SetEOIFunc(lapic.EOI)

	ioapics := make([]*apic.IOAPIC, len(acpiInfo.IOAPICs))
	for i, d := range acpiInfo.IOAPICs {
		ioapics[i] = apic.NewIOAPIC(mem.PhyAddr(d.Address).ToVirtual(), d.GSIBase)
	}

	apicIDs := make([]uint8, len(acpiInfo.Processors))
	for i, p := range acpiInfo.Processors {
		apicIDs[i] = p.APICID
	}
	smp.InitTable(lapic, apicIDs)
	smp.Init()

	const legacyPITIRQ = 0
	if len(apicIDs) > 0 {
		if err := apic.MapIRQ(acpiInfo, ioapics, legacyPITIRQ, uint8(irq.PITCalibrationVector), apicIDs[0]); err != nil {
			kernel.Panic(err)
		}
	}

	kfmt.Printf("boot complete: %d CPU(s), %d I/O APIC(s)\n", smp.NumCPUs(), len(ioapics))

	kernel.Panic(errKmainReturned)
}
