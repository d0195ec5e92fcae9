// Package irq implements the IDT, the generic interrupt dispatch path and
// handler registration for the interrupt/exception vector space.
package irq

// Vector identifies one of the 256 IDT slots.
type Vector uint8

// CPU-defined exception vectors, per the amd64 architectural vector
// assignment. Not every vector 0..31 names a defined exception; the rest
// are reserved (see IsReserved).
const (
	DivideByZero               = Vector(0)
	Debug                      = Vector(1)
	NMI                        = Vector(2)
	Breakpoint                 = Vector(3)
	Overflow                   = Vector(4)
	BoundRangeExceeded         = Vector(5)
	InvalidOpcode              = Vector(6)
	DeviceNotAvailable         = Vector(7)
	DoubleFault                = Vector(8)
	InvalidTSS                 = Vector(10)
	SegmentNotPresent          = Vector(11)
	StackSegmentFault          = Vector(12)
	GPFException               = Vector(13)
	PageFaultException         = Vector(14)
	FloatingPointException     = Vector(16)
	AlignmentCheck             = Vector(17)
	MachineCheck               = Vector(18)
	SIMDFloatingPointException = Vector(19)
)

// Designated user-defined vectors. Fixed assignments in the 32..255 range,
// chosen once at link time rather than negotiated at runtime.
const (
	PITCalibrationVector = Vector(32)
	LAPICTimerVector     = Vector(33)
	SelfTestVector       = Vector(34)
	RemoteCallVector     = Vector(35)
)

// architecturalRangeEnd is the last vector the CPU itself assigns meaning
// to; everything above it is user-defined.
const architecturalRangeEnd = Vector(31)

// IsArchitectural reports whether v falls in the CPU-defined vector range.
func IsArchitectural(v Vector) bool { return v <= architecturalRangeEnd }

// IsUserDefined reports whether v is available for software-assigned use.
func IsUserDefined(v Vector) bool { return !IsArchitectural(v) }

// IsReserved reports whether v sits in the architectural range but has no
// exception, and therefore no handler slot, assigned to it: vector 15 and
// the 22..31 block. Registering a handler for a reserved vector panics.
func IsReserved(v Vector) bool {
	return v == 15 || (v >= 22 && v <= 31)
}
