package irq

import (
	"testing"

	"x86kernel/kernel/kfmt"
)

type bufWriter struct{ buf []byte }

func (w *bufWriter) WriteByte(b byte) { w.buf = append(w.buf, b) }
func (w *bufWriter) Write(p []byte)   { w.buf = append(w.buf, p...) }

func TestRegsPrint(t *testing.T) {
	w := &bufWriter{}
	kfmt.SetOutput(w)
	defer kfmt.SetOutput(nil)

	regs := Regs{RAX: 1, RBX: 2, RCX: 3, RDX: 4, RSI: 5, RDI: 6, RBP: 7,
		R8: 8, R9: 9, R10: 10, R11: 11, R12: 12, R13: 13, R14: 14, R15: 15}
	regs.Print()

	exp := "RAX = 0000000000000001 RBX = 0000000000000002\n" +
		"RCX = 0000000000000003 RDX = 0000000000000004\n" +
		"RSI = 0000000000000005 RDI = 0000000000000006\n" +
		"RBP = 0000000000000007\n" +
		"R8  = 0000000000000008 R9  = 0000000000000009\n" +
		"R10 = 000000000000000a R11 = 000000000000000b\n" +
		"R12 = 000000000000000c R13 = 000000000000000d\n" +
		"R14 = 000000000000000e R15 = 000000000000000f\n"

	if got := string(w.buf); got != exp {
		t.Fatalf("got:\n%q\nwant:\n%q", got, exp)
	}
}

func TestFramePrint(t *testing.T) {
	w := &bufWriter{}
	kfmt.SetOutput(w)
	defer kfmt.SetOutput(nil)

	frame := Frame{RIP: 1, CS: 2, RFlags: 3, RSP: 4, SS: 5, ErrorCode: 6}
	frame.Print()

	exp := "RIP = 0000000000000001 CS  = 0000000000000002\n" +
		"RSP = 0000000000000004 SS  = 0000000000000005\n" +
		"RFL = 0000000000000003 ERR = 0000000000000006\n"

	if got := string(w.buf); got != exp {
		t.Fatalf("got:\n%q\nwant:\n%q", got, exp)
	}
}

func TestVectorPredicates(t *testing.T) {
	cases := []struct {
		v                       Vector
		arch, user, reserved bool
	}{
		{0, true, false, false},
		{14, true, false, false},
		{15, true, false, true},
		{22, true, false, true},
		{31, true, false, true},
		{32, false, true, false},
		{255, false, true, false},
	}

	for _, c := range cases {
		if got := IsArchitectural(c.v); got != c.arch {
			t.Errorf("vector %d: IsArchitectural = %v, want %v", c.v, got, c.arch)
		}
		if got := IsUserDefined(c.v); got != c.user {
			t.Errorf("vector %d: IsUserDefined = %v, want %v", c.v, got, c.user)
		}
		if got := IsReserved(c.v); got != c.reserved {
			t.Errorf("vector %d: IsReserved = %v, want %v", c.v, got, c.reserved)
		}
	}
}
