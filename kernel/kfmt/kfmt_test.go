package kfmt

import "testing"

type bufWriter struct {
	buf []byte
}

func (w *bufWriter) WriteByte(b byte) { w.buf = append(w.buf, b) }
func (w *bufWriter) Write(p []byte)   { w.buf = append(w.buf, p...) }

func TestPrintf(t *testing.T) {
	w := &bufWriter{}
	SetOutput(w)
	defer SetOutput(nil)

	printfn := Printf

	specs := []struct {
		fn  func()
		exp string
	}{
		{func() { printfn("no args") }, "no args"},
		{func() { printfn("%t", true) }, "true"},
		{func() { printfn("%41t", false) }, "false"},
		{func() { printfn("%s arg", "STRING") }, "STRING arg"},
		{func() { printfn("%s arg", []byte("BYTES")) }, "BYTES arg"},
		{func() { printfn("'%4s'", "ABC") }, "' ABC'"},
		{func() { printfn("'%4s'", "ABCDE") }, "'ABCDE'"},
		{func() { printfn("uint arg: %d", uint8(10)) }, "uint arg: 10"},
		{func() { printfn("uint arg: %o", uint16(0777)) }, "uint arg: 777"},
		{func() { printfn("uint arg: 0x%x", uint32(0xbadf00d)) }, "uint arg: 0xbadf00d"},
		{func() { printfn("padded: '%10d'", uint64(123)) }, "padded: '       123'"},
		{func() { printfn("int arg: %d", -42) }, "int arg: -42"},
		{func() { printfn("%s%s", "a", "b") }, "ab"},
		{func() { printfn("%d%%", 5) }, "5%"},
		{func() { printfn("missing: %d") }, "missing: (MISSING)"},
		{func() { printfn("extra", 1) }, "extra%!(EXTRA)"},
		{func() { printfn("wrong: %d", "nope") }, "wrong: %!(WRONGTYPE)"},
	}

	for i, s := range specs {
		w.buf = w.buf[:0]
		s.fn()
		if got := string(w.buf); got != s.exp {
			t.Errorf("case %d: got %q, want %q", i, got, s.exp)
		}
	}
}

func TestPrintfNoOutputInstalled(t *testing.T) {
	SetOutput(nil)
	Printf("%s", "dropped silently, must not panic")
}
