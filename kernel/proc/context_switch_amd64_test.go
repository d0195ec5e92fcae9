package proc

import "testing"

func TestJumpToContextRejectsNonReady(t *testing.T) {
	expectPanic(t, func() { JumpToContext(&Process{state: Blocked}) })
	expectPanic(t, func() { JumpToContext(&Process{state: Running}) })
}

func TestContextSwitchRejectsInvalidCurrState(t *testing.T) {
	expectPanic(t, func() {
		ContextSwitch(&Process{state: Ready}, &Process{state: Ready})
	})
}

func TestContextSwitchRejectsNonReadyTarget(t *testing.T) {
	expectPanic(t, func() {
		ContextSwitch(&Process{state: Running}, &Process{state: Blocked})
	})
}
