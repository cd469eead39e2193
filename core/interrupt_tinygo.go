//go:build tinygo

package core

import "runtime/interrupt"

// InterruptState is the saved interrupt mask returned by DisableInterrupts
type InterruptState = interrupt.State

// DisableInterrupts disables interrupts and returns the previous state.
// Register rearm sequences run between this and RestoreInterrupts so a
// match interrupt cannot observe a half-written compare/counter pair.
func DisableInterrupts() InterruptState {
	return interrupt.Disable()
}

// RestoreInterrupts restores the interrupt state
func RestoreInterrupts(state InterruptState) {
	interrupt.Restore(state)
}
