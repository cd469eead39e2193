//go:build !tinygo

package core

// InterruptState is a placeholder for the saved interrupt mask on host builds
type InterruptState uintptr

// DisableInterrupts is a no-op on regular Go (for testing)
func DisableInterrupts() InterruptState {
	return 0
}

// RestoreInterrupts is a no-op on regular Go (for testing)
func RestoreInterrupts(state InterruptState) {
	// No-op
}
