//go:build !tinygo || !cortexm

package core

import "time"

// CycleCounterInit is a no-op without a hardware cycle counter
func CycleCounterInit() {}

// Cycles emulates a CPU cycle counter running at the configured CPU
// frequency (regular Go implementation)
func Cycles() uint32 {
	ns := uint64(time.Since(bootTime))
	hz := uint64(GetConfig().CPUFrequencyHz)
	// split to keep ns*hz inside 64 bits
	return uint32(ns/1000000000*hz + ns%1000000000*hz/1000000000)
}
