package core

import "time"

// Counter is a free-running 32-bit counter. The difference of two reads is
// valid as long as less than one full wrap elapsed between them.
type Counter interface {
	Now() uint32
}

// CounterFunc adapts a plain function to Counter
type CounterFunc func() uint32

func (f CounterFunc) Now() uint32 {
	return f()
}

var bootTime = time.Now()

// Counters supplied by the host environment
var (
	SystemMicros Counter = CounterFunc(Micros)
	SystemCycles Counter = CounterFunc(Cycles)
)

// Micros returns microseconds since boot, wrapping at 2^32 (~71 minutes)
func Micros() uint32 {
	return uint32(time.Since(bootTime) / time.Microsecond)
}

// MicrosToCycles converts microseconds to CPU cycles, rounded to nearest.
// The result is 64 bits wide so callers can detect periods that do not fit
// the 32-bit counter.
func MicrosToCycles(us uint32, cpuHz uint32) uint64 {
	return (uint64(us)*uint64(cpuHz) + 500000) / 1000000
}

// CyclesToMicros converts CPU cycles to microseconds, rounded to nearest
func CyclesToMicros(cycles uint32, cpuHz uint32) uint32 {
	if cpuHz == 0 {
		return 0
	}
	return uint32((uint64(cycles)*1000000 + uint64(cpuHz)/2) / uint64(cpuHz))
}
