package tck

import "timertool/core"

const maxCycles = 0xFFFFFFFF

// cycleUnits counts CPU cycles at cpuHz
type cycleUnits struct {
	cpuHz uint32
}

func (u cycleUnits) fromMicros(us uint32) (uint32, error) {
	n := core.MicrosToCycles(us, u.cpuHz)
	if n > maxCycles {
		return maxCycles, core.ErrPeriodOverflow
	}
	return uint32(n), nil
}

func (u cycleUnits) toMicros(n uint32) uint32 {
	return core.CyclesToMicros(n, u.cpuHz)
}

func (u cycleUnits) maxPeriod() (float32, error) {
	return float32(maxCycles) * 1e6 / float32(u.cpuHz), nil
}

// NewCycles creates a channel polling a CPU cycle counter running at
// cpuHz. A nil counter selects core.SystemCycles and a zero cpuHz the
// configured CPU frequency. Trigger subtracts the configured
// CycleCompensation; adjust Compensation after measuring the target.
func NewCycles(id uint8, counter core.Counter, cpuHz uint32, slot *core.Callback) *Channel {
	cfg := core.GetConfig()
	if counter == nil {
		counter = core.SystemCycles
	}
	if cpuHz == 0 {
		cpuHz = cfg.CPUFrequencyHz
	}
	c := newChannel(id, counter, cycleUnits{cpuHz: cpuHz}, slot)
	c.Compensation = cfg.CycleCompensation
	return c
}
