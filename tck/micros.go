package tck

import "timertool/core"

// microUnits counts directly in microseconds
type microUnits struct{}

func (microUnits) fromMicros(us uint32) (uint32, error) {
	return us, nil
}

func (microUnits) toMicros(n uint32) uint32 {
	return n
}

func (microUnits) maxPeriod() (float32, error) {
	return 0, core.ErrNotImplemented
}

// NewMicros creates a channel polling a microsecond counter. A nil counter
// selects core.SystemMicros; a nil slot gives the channel its own storage.
func NewMicros(id uint8, counter core.Counter, slot *core.Callback) *Channel {
	if counter == nil {
		counter = core.SystemMicros
	}
	return newChannel(id, counter, microUnits{}, slot)
}
