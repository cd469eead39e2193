// Package tck implements software timer channels driven by polling a
// free-running counter. There is no match hardware: an external loop calls
// Tick far more often than the shortest period in use, and Tick runs the
// callback inline once the period has elapsed.
package tck

import "timertool/core"

// units converts between microseconds and the counter's native unit
type units interface {
	fromMicros(us uint32) (uint32, error)
	toMicros(n uint32) uint32
	maxPeriod() (float32, error)
}

// Channel is a polled timer channel. Periods are stored in counter units.
type Channel struct {
	core.Base

	id      uint8
	counter core.Counter
	units   units

	// Compensation is subtracted from the period Trigger computes, to
	// absorb the work done between reading the counter and returning.
	// Only meaningful for the cycle variant.
	Compensation uint32

	startCount    uint32
	currentPeriod uint32
	nextPeriod    uint32
	triggered     bool
	periodic      bool
	busy          bool // Tick is running the callback
}

var _ core.Channel = (*Channel)(nil)

func newChannel(id uint8, counter core.Counter, u units, slot *core.Callback) *Channel {
	return &Channel{
		Base:    core.NewBase(slot),
		id:      id,
		counter: counter,
		units:   u,
	}
}

// Armed reports whether the channel will fire once its period elapses
func (c *Channel) Armed() bool {
	return c.triggered
}

// Tick fires the callback if the channel is armed and its period elapsed.
// It is not reentrant per channel: a callback that polls again does not
// fire its own channel recursively, but other channels still fire.
func (c *Channel) Tick() {
	if c.busy || !c.triggered || c.currentPeriod == 0 {
		return
	}
	now := c.counter.Now()
	if now-c.startCount < c.currentPeriod {
		return
	}

	c.busy = true
	period := c.currentPeriod
	c.startCount = now
	c.triggered = c.periodic
	c.currentPeriod = c.nextPeriod
	core.RecordTiming(core.EvtFire, c.id, core.Micros(), period, now)
	c.Fire()
	c.busy = false
}

// Begin stores cb and arms the channel, counting from now
func (c *Channel) Begin(cb core.Callback, period uint32, mode core.Mode) error {
	n, err := c.units.fromMicros(period)

	c.periodic = mode == core.Periodic
	c.currentPeriod = n
	c.nextPeriod = n
	c.SetCallback(cb)
	c.startCount = c.counter.Now()
	c.triggered = true

	core.RecordTiming(core.EvtBegin, c.id, core.Micros(), n, uint32(mode))
	return c.report(err, n)
}

// Trigger restarts the channel to fire delay microseconds from now
func (c *Channel) Trigger(delay uint32) error {
	c.startCount = c.counter.Now()
	n, err := c.units.fromMicros(delay)
	c.nextPeriod = n
	c.currentPeriod = n
	if n > c.Compensation {
		c.currentPeriod = n - c.Compensation
	}
	c.triggered = true

	core.RecordTiming(core.EvtTrigger, c.id, core.Micros(), c.currentPeriod, 0)
	return c.report(err, n)
}

func (c *Channel) report(err error, n uint32) error {
	if err == core.ErrPeriodOverflow {
		core.RecordTiming(core.EvtOverflow, c.id, core.Micros(), n, 0)
	}
	return core.PostError(err)
}

// late reports whether an armed channel already counted past n
func (c *Channel) late(n uint32) bool {
	if !c.triggered || n == 0 {
		return false
	}
	elapsed := c.counter.Now() - c.startCount
	if elapsed < n {
		return false
	}
	core.RecordTiming(core.EvtLate, c.id, core.Micros(), elapsed, n)
	return true
}

// SetCurrentPeriod changes the period of the cycle in progress. If it
// already elapsed the next Tick fires and ErrTriggeredLate is returned.
func (c *Channel) SetCurrentPeriod(us uint32) error {
	n, err := c.units.fromMicros(us)
	c.currentPeriod = n
	if c.late(n) {
		c.report(err, n)
		return core.PostError(core.ErrTriggeredLate)
	}
	return c.report(err, n)
}

// SetNextPeriod changes the period adopted at the next fire
func (c *Channel) SetNextPeriod(us uint32) error {
	n, err := c.units.fromMicros(us)
	c.nextPeriod = n
	return c.report(err, n)
}

// SetPeriod changes the current and next period together
func (c *Channel) SetPeriod(us uint32) error {
	n, err := c.units.fromMicros(us)
	c.nextPeriod = n
	c.currentPeriod = n
	if c.late(n) {
		c.report(err, n)
		return core.PostError(core.ErrTriggeredLate)
	}
	return c.report(err, n)
}

func (c *Channel) CurrentPeriod() uint32 {
	return c.units.toMicros(c.currentPeriod)
}

func (c *Channel) NextPeriod() uint32 {
	return c.units.toMicros(c.nextPeriod)
}

func (c *Channel) MaxPeriod() (float32, error) {
	max, err := c.units.maxPeriod()
	return max, core.PostError(err)
}

// Start arms the channel and counts its period from now
func (c *Channel) Start() {
	c.startCount = c.counter.Now()
	c.triggered = true
}

func (c *Channel) Stop() error {
	c.triggered = false
	core.RecordTiming(core.EvtStop, c.id, core.Micros(), 0, 0)
	return nil
}

// Close disarms the channel and clears the callback slot
func (c *Channel) Close() {
	c.triggered = false
	c.SetCallback(nil)
	core.RecordTiming(core.EvtStop, c.id, core.Micros(), 0, 0)
}
