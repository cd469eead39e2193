package tmr

import "timertool/core"

// Channel is a compare-and-interrupt timer channel on one QuadTimer channel
type Channel struct {
	core.Base

	id       uint8
	regs     *Registers
	clockMHz float32
	pscValue float32
	pscBits  uint16

	periodic bool
	disabled bool // zero period or never configured: must not count
	stopNext bool // buffered period is zero: disarm at the next match
}

var _ core.Channel = (*Channel)(nil)

// New binds a channel to its registers and callback storage. The prescaler
// starts at the configured default.
func New(id uint8, regs *Registers, slot *core.Callback) *Channel {
	cfg := core.GetConfig()
	c := &Channel{
		Base:     core.NewBase(slot),
		id:       id,
		regs:     regs,
		clockMHz: float32(cfg.BusClockHz) / 1e6,
		disabled: true,
	}
	c.SetPrescaler(cfg.TMRPrescaler)
	return c
}

// SetPrescaler selects the clock divider, psc 0..7 -> 1..128. It applies to
// the next Begin or Trigger; a running channel keeps counting with the
// divider it was armed with.
func (c *Channel) SetPrescaler(psc uint8) {
	psc &= 0x07
	c.pscValue = float32(uint32(1) << psc)
	c.pscBits = 0x08 | uint16(psc) // IP bus clock / 2^psc
}

// MicrosecondToCounter converts microseconds to counter ticks
func (c *Channel) MicrosecondToCounter(us float32) float32 {
	return us * c.clockMHz / c.pscValue
}

// CounterToMicrosecond converts counter ticks to microseconds
func (c *Channel) CounterToMicrosecond(cnt float32) float32 {
	return cnt * c.pscValue / c.clockMHz
}

// reloadFor converts a period to a compare value. The match cycle itself
// takes one tick, so a period of n ticks compares at n-1.
func (c *Channel) reloadFor(us float32) (uint16, error) {
	t := c.MicrosecondToCounter(us)
	if t > maxCount {
		return maxReload, core.ErrPeriodOverflow
	}
	n := uint32(t + 0.5)
	if n == 0 {
		n = 1
	}
	return uint16(n - 1), nil
}

func (c *Channel) ctrl() uint16 {
	ctrl := ctrlCM(1) | ctrlPCS(c.pscBits) | ctrlLENGTH
	if !c.periodic {
		ctrl |= ctrlONCE
	}
	return ctrl
}

// arm loads both compare registers and restarts the counter from zero
func (c *Channel) arm(reload uint16) {
	r := c.regs
	state := core.DisableInterrupts()
	r.CTRL.Set(0)
	r.LOAD.Set(0)
	r.COMP1.Set(reload)
	r.CMPLD1.Set(reload)
	r.CNTR.Set(0)
	r.CSCTRL.ClearBits(csctrlTCF1)
	r.CSCTRL.ReplaceBits(csctrlCL1, csctrlCL1Mask, 0)
	r.CSCTRL.SetBits(csctrlTCF1EN)
	r.CTRL.Set(c.ctrl())
	core.RestoreInterrupts(state)

	c.disabled = false
	c.stopNext = false
}

func (c *Channel) disarm() {
	c.regs.CTRL.ClearBits(ctrlCMMask)
}

func (c *Channel) running() bool {
	return c.regs.CTRL.Get()&ctrlCMMask != 0
}

// report traces a clamped period and posts err
func (c *Channel) report(err error, reload uint16) error {
	if err == core.ErrPeriodOverflow {
		core.RecordTiming(core.EvtOverflow, c.id, core.Micros(), uint32(reload)+1, 0)
	}
	return core.PostError(err)
}

func (c *Channel) Begin(cb core.Callback, period uint32, mode core.Mode) error {
	return c.BeginFloat(cb, float32(period), mode)
}

// BeginFloat arms the channel with a fractional period. A period that does
// not fit the 16-bit counter arms with the longest one and reports
// ErrPeriodOverflow.
func (c *Channel) BeginFloat(cb core.Callback, period float32, mode core.Mode) error {
	c.disarm()
	c.periodic = mode == core.Periodic
	c.SetCallback(cb)

	if !(period > 0) {
		c.disabled = true
		return nil
	}

	reload, err := c.reloadFor(period)
	c.arm(reload)
	core.RecordTiming(core.EvtBegin, c.id, core.Micros(), uint32(reload)+1, uint32(mode))
	return c.report(err, reload)
}

func (c *Channel) Trigger(delay uint32) error {
	return c.TriggerFloat(float32(delay))
}

// TriggerFloat restarts the channel to fire after delay. The callback and
// mode set by Begin are kept.
func (c *Channel) TriggerFloat(delay float32) error {
	if !(delay > 0) {
		c.disarm()
		c.disabled = true
		return nil
	}

	reload, err := c.reloadFor(delay)
	c.arm(reload)
	core.RecordTiming(core.EvtTrigger, c.id, core.Micros(), uint32(reload)+1, 0)
	return c.report(err, reload)
}

func (c *Channel) MaxPeriod() (float32, error) {
	return c.CounterToMicrosecond(maxCount), nil
}

func (c *Channel) CurrentPeriod() uint32 {
	if c.disabled {
		return 0
	}
	return c.toMicros(c.regs.COMP1.Get())
}

func (c *Channel) NextPeriod() uint32 {
	if c.disabled || c.stopNext {
		return 0
	}
	return c.toMicros(c.regs.CMPLD1.Get())
}

func (c *Channel) toMicros(reload uint16) uint32 {
	return uint32(c.CounterToMicrosecond(float32(reload)+1) + 0.5)
}

// setCurrent writes the live compare value. If the counter is already past
// it, the counter is moved onto the compare so the match happens on the
// next tick instead of after a full 16-bit wrap.
func (c *Channel) setCurrent(reload uint16) bool {
	r := c.regs
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	r.COMP1.Set(reload)
	if !c.running() {
		return false
	}
	cnt := r.CNTR.Get()
	if cnt <= reload {
		return false
	}
	r.CNTR.Set(reload)
	core.RecordTiming(core.EvtLate, c.id, core.Micros(), uint32(cnt), uint32(reload)+1)
	return true
}

// SetCurrentPeriod changes the period of the cycle in progress. Zero stops
// the channel. A disabled channel only gets its compare register written
// and stays disabled until Begin or Trigger.
func (c *Channel) SetCurrentPeriod(us uint32) error {
	if us == 0 {
		c.disarm()
		c.disabled = true
		return nil
	}

	reload, err := c.reloadFor(float32(us))
	if c.setCurrent(reload) {
		c.report(err, reload)
		return core.PostError(core.ErrTriggeredLate)
	}
	return c.report(err, reload)
}

// SetNextPeriod changes the preload register, which the hardware copies
// into the compare on the next match. Zero disarms the channel at that
// match instead.
func (c *Channel) SetNextPeriod(us uint32) error {
	if us == 0 {
		c.stopNext = true
		return nil
	}

	reload, err := c.reloadFor(float32(us))
	c.regs.CMPLD1.Set(reload)
	c.stopNext = false
	return c.report(err, reload)
}

// SetPeriod changes the running and the buffered period together. Like
// SetCurrentPeriod it does not enable a disabled channel.
func (c *Channel) SetPeriod(us uint32) error {
	if us == 0 {
		c.disarm()
		c.disabled = true
		return nil
	}

	reload, err := c.reloadFor(float32(us))
	c.regs.CMPLD1.Set(reload)
	c.stopNext = false
	if c.setCurrent(reload) {
		c.report(err, reload)
		return core.PostError(core.ErrTriggeredLate)
	}
	return c.report(err, reload)
}

// Start restarts counting from zero with the programmed compare values
func (c *Channel) Start() {
	if c.disabled {
		return
	}
	r := c.regs
	state := core.DisableInterrupts()
	r.CTRL.Set(0)
	r.CNTR.Set(0)
	r.CSCTRL.ClearBits(csctrlTCF1)
	r.CSCTRL.SetBits(csctrlTCF1EN)
	r.CTRL.Set(c.ctrl())
	core.RestoreInterrupts(state)
}

func (c *Channel) Stop() error {
	c.disarm()
	core.RecordTiming(core.EvtStop, c.id, core.Micros(), 0, 0)
	return nil
}

// Close stops the counter, disables the compare interrupt and clears the
// callback slot, so no interrupt can reach a stale callback.
func (c *Channel) Close() {
	r := c.regs
	state := core.DisableInterrupts()
	r.CTRL.Set(0)
	r.CSCTRL.ClearBits(csctrlTCF1EN | csctrlTCF1)
	c.SetCallback(nil)
	core.RestoreInterrupts(state)

	c.disabled = true
	core.RecordTiming(core.EvtStop, c.id, core.Micros(), 0, 0)
}

// ISR services a compare match. The QuadTimer modules share one vector for
// their four channels, so the board layer calls ISR on each of them and
// channels without a pending flag return immediately.
func (c *Channel) ISR() {
	r := c.regs
	if !r.CSCTRL.HasBits(csctrlTCF1EN) || !r.CSCTRL.HasBits(csctrlTCF1) {
		return
	}
	r.CSCTRL.ClearBits(csctrlTCF1)

	if c.stopNext {
		c.disarm()
		c.disabled = true
		c.stopNext = false
	}
	core.RecordTiming(core.EvtFire, c.id, core.Micros(), uint32(r.COMP1.Get())+1, 0)
	c.Fire()
}
