package gpt

import (
	"math"

	"timertool/core"
)

// Channel fires on each OCR1 compare of a GPT. It has no compare preload,
// so it does not offer current/next period changes; those calls return
// core.ErrNotImplemented. One-shot mode is emulated by disabling the timer
// in the interrupt handler.
type Channel struct {
	core.Base

	id       uint8
	regs     *Registers
	clockHz  uint32
	periodic bool
	armed    bool // OCR1 holds a period
}

var _ core.Channel = (*Channel)(nil)

// New binds a channel to a GPT module and callback storage
func New(id uint8, regs *Registers, slot *core.Callback) *Channel {
	return &Channel{
		Base:     core.NewBase(slot),
		id:       id,
		regs:     regs,
		clockHz:  core.GetConfig().GPTClockHz(),
	}
}

// Begin stores cb and arms the timer. The GPT only takes whole
// microseconds; BeginFloat reports core.ErrWrongType.
func (c *Channel) Begin(cb core.Callback, period uint32, mode core.Mode) error {
	c.regs.CR.ClearBits(crEN)
	c.periodic = mode == core.Periodic
	c.SetCallback(cb)

	if period == 0 {
		c.armed = false
		return nil
	}
	reload, err := c.arm(period)
	core.RecordTiming(core.EvtBegin, c.id, core.Micros(), reload, uint32(mode))
	return c.report(err, reload)
}

// Trigger reprograms the compare and restarts the counter
func (c *Channel) Trigger(delay uint32) error {
	if delay == 0 {
		c.regs.CR.ClearBits(crEN)
		c.armed = false
		return nil
	}
	reload, err := c.arm(delay)
	core.RecordTiming(core.EvtTrigger, c.id, core.Micros(), reload, 0)
	return c.report(err, reload)
}

// ticksFor converts microseconds to counter ticks, rounded to nearest and
// at least one tick
func (c *Channel) ticksFor(us uint32) uint64 {
	ticks := (uint64(us)*uint64(c.clockHz) + 500000) / 1000000
	if ticks == 0 {
		ticks = 1
	}
	return ticks
}

// arm programs OCR1 for period microseconds and enables the timer. It
// returns the period in ticks actually used.
func (c *Channel) arm(us uint32) (uint32, error) {
	var err error
	ticks := c.ticksFor(us)
	if ticks > maxCount {
		ticks = maxCount
		err = core.ErrPeriodOverflow
	}

	r := c.regs
	state := core.DisableInterrupts()
	r.CR.ClearBits(crEN)
	core.ClearFlags32(&r.SR, srAll)
	r.IR.Set(irOF1IE)
	r.OCR1.Set(uint32(ticks - 1))
	r.CR.SetBits(crENMOD | crEN)
	core.RestoreInterrupts(state)

	c.armed = true
	return uint32(ticks), err
}

func (c *Channel) report(err error, ticks uint32) error {
	if err == core.ErrPeriodOverflow {
		core.RecordTiming(core.EvtOverflow, c.id, core.Micros(), ticks, 0)
	}
	return core.PostError(err)
}

func (c *Channel) MaxPeriod() (float32, error) {
	return float32(float64(maxCount) * 1e6 / float64(c.clockHz)), nil
}

// CurrentPeriod returns the programmed period. Without a preload register
// it is also the next period.
func (c *Channel) CurrentPeriod() uint32 {
	if !c.armed || c.clockHz == 0 {
		return 0
	}
	ticks := uint64(c.regs.OCR1.Get()) + 1
	hz := uint64(c.clockHz)
	us := (ticks*1000000 + hz/2) / hz
	if us > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(us)
}

func (c *Channel) NextPeriod() uint32 {
	return c.CurrentPeriod()
}

// Start restarts the counter with the programmed period
func (c *Channel) Start() {
	if !c.armed {
		return
	}
	r := c.regs
	state := core.DisableInterrupts()
	r.CR.ClearBits(crEN)
	core.ClearFlags32(&r.SR, srAll)
	r.IR.Set(irOF1IE)
	r.CR.SetBits(crENMOD | crEN)
	core.RestoreInterrupts(state)
}

func (c *Channel) Stop() error {
	c.regs.CR.ClearBits(crEN)
	core.RecordTiming(core.EvtStop, c.id, core.Micros(), 0, 0)
	return nil
}

// Close disables the timer and its interrupt and clears the callback slot
func (c *Channel) Close() {
	state := core.DisableInterrupts()
	c.regs.CR.ClearBits(crEN)
	c.regs.IR.Set(0)
	c.SetCallback(nil)
	core.RestoreInterrupts(state)

	c.armed = false
	core.RecordTiming(core.EvtStop, c.id, core.Micros(), 0, 0)
}

// ISR services the GPT interrupt vector
func (c *Channel) ISR() {
	r := c.regs
	if !r.SR.HasBits(srOF1) {
		return
	}
	core.ClearFlags32(&r.SR, srAll)

	if !c.periodic {
		r.CR.ClearBits(crEN)
	}
	core.RecordTiming(core.EvtFire, c.id, core.Micros(), r.OCR1.Get()+1, 0)
	c.Fire()
}
