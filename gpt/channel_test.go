package gpt

import (
	"errors"
	"math"
	"testing"

	"timertool/core"
)

// sim counts a GPT in restart mode, one tick per call
type sim struct {
	regs  Registers
	ch    *Channel
	slot  core.Callback
	fired int
}

func newSim(t *testing.T) *sim {
	return newSimWith(t, core.Config{GPTClock: core.GPTClockOsc}) // 24 ticks per microsecond
}

func newSimWith(t *testing.T, cfg core.Config) *sim {
	core.SetConfig(cfg)
	t.Cleanup(func() { core.SetConfig(core.DefaultConfig()) })

	s := &sim{}
	s.ch = New(2, &s.regs, &s.slot)
	return s
}

func (s *sim) callback() {
	s.fired++
}

func (s *sim) tick() {
	r := &s.regs
	if !r.CR.HasBits(crEN) {
		return
	}
	if r.CNT.Get() != r.OCR1.Get() {
		r.CNT.Set(r.CNT.Get() + 1)
		return
	}
	r.CNT.Set(0)
	r.SR.SetBits(srOF1)
	if r.IR.HasBits(irOF1IE) {
		s.ch.ISR()
	}
}

func (s *sim) advance(ticks int) {
	for i := 0; i < ticks; i++ {
		s.tick()
	}
}

// restart models the counter reset ENMOD performs when EN is set again
func (s *sim) restart() {
	s.regs.CNT.Set(0)
}

func TestBeginProgramsRegisters(t *testing.T) {
	s := newSim(t)
	s.regs.SR.Set(srAll)

	if err := s.ch.Begin(s.callback, 10, core.Periodic); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	r := &s.regs
	if r.OCR1.Get() != 239 {
		t.Errorf("Expected OCR1=239, got %d", r.OCR1.Get())
	}
	if r.IR.Get() != irOF1IE {
		t.Errorf("Expected IR=OF1IE, got 0x%X", r.IR.Get())
	}
	if !r.CR.HasBits(crEN) || !r.CR.HasBits(crENMOD) {
		t.Errorf("Expected timer enabled with ENMOD, CR=0x%X", r.CR.Get())
	}
	if r.SR.Get() != 0 {
		t.Errorf("Expected status flags cleared, SR=0x%X", r.SR.Get())
	}
	if s.ch.CurrentPeriod() != 10 || s.ch.NextPeriod() != 10 {
		t.Errorf("Expected 10us periods, got %d/%d", s.ch.CurrentPeriod(), s.ch.NextPeriod())
	}
}

func TestPeriodicFires(t *testing.T) {
	s := newSim(t)
	s.ch.Begin(s.callback, 10, core.Periodic)

	s.advance(239)
	if s.fired != 0 {
		t.Fatalf("Fired early")
	}
	s.advance(1)
	if s.fired != 1 {
		t.Fatalf("Expected fire at 240 ticks, got %d", s.fired)
	}
	s.advance(480)
	if s.fired != 3 {
		t.Errorf("Expected 3 fires after 720 ticks, got %d", s.fired)
	}
}

func TestOneShotDisablesInISR(t *testing.T) {
	s := newSim(t)
	s.ch.Begin(s.callback, 10, core.OneShot)

	s.advance(10000)
	if s.fired != 1 {
		t.Fatalf("Expected one fire, got %d", s.fired)
	}
	if s.regs.CR.HasBits(crEN) {
		t.Error("One-shot channel left the timer enabled")
	}

	if err := s.ch.Trigger(5); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	s.advance(119)
	if s.fired != 1 {
		t.Fatalf("Trigger fired early")
	}
	s.advance(10000)
	if s.fired != 2 {
		t.Errorf("Expected a single fire after Trigger, got %d total", s.fired)
	}
}

func TestFloatFormsRejected(t *testing.T) {
	s := newSim(t)
	s.ch.Begin(s.callback, 10, core.Periodic)
	before := s.regs

	if err := s.ch.BeginFloat(nil, 2.5, core.OneShot); !errors.Is(err, core.ErrWrongType) {
		t.Errorf("BeginFloat: expected ErrWrongType, got %v", err)
	}
	if err := s.ch.TriggerFloat(2.5); !errors.Is(err, core.ErrWrongType) {
		t.Errorf("TriggerFloat: expected ErrWrongType, got %v", err)
	}
	if s.regs != before {
		t.Error("Rejected call modified registers")
	}
	if s.slot == nil {
		t.Error("Rejected BeginFloat replaced the callback")
	}
}

func TestUnsupportedCallsLeaveStateUnchanged(t *testing.T) {
	s := newSim(t)
	s.ch.Begin(s.callback, 10, core.Periodic)
	s.advance(100)
	before := s.regs

	calls := map[string]func(uint32) error{
		"SetPeriod":        s.ch.SetPeriod,
		"SetCurrentPeriod": s.ch.SetCurrentPeriod,
		"SetNextPeriod":    s.ch.SetNextPeriod,
	}
	for name, call := range calls {
		if err := call(3); !errors.Is(err, core.ErrNotImplemented) {
			t.Errorf("%s: expected ErrNotImplemented, got %v", name, err)
		}
	}
	if s.regs != before {
		t.Error("Unsupported call modified registers")
	}
	if s.ch.CurrentPeriod() != 10 {
		t.Errorf("Expected period to stay 10us, got %d", s.ch.CurrentPeriod())
	}

	s.advance(140)
	if s.fired != 1 {
		t.Errorf("Expected channel to keep firing, got %d", s.fired)
	}
}

func TestOverflowClamps(t *testing.T) {
	s := newSim(t)

	err := s.ch.Begin(s.callback, 200000000, core.Periodic)
	if !errors.Is(err, core.ErrPeriodOverflow) {
		t.Fatalf("Expected ErrPeriodOverflow, got %v", err)
	}
	if s.regs.OCR1.Get() != maxCount-1 {
		t.Errorf("Expected OCR1 clamped to 0x%X, got 0x%X", uint32(maxCount-1), s.regs.OCR1.Get())
	}
	if !s.regs.CR.HasBits(crEN) {
		t.Error("Channel should be armed with the clamped period")
	}
	want := uint32((uint64(maxCount) + 12) / 24)
	if s.ch.CurrentPeriod() != want {
		t.Errorf("Expected clamped period %d, got %d", want, s.ch.CurrentPeriod())
	}

	max, err := s.ch.MaxPeriod()
	if err != nil {
		t.Fatalf("MaxPeriod failed: %v", err)
	}
	if max < 178956960 || max > 178956980 {
		t.Errorf("Expected ~178956970us, got %f", max)
	}
}

func TestStopAndStart(t *testing.T) {
	s := newSim(t)
	s.ch.Begin(s.callback, 10, core.Periodic)
	s.advance(100)

	if err := s.ch.Stop(); err != nil {
		t.Fatalf("Stop returned %v", err)
	}
	s.advance(100000)
	if s.fired != 0 {
		t.Fatalf("Stopped channel fired %d times", s.fired)
	}

	s.ch.Start()
	s.restart()
	s.advance(240)
	if s.fired != 1 {
		t.Errorf("Expected fire one period after Start, got %d", s.fired)
	}
}

func TestZeroPeriod(t *testing.T) {
	s := newSim(t)

	if err := s.ch.Begin(s.callback, 0, core.Periodic); err != nil {
		t.Fatalf("Begin(0) returned %v", err)
	}
	s.ch.Start()
	s.advance(10000)
	if s.fired != 0 {
		t.Errorf("Zero period fired %d times", s.fired)
	}
	if s.ch.CurrentPeriod() != 0 {
		t.Errorf("Expected CurrentPeriod 0, got %d", s.ch.CurrentPeriod())
	}
}

func TestClose(t *testing.T) {
	s := newSim(t)
	s.ch.Begin(s.callback, 10, core.Periodic)

	s.ch.Close()
	if s.slot != nil {
		t.Error("Close must clear the callback slot")
	}
	if s.regs.CR.HasBits(crEN) || s.regs.IR.Get() != 0 {
		t.Error("Close must disable the timer and its interrupt")
	}
	s.advance(1000)
	if s.fired != 0 {
		t.Error("Closed channel fired")
	}
}

func TestPeriodRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		cfg     core.Config
		periods []uint32
	}{
		{"bus", core.Config{GPTClock: core.GPTClockBus}, []uint32{1, 7, 10, 100, 1000, 65536, 1000000, 28633115}},
		{"osc", core.Config{GPTClock: core.GPTClockOsc}, []uint32{1, 7, 10, 100, 1000, 65536, 1000000, 178956970}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSimWith(t, tt.cfg)
			for _, us := range tt.periods {
				if err := s.ch.Begin(s.callback, us, core.Periodic); err != nil {
					t.Errorf("Begin(%d) failed: %v", us, err)
					continue
				}
				if got := s.ch.CurrentPeriod(); got != us {
					t.Errorf("Begin(%d): CurrentPeriod %d", us, got)
				}
				if got := s.ch.NextPeriod(); got != us {
					t.Errorf("Begin(%d): NextPeriod %d", us, got)
				}
			}
		})
	}
}

func TestSubMegahertzClock(t *testing.T) {
	s := newSimWith(t, core.Config{BusClockHz: 500000})

	if err := s.ch.Begin(s.callback, 10, core.Periodic); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if s.regs.OCR1.Get() != 4 {
		t.Errorf("Expected OCR1=4 for 5 ticks, got %d", s.regs.OCR1.Get())
	}
	if s.ch.CurrentPeriod() != 10 {
		t.Errorf("Expected 10us, got %d", s.ch.CurrentPeriod())
	}
	s.advance(5)
	if s.fired != 1 {
		t.Errorf("Expected fire after 5 ticks, got %d", s.fired)
	}

	// shorter than one tick still arms a single tick
	if err := s.ch.Trigger(1); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if s.regs.OCR1.Get() != 0 {
		t.Errorf("Expected OCR1=0, got %d", s.regs.OCR1.Get())
	}
	if s.ch.CurrentPeriod() != 2 {
		t.Errorf("Expected one tick to read back as 2us, got %d", s.ch.CurrentPeriod())
	}

	if err := s.ch.Trigger(math.MaxUint32); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if s.ch.CurrentPeriod() != math.MaxUint32 {
		t.Errorf("Expected read back saturated at MaxUint32, got %d", s.ch.CurrentPeriod())
	}

	max, err := s.ch.MaxPeriod()
	if err != nil {
		t.Fatalf("MaxPeriod failed: %v", err)
	}
	if max < 8.58e9 || max > 8.60e9 {
		t.Errorf("Expected ~8.59e9us, got %f", max)
	}
}
