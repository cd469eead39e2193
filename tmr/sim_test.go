package tmr

import "timertool/core"

// sim counts a QuadTimer channel one prescaled tick at a time and raises
// the compare interrupt the way the hardware does in count-up mode
type sim struct {
	regs  Registers
	ch    *Channel
	slot  core.Callback
	fired int
}

func newSim(psc uint8) *sim {
	s := &sim{}
	s.ch = New(1, &s.regs, &s.slot)
	s.ch.SetPrescaler(psc)
	return s
}

func (s *sim) callback() {
	s.fired++
}

func (s *sim) tick() {
	r := &s.regs
	ctrl := r.CTRL.Get()
	if ctrl&ctrlCMMask == 0 {
		return
	}
	if r.CNTR.Get() != r.COMP1.Get() {
		r.CNTR.Set(r.CNTR.Get() + 1)
		return
	}

	r.CSCTRL.SetBits(csctrlTCF1)
	if r.CSCTRL.Get()&csctrlCL1Mask == csctrlCL1 {
		r.COMP1.Set(r.CMPLD1.Get())
	}
	if ctrl&ctrlLENGTH != 0 {
		r.CNTR.Set(r.LOAD.Get())
	}
	if ctrl&ctrlONCE != 0 {
		r.CTRL.ClearBits(ctrlCMMask)
	}
	if r.CSCTRL.HasBits(csctrlTCF1EN) {
		s.ch.ISR()
	}
}

func (s *sim) advance(ticks int) {
	for i := 0; i < ticks; i++ {
		s.tick()
	}
}
