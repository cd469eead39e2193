// Package tmr implements timer channels on the i.MX RT QuadTimer (TMR).
//
// Each QuadTimer module has four 16-bit channels. A channel counts up from
// LOAD, matches against COMP1, reloads COMP1 from CMPLD1 on the match and
// raises TCF1. The board layer hands a *Registers for one channel to New and
// routes the module interrupt to (*Channel).ISR.
package tmr

import "timertool/core"

// Registers overlays one QuadTimer channel (stride 0x20 within a module)
type Registers struct {
	COMP1  core.Register16 // 0x00 compare 1
	COMP2  core.Register16 // 0x02
	CAPT   core.Register16 // 0x04
	LOAD   core.Register16 // 0x06 counter reload value
	HOLD   core.Register16 // 0x08
	CNTR   core.Register16 // 0x0A counter
	CTRL   core.Register16 // 0x0C control
	SCTRL  core.Register16 // 0x0E
	CMPLD1 core.Register16 // 0x10 compare 1 preload
	CMPLD2 core.Register16 // 0x12
	CSCTRL core.Register16 // 0x14 comparator status/control
	FILT   core.Register16 // 0x16
	DMA    core.Register16 // 0x18
	_      [2]core.Register16
	ENBL   core.Register16 // 0x1E module enable (channel 0 only)
}

// CTRL fields
const (
	ctrlCMShift  = 13
	ctrlCMMask   = 0x7 << ctrlCMShift
	ctrlPCSShift = 9
	ctrlONCE     = 1 << 6 // stop counting after the compare
	ctrlLENGTH   = 1 << 5 // reinitialize from LOAD on compare
)

// CSCTRL fields
const (
	csctrlCL1Mask = 0x3
	csctrlCL1     = 0x1    // load COMP1 from CMPLD1 on successful compare
	csctrlTCF1    = 1 << 4 // compare 1 flag
	csctrlTCF1EN  = 1 << 6 // compare 1 interrupt enable
)

// Counter width
const (
	maxCount  = 0xFFFF
	maxReload = maxCount - 1
)

func ctrlCM(mode uint16) uint16 {
	return (mode & 0x7) << ctrlCMShift
}

func ctrlPCS(src uint16) uint16 {
	return (src & 0xF) << ctrlPCSShift
}
