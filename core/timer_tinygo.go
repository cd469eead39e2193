//go:build tinygo && cortexm

package core

import (
	"runtime/volatile"
	"unsafe"
)

// Cortex-M debug registers used for the cycle counter
const (
	demcrAddr     = 0xE000EDFC
	dwtCtrlAddr   = 0xE0001000
	dwtCyccntAddr = 0xE0001004

	demcrTRCENA      = 1 << 24
	dwtCtrlCYCCNTENA = 1 << 0
)

var (
	demcr     = (*volatile.Register32)(unsafe.Pointer(uintptr(demcrAddr)))
	dwtCtrl   = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCtrlAddr)))
	dwtCyccnt = (*volatile.Register32)(unsafe.Pointer(uintptr(dwtCyccntAddr)))
)

// CycleCounterInit enables the DWT cycle counter
func CycleCounterInit() {
	demcr.SetBits(demcrTRCENA)
	dwtCtrl.SetBits(dwtCtrlCYCCNTENA)
}

// Cycles reads the DWT cycle counter
func Cycles() uint32 {
	return dwtCyccnt.Get()
}
