//go:build teensy41

package main

import (
	"device/nxp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"timertool/gpt"
	"timertool/tmr"
)

// i.MX RT1062 peripheral memory map
const (
	tmr1Base    = 0x401DC000
	tmrStride   = 0x20 // per channel within a module
	gpt1Base    = 0x401EC000
	gpt2Base    = 0x401F0000
	ccmCCGR1    = 0x400FC06C
	ccmCCGR6    = 0x400FC080
	ccmCSCMR1   = 0x400FC01C
	gptCRCLKSRC = 6 // CR clock source field position
)

// Clock gate fields, two bits each, 0b11 = on in run and wait
const (
	ccgr1GPT1Bus    = 0x3 << 20
	ccgr1GPT1Serial = 0x3 << 22
	ccgr6QTimer1    = 0x3 << 26
)

// GPT clock sources
const (
	gptClkPeripheral = 1
	gptClkOsc24M     = 5 // crystal, selected with EN_24M
	gptCREN24M       = 1 << 10
)

var (
	regCCGR1 = (*volatile.Register32)(unsafe.Pointer(uintptr(ccmCCGR1)))
	regCCGR6 = (*volatile.Register32)(unsafe.Pointer(uintptr(ccmCCGR6)))
)

// tmr1Channel returns the register block of QuadTimer 1 channel n
func tmr1Channel(n uintptr) *tmr.Registers {
	return (*tmr.Registers)(unsafe.Pointer(uintptr(tmr1Base + n*tmrStride)))
}

func gpt1() *gpt.Registers {
	return (*gpt.Registers)(unsafe.Pointer(uintptr(gpt1Base)))
}

// enableClocks ungates the timer modules used here
func enableClocks() {
	regCCGR1.SetBits(ccgr1GPT1Bus | ccgr1GPT1Serial)
	regCCGR6.SetBits(ccgr6QTimer1)
}

// initGPT selects the GPT clock and leaves the timer in restart mode with
// no prescaling. The channel owns EN and the compare registers.
func initGPT(r *gpt.Registers, useOsc bool) {
	r.CR.Set(0)
	r.PR.Set(0)
	if useOsc {
		r.CR.Set(gptClkOsc24M<<gptCRCLKSRC | gptCREN24M)
		return
	}
	r.CR.Set(gptClkPeripheral << gptCRCLKSRC)
}

// QuadTimer 1 shares one interrupt between its four channels; each channel
// ISR checks its own flag.
func enableInterrupts() {
	tmrIRQ := interrupt.New(nxp.IRQ_TMR1, func(interrupt.Interrupt) {
		for _, ch := range tmrChannels {
			if ch != nil {
				ch.ISR()
			}
		}
	})
	tmrIRQ.SetPriority(0x40)
	tmrIRQ.Enable()

	gptIRQ := interrupt.New(nxp.IRQ_GPT1, func(interrupt.Interrupt) {
		gptChannel.ISR()
	})
	gptIRQ.SetPriority(0x40)
	gptIRQ.Enable()
}
