//go:build teensy41

package main

import (
	"machine"
	"time"

	"timertool/core"
	"timertool/gpt"
	"timertool/protocol"
	"timertool/tck"
	"timertool/tmr"
)

const (
	traceBaud     = 115200
	traceInterval = 20 * time.Millisecond
	textDebug     = false // debug lines share the trace link; the host skips them
)

var (
	// Callback slots live in static storage so interrupt handlers never
	// see a dangling reference
	tmrSlots [4]core.Callback
	gptSlot  core.Callback
	tckSlots [2]core.Callback

	tmrChannels [4]*tmr.Channel
	gptChannel  *gpt.Channel

	blinkTicks uint32
	gptTicks   uint32
	errorCount uint32
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: traceBaud})
	if textDebug {
		core.SetDebugWriter(func(s string) {
			machine.Serial.Write([]byte(s + "\r\n"))
		})
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}
	core.SetErrorHandler(func(err error) {
		errorCount++
		if textDebug && !core.IsWarning(err) {
			core.DumpTimingRing()
		}
	})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	core.SetConfig(core.DefaultConfig())
	core.CycleCounterInit()
	enableClocks()
	initGPT(gpt1(), core.GetConfig().GPTClock == core.GPTClockOsc)

	for i := range tmrChannels {
		tmrChannels[i] = tmr.New(uint8(i), tmr1Channel(uintptr(i)), &tmrSlots[i])
	}
	gptChannel = gpt.New(4, gpt1(), &gptSlot)
	enableInterrupts()

	// TMR1 ch0: 20 Hz tick, LED toggles every fifth
	blink := tmrChannels[0]
	ledOn := false
	blink.Begin(func() {
		blinkTicks++
		if blinkTicks%5 != 0 {
			return
		}
		ledOn = !ledOn
		led.Set(ledOn)
	}, 50000, core.Periodic)

	// TMR1 ch1: one-shot rearmed from its own callback with a fractional
	// period
	pulse := tmrChannels[1]
	pulse.BeginFloat(func() {
		pulse.TriggerFloat(10000.5)
	}, 10000.5, core.OneShot)

	// GPT1: 100 Hz tick
	gptChannel.Begin(func() { gptTicks++ }, 10000, core.Periodic)

	// Polled channels
	slow := tck.NewMicros(5, nil, &tckSlots[0])
	slow.Begin(func() {}, 100000, core.Periodic)
	fast := tck.NewCycles(6, nil, 0, &tckSlots[1])
	fast.Begin(func() {}, 20000, core.Periodic)

	writer := protocol.NewTraceWriter(machine.Serial)
	events := make([]core.TimingEvent, core.TimingRingSize)
	lastFlush := core.Micros()

	for {
		slow.Tick()
		fast.Tick()

		now := core.Micros()
		if now-lastFlush < uint32(traceInterval/time.Microsecond) {
			continue
		}
		lastFlush = now

		n, dropped := core.DrainTimingEvents(events)
		writer.ReportDropped(dropped)
		if err := writer.WriteEvents(events[:n]); err != nil {
			core.PostError(err)
		}
	}
}
