package core

import "testing"

func TestSetConfigDefaults(t *testing.T) {
	defer SetConfig(DefaultConfig())

	SetConfig(Config{TMRPrescaler: 0x0A})
	cfg := GetConfig()

	if cfg.BusClockHz != DefaultBusClockHz {
		t.Errorf("Expected default bus clock, got %d", cfg.BusClockHz)
	}
	if cfg.CPUFrequencyHz != DefaultCPUFrequencyHz {
		t.Errorf("Expected default CPU clock, got %d", cfg.CPUFrequencyHz)
	}
	if cfg.TMRPrescaler != 2 {
		t.Errorf("Expected prescaler masked to 2, got %d", cfg.TMRPrescaler)
	}
	if cfg.CycleCompensation != 0 {
		t.Errorf("Expected zero compensation kept, got %d", cfg.CycleCompensation)
	}
}

func TestGPTClockHz(t *testing.T) {
	cfg := DefaultConfig()
	if hz := cfg.GPTClockHz(); hz != DefaultBusClockHz {
		t.Errorf("Bus clock: expected %d, got %d", DefaultBusClockHz, hz)
	}
	cfg.GPTClock = GPTClockOsc
	if hz := cfg.GPTClockHz(); hz != OscClockHz {
		t.Errorf("Oscillator: expected %d, got %d", OscClockHz, hz)
	}
}
