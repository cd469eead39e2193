package core

// GPTClock selects the clock feeding the general purpose timers
type GPTClock uint8

const (
	GPTClockBus GPTClock = iota // peripheral clock derived from the IPG bus
	GPTClockOsc                 // 24 MHz crystal oscillator
)

// Clock defaults for a 600 MHz i.MX RT1062
const (
	DefaultBusClockHz        = 150000000
	DefaultCPUFrequencyHz    = 600000000
	DefaultTMRPrescaler      = 7 // divide by 128
	DefaultCycleCompensation = 68
	OscClockHz               = 24000000
)

// Config holds the clock-tree values the channels convert periods with.
// Channels read it once at construction; changing it later does not
// retune channels that already exist.
type Config struct {
	// BusClockHz is the IPG bus clock driving the QuadTimer
	BusClockHz uint32

	// TMRPrescaler selects the QuadTimer divider, 0..7 -> 1..128
	TMRPrescaler uint8

	// GPTClock selects the GPT counting clock
	GPTClock GPTClock

	// CPUFrequencyHz is the core clock the DWT cycle counter runs at
	CPUFrequencyHz uint32

	// CycleCompensation is subtracted from the period computed by a cycle
	// counting channel's Trigger. Uncalibrated; measure the retrigger
	// overhead on the target and override.
	CycleCompensation uint32
}

// DefaultConfig returns the configuration for a stock 600 MHz board
func DefaultConfig() Config {
	return Config{
		BusClockHz:        DefaultBusClockHz,
		TMRPrescaler:      DefaultTMRPrescaler,
		GPTClock:          GPTClockBus,
		CPUFrequencyHz:    DefaultCPUFrequencyHz,
		CycleCompensation: DefaultCycleCompensation,
	}
}

var activeConfig = DefaultConfig()

// SetConfig installs the clock configuration used by channels constructed
// afterwards. Zero clock frequencies fall back to defaults; a zero
// prescaler or compensation is taken as given.
func SetConfig(cfg Config) {
	applyDefaults(&cfg)
	activeConfig = cfg
}

// GetConfig returns the active configuration
func GetConfig() Config {
	return activeConfig
}

// GPTClockHz returns the frequency the GPT counts at
func (c Config) GPTClockHz() uint32 {
	if c.GPTClock == GPTClockOsc {
		return OscClockHz
	}
	return c.BusClockHz
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.BusClockHz == 0 {
		cfg.BusClockHz = DefaultBusClockHz
	}
	if cfg.CPUFrequencyHz == 0 {
		cfg.CPUFrequencyHz = DefaultCPUFrequencyHz
	}
	// Prescaler 0 is a valid divider (/1), only the range is enforced
	cfg.TMRPrescaler &= 0x07
}
