package serial

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	if cfg.Baud != DefaultBaud || cfg.ReadTimeout != 100 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		cfg  Config
		want error
	}{
		{Config{Baud: 115200}, ErrNoDevice},
		{Config{Device: "COM3"}, ErrBadBaud},
		{Config{Device: "COM3", Baud: 9600, ReadTimeout: -1}, ErrBadTimeout},
		{Config{Device: "COM3", Baud: 9600}, nil},
	}

	for _, tt := range tests {
		if err := tt.cfg.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("Validate(%+v) = %v, want %v", tt.cfg, err, tt.want)
		}
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := Open(&Config{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice, got %v", err)
	}
}
