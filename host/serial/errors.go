package serial

import "errors"

var (
	ErrNoDevice   = errors.New("serial: no device given")
	ErrBadBaud    = errors.New("serial: baud rate must be positive")
	ErrBadTimeout = errors.New("serial: read timeout must not be negative")
)
