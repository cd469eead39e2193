package core

import "errors"

// Result codes returned by channel operations. A nil error is success.
var (
	// ErrWrongType: the channel does not accept this numeric form of period
	ErrWrongType = errors.New("timer: wrong numeric type for period")

	// ErrNotImplemented: the capability is absent on this backend
	ErrNotImplemented = errors.New("timer: function not implemented for this channel")

	// ErrPeriodOverflow: the period exceeds the counter range; the channel
	// was armed with the largest representable period instead
	ErrPeriodOverflow = errors.New("timer: period overflow, clamped to maximum")

	// ErrTriggeredLate: the counter had already passed the new period and
	// was forced to fire immediately
	ErrTriggeredLate = errors.New("timer: new period already elapsed, triggered late")
)

// ErrorHandler receives every error a channel reports
type ErrorHandler func(err error)

var errorHandler ErrorHandler

// SetErrorHandler installs a hook called with each non-nil result a channel
// returns. Pass nil to remove it. The hook may run in interrupt context.
func SetErrorHandler(h ErrorHandler) {
	errorHandler = h
}

// PostError reports err to the error handler and debug output, then
// returns it unchanged so callers can write `return PostError(err)`.
func PostError(err error) error {
	if err == nil {
		return nil
	}
	if errorHandler != nil {
		errorHandler(err)
	}
	DebugPrintln(err.Error())
	return err
}

// IsWarning reports whether err left the channel armed with degraded
// timing (clamped or late) rather than refusing the request.
func IsWarning(err error) bool {
	return errors.Is(err, ErrPeriodOverflow) || errors.Is(err, ErrTriggeredLate)
}
