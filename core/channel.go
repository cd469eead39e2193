package core

// Callback is the procedure a channel invokes when its period elapses.
//
// Hardware channels call it from their interrupt handler, asynchronously to
// the main program. It must not block and must not assume an ordinary call
// stack (no locks held by the interrupted code, no long work).
type Callback func()

// Mode selects whether a channel rearms itself after firing
type Mode uint8

const (
	OneShot  Mode = iota // fire once, then disarm
	Periodic             // rearm automatically after each fire
)

// Channel is the capability set every timer backend offers. Periods are
// microseconds at this boundary. Operations a backend cannot perform return
// ErrNotImplemented (or ErrWrongType for the float forms) and leave the
// channel untouched.
type Channel interface {
	// Begin stores cb and arms the channel to fire after period
	Begin(cb Callback, period uint32, mode Mode) error
	BeginFloat(cb Callback, period float32, mode Mode) error

	// Trigger rearms the channel to fire after delay, keeping cb and mode
	Trigger(delay uint32) error
	TriggerFloat(delay float32) error

	// MaxPeriod is the longest period the counter width and divider allow
	MaxPeriod() (float32, error)

	// SetPeriod changes both the running and the buffered period
	SetPeriod(us uint32) error
	// SetCurrentPeriod changes the period of the cycle in progress
	SetCurrentPeriod(us uint32) error
	// SetNextPeriod changes the period adopted after the next fire
	SetNextPeriod(us uint32) error

	CurrentPeriod() uint32
	NextPeriod() uint32

	// Start restarts elapsed-time counting from now
	Start()
	// Stop disarms the channel. An interrupt already raised when Stop runs
	// may still deliver one callback; nothing fires after that.
	Stop() error

	// Close disarms the channel and clears its callback slot
	Close()
}

// Base carries the callback slot and the "unsupported" behaviour shared by
// every backend. Backends embed it and override what they support.
type Base struct {
	slot *Callback
}

// NewBase binds a channel to caller-owned callback storage. The storage
// must stay valid for as long as the channel can fire. A nil slot gets
// private storage.
func NewBase(slot *Callback) Base {
	if slot == nil {
		slot = new(Callback)
	}
	return Base{slot: slot}
}

// SetCallback writes cb into the callback slot
func (b *Base) SetCallback(cb Callback) {
	*b.slot = cb
}

// Callback returns the callback currently in the slot
func (b *Base) Callback() Callback {
	return *b.slot
}

// Fire invokes the stored callback, if any
func (b *Base) Fire() {
	if cb := *b.slot; cb != nil {
		cb()
	}
}

func (b *Base) BeginFloat(cb Callback, period float32, mode Mode) error {
	return PostError(ErrWrongType)
}

func (b *Base) TriggerFloat(delay float32) error {
	return PostError(ErrWrongType)
}

func (b *Base) MaxPeriod() (float32, error) {
	return 0, PostError(ErrNotImplemented)
}

func (b *Base) SetPeriod(us uint32) error {
	return PostError(ErrNotImplemented)
}

func (b *Base) SetCurrentPeriod(us uint32) error {
	return PostError(ErrNotImplemented)
}

func (b *Base) SetNextPeriod(us uint32) error {
	return PostError(ErrNotImplemented)
}

func (b *Base) CurrentPeriod() uint32 { return 0 }

func (b *Base) NextPeriod() uint32 { return 0 }

func (b *Base) Start() {}

func (b *Base) Stop() error { return nil }
