package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a channel event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	OID       uint8  // Channel ID
	Clock     uint32 // Micros() at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtBegin    = 1 // Begin armed the channel (v1=period ticks, v2=mode)
	EvtTrigger  = 2 // Trigger rearmed the channel (v1=period ticks)
	EvtFire     = 3 // Callback invoked (v1=period ticks in force)
	EvtStop     = 4 // Stop or Close disarmed the channel
	EvtLate     = 5 // Period shortened past the counter (v1=counter, v2=new ticks)
	EvtOverflow = 6 // Period clamped (v1=clamped ticks)
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8  // Next write position
	timingPending  uint32 // Events recorded since the last drain

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Once InitAsyncDebug ran, messages are queued instead so that callers in
// interrupt context never wait on the output device.
func DebugPrintln(msg string) {
	if !debugEnabled || debugPrintln == nil {
		return
	}
	if debugChan != nil {
		DebugAsync(msg)
		return
	}
	debugPrintln(msg)
}

// DebugAsync queues a debug message for async output (non-blocking)
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
			// Channel full, drop message
		}
	}
}

// RecordTiming captures a timing event in the ring buffer.
// Safe to call from interrupt handlers.
func RecordTiming(eventType, oid uint8, clock, value1, value2 uint32) {
	state := DisableInterrupts()
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		OID:       oid,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
	timingPending++
	RestoreInterrupts(state)
}

// DrainTimingEvents copies the events recorded since the last drain into
// buf, oldest first. It returns how many it copied and how many were lost,
// either overwritten in the ring or not fitting buf (the newest are kept).
func DrainTimingEvents(buf []TimingEvent) (n int, dropped uint32) {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	pending := timingPending
	if pending > TimingRingSize {
		dropped = pending - TimingRingSize
		pending = TimingRingSize
	}
	if int(pending) > len(buf) {
		dropped += pending - uint32(len(buf))
		pending = uint32(len(buf))
	}

	start := (int(timingRingHead) + TimingRingSize - int(pending)) % TimingRingSize
	for i := 0; i < int(pending); i++ {
		buf[i] = timingRing[(start+i)%TimingRingSize]
	}
	timingPending = 0
	return int(pending), dropped
}

// TimingEvents returns the recorded events, oldest first
func TimingEvents() []TimingEvent {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns a short name for an event type code
func EventName(eventType uint8) string {
	switch eventType {
	case EvtBegin:
		return "BEGIN"
	case EvtTrigger:
		return "TRIGGER"
	case EvtFire:
		return "FIRE"
	case EvtStop:
		return "STOP"
	case EvtLate:
		return "LATE!"
	case EvtOverflow:
		return "OVERFLOW!"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing writes the timing ring to the debug writer. It bypasses
// the async queue so it still works from an error handler.
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + EventName(evt.EventType) +
			" oid=" + utoa(uint32(evt.OID)) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}
