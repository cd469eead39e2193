// Package mqtt forwards decoded trace records to an MQTT broker, so a
// dashboard can watch channel timing without holding the serial port.
package mqtt

import (
	"encoding/json"
	"time"

	"timertool/core"
	"timertool/host/trace"
)

// DefaultTopic is the topic records are published under
const DefaultTopic = "timertool/trace"

// Publisher publishes trace records
type Publisher interface {
	// Publish sends one record. A failure must not stop the trace.
	Publish(rec trace.Record) error

	// Close disconnects from the broker
	Close() error
}

// Payload is the JSON body of one published record
type Payload struct {
	Received string `json:"received"`
	Channel  uint8  `json:"channel"`
	Event    string `json:"event"`
	Clock    uint32 `json:"clock_us"`
	Value1   uint32 `json:"v1"`
	Value2   uint32 `json:"v2"`
	Dropped  uint32 `json:"dropped,omitempty"`
}

// FormatPayload creates the JSON payload for a record received at now
func FormatPayload(rec trace.Record, now time.Time) ([]byte, error) {
	p := Payload{Received: now.UTC().Format(time.RFC3339Nano)}
	if rec.Dropped > 0 {
		p.Event = "DROPPED"
		p.Dropped = rec.Dropped
	} else {
		p.Channel = rec.Event.OID
		p.Event = core.EventName(rec.Event.EventType)
		p.Clock = rec.Event.Clock
		p.Value1 = rec.Event.Value1
		p.Value2 = rec.Event.Value2
	}
	return json.Marshal(p)
}
