package mqtt

import (
	"time"

	"timertool/host/trace"
)

// FakePublisher records published records for tests
type FakePublisher struct {
	Records  []trace.Record
	Payloads [][]byte

	// PublishError, if set, is returned by Publish
	PublishError error

	Closed bool
}

// NewFakePublisher creates a FakePublisher
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records rec
func (f *FakePublisher) Publish(rec trace.Record) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(rec, time.Unix(0, 0))
	if err != nil {
		return err
	}
	f.Records = append(f.Records, rec)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher closed
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
