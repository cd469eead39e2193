package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"timertool/core"
	"timertool/host/trace"
)

func TestFormatPayloadEvent(t *testing.T) {
	rec := trace.Record{Event: core.TimingEvent{EventType: core.EvtLate, OID: 2, Clock: 5000, Value1: 700, Value2: 500}}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := FormatPayload(rec, now)
	if err != nil {
		t.Fatalf("FormatPayload failed: %v", err)
	}

	var got Payload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Invalid JSON %s: %v", data, err)
	}
	want := Payload{
		Received: "2026-01-02T03:04:05Z",
		Channel:  2,
		Event:    "LATE!",
		Clock:    5000,
		Value1:   700,
		Value2:   500,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Payload mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatPayloadDropped(t *testing.T) {
	data, err := FormatPayload(trace.Record{Dropped: 12}, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("FormatPayload failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Invalid JSON %s: %v", data, err)
	}
	if got["event"] != "DROPPED" || got["dropped"] != float64(12) {
		t.Errorf("Unexpected loss payload %s", data)
	}
}

func TestFakePublisher(t *testing.T) {
	var pub Publisher = NewFakePublisher()
	fake := pub.(*FakePublisher)

	if err := pub.Publish(trace.Record{Event: core.TimingEvent{EventType: core.EvtFire}}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(fake.Records) != 1 || len(fake.Payloads) != 1 {
		t.Errorf("Expected one recorded publish, got %d", len(fake.Records))
	}

	fake.PublishError = errors.New("broker gone")
	if err := pub.Publish(trace.Record{}); !errors.Is(err, fake.PublishError) {
		t.Errorf("Expected injected error, got %v", err)
	}

	pub.Close()
	if !fake.Closed {
		t.Error("Close not recorded")
	}
}
