package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"timertool/core"
	"timertool/protocol"
)

func encodeTrace(t *testing.T, dropped uint32, events ...core.TimingEvent) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := protocol.NewTraceWriter(&buf)
	tw.ReportDropped(dropped)
	if err := tw.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents failed: %v", err)
	}
	return buf.Bytes()
}

func collect(r *Reader) []Record {
	var out []Record
	for rec := range r.Records() {
		out = append(out, rec)
	}
	return out
}

func TestReaderDecodesStream(t *testing.T) {
	var events []core.TimingEvent
	for i := uint32(0); i < 20; i++ {
		events = append(events, core.TimingEvent{EventType: core.EvtFire, OID: 1, Clock: i * 1000, Value1: 1000})
	}
	stream := encodeTrace(t, 0, events...)

	r := NewReader(bytes.NewReader(stream), nil)
	got := collect(r)
	r.Close()

	var decoded []core.TimingEvent
	for _, rec := range got {
		decoded = append(decoded, rec.Event)
	}
	if diff := cmp.Diff(events, decoded); diff != "" {
		t.Errorf("Decoded events mismatch (-want +got):\n%s", diff)
	}
	if err := r.Err(); err != nil {
		t.Errorf("Expected clean EOF, got %v", err)
	}
	st := r.Stats()
	if st.Frames == 0 || st.Corrupt != 0 || st.Lost != 0 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestReaderCountsLoss(t *testing.T) {
	var buf bytes.Buffer
	tw := protocol.NewTraceWriter(&buf)
	evt := core.TimingEvent{EventType: core.EvtLate, OID: 2}

	tw.WriteEvents([]core.TimingEvent{evt})
	first := buf.Len()
	tw.WriteEvents([]core.TimingEvent{evt})
	second := buf.Len()
	tw.ReportDropped(5)
	tw.WriteEvents([]core.TimingEvent{evt})

	// cut the second frame out of the stream
	all := buf.Bytes()
	stream := append(append([]byte{}, all[:first]...), all[second:]...)

	r := NewReader(bytes.NewReader(stream), nil)
	got := collect(r)
	r.Close()

	if len(got) != 3 || got[1].Dropped != 5 {
		t.Fatalf("Expected event, loss report, event; got %+v", got)
	}
	st := r.Stats()
	if st.Lost != 1 || st.Dropped != 5 {
		t.Errorf("Expected lost=1 dropped=5, got %+v", st)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestReaderReportsError(t *testing.T) {
	broken := errors.New("device unplugged")
	src := &failingReader{
		data: encodeTrace(t, 0, core.TimingEvent{EventType: core.EvtBegin, OID: 1}),
		err:  broken,
	}

	r := NewReader(src, zaptest.NewLogger(t))
	got := collect(r)
	r.Close()

	if len(got) != 1 {
		t.Errorf("Expected the event before the error, got %d records", len(got))
	}
	if !errors.Is(r.Err(), broken) {
		t.Errorf("Expected wrapped read error, got %v", r.Err())
	}
}

func TestReaderCloseUnblocksDelivery(t *testing.T) {
	var events []core.TimingEvent
	for i := 0; i < 200; i++ {
		events = append(events, core.TimingEvent{EventType: core.EvtFire})
	}
	// nobody drains Records, so the loop blocks on a full channel
	r := NewReader(bytes.NewReader(encodeTrace(t, 0, events...)), nil)
	r.Close()
	r.Close()
}

func TestFormat(t *testing.T) {
	line := Format(Record{Event: core.TimingEvent{EventType: core.EvtOverflow, OID: 3, Clock: 42, Value1: 65534}})
	for _, want := range []string{"42", "ch3", "OVERFLOW!", "v1=65534", "v2=0"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
	if line := Format(Record{Dropped: 9}); !strings.Contains(line, "9 events dropped") {
		t.Errorf("Unexpected loss line %q", line)
	}
}
