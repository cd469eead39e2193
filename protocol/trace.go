package protocol

import (
	"errors"
	"io"

	"timertool/core"
)

// Message IDs carried in trace frames
const (
	MsgTimingEvent = 1 // type, oid, clock, v1, v2
	MsgDropped     = 2 // count of events lost before this frame
)

// maxEventSize is the worst-case encoding of one timing event message
const maxEventSize = 1 + 2 + 2 + 3*5

var ErrUnknownMessage = errors.New("protocol: unknown message id")

// EncodeTimingEvent appends one timing event message to output
func EncodeTimingEvent(output OutputBuffer, evt core.TimingEvent) {
	EncodeVLQUint(output, MsgTimingEvent)
	EncodeVLQUint(output, uint32(evt.EventType))
	EncodeVLQUint(output, uint32(evt.OID))
	EncodeVLQUint(output, evt.Clock)
	EncodeVLQUint(output, evt.Value1)
	EncodeVLQUint(output, evt.Value2)
}

func decodeTimingEvent(data *[]byte) (core.TimingEvent, error) {
	var fields [5]uint32
	for i := range fields {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return core.TimingEvent{}, err
		}
		fields[i] = v
	}
	return core.TimingEvent{
		EventType: uint8(fields[0]),
		OID:       uint8(fields[1]),
		Clock:     fields[2],
		Value1:    fields[3],
		Value2:    fields[4],
	}, nil
}

// DecodeTrace walks a frame payload, calling onEvent for each timing event
// and onDropped for each loss report. Either callback may be nil.
func DecodeTrace(payload []byte, onEvent func(core.TimingEvent), onDropped func(uint32)) error {
	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			return err
		}

		switch id {
		case MsgTimingEvent:
			evt, err := decodeTimingEvent(&payload)
			if err != nil {
				return err
			}
			if onEvent != nil {
				onEvent(evt)
			}
		case MsgDropped:
			n, err := DecodeVLQUint(&payload)
			if err != nil {
				return err
			}
			if onDropped != nil {
				onDropped(n)
			}
		default:
			return ErrUnknownMessage
		}
	}
	return nil
}

// TraceWriter packs timing events into frames and writes them to w, one
// Write per frame. Frames are built in a fixed scratch buffer.
type TraceWriter struct {
	w       io.Writer
	framer  Framer
	scratch ScratchOutput
	dropped uint32
}

// NewTraceWriter returns a TraceWriter sending to w
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// ReportDropped adds n to the loss count sent with the next frame
func (t *TraceWriter) ReportDropped(n uint32) {
	t.dropped += n
}

// WriteEvents sends events, as many per frame as fit
func (t *TraceWriter) WriteEvents(events []core.TimingEvent) error {
	for len(events) > 0 || t.dropped > 0 {
		t.scratch.Reset()
		n := 0
		err := t.framer.EncodeFrame(&t.scratch, func(output OutputBuffer) {
			if t.dropped > 0 {
				EncodeVLQUint(output, MsgDropped)
				EncodeVLQUint(output, t.dropped)
			}
			for n < len(events) && t.scratch.Free() >= maxEventSize+MessageTrailerSize {
				EncodeTimingEvent(output, events[n])
				n++
			}
		})
		if err != nil {
			return err
		}
		t.dropped = 0
		events = events[n:]

		if _, err := t.w.Write(t.scratch.Result()); err != nil {
			return err
		}
	}
	return nil
}
