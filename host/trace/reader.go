// Package trace decodes the channel trace a target streams over serial
package trace

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"timertool/core"
	"timertool/protocol"
)

// Record is one decoded trace entry. Dropped is non-zero for loss reports,
// in which case Event is empty.
type Record struct {
	Event   core.TimingEvent
	Dropped uint32
}

// Stats summarises link quality
type Stats struct {
	Frames  uint32
	Corrupt uint32 // frames rejected by length, sync or CRC
	Lost    uint32 // frames missing from the sequence
	Dropped uint32 // events the target could not send
}

// Reader pulls frames off a byte stream and delivers decoded records
type Reader struct {
	src    io.Reader
	input  *protocol.RxBuffer
	parser *protocol.Parser

	records chan Record
	logger  *zap.Logger

	mu    sync.Mutex
	stats Stats
	err   error

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewReader starts reading src in the background. A nil logger discards
// diagnostics.
func NewReader(src io.Reader, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reader{
		src:      src,
		logger:   logger.Named("trace"),
		input:    protocol.NewRxBuffer(512),
		parser:   protocol.NewParser(),
		records:  make(chan Record, 64),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go r.readLoop()
	return r
}

// Records delivers decoded records. It is closed when the source ends or
// the reader is closed; Err then reports why.
func (r *Reader) Records() <-chan Record {
	return r.records
}

// Stats returns a snapshot of the link counters
func (r *Reader) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Err returns the error that ended the read loop, nil on clean EOF or Close
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops the read loop and waits for it to exit. It does not close
// the source; a read blocked on it returns at the source's own timeout.
func (r *Reader) Close() {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
	<-r.doneChan
}

func (r *Reader) readLoop() {
	defer close(r.doneChan)
	defer close(r.records)

	buffer := make([]byte, 256)

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		n, err := r.src.Read(buffer)
		if n > 0 {
			if taken := r.input.Write(buffer[:n]); taken < n {
				r.logger.Warn("receive buffer full", zap.Int("discarded", n-taken))
			}
			if !r.process() {
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Debug("source closed")
				return
			}
			r.setErr(fmt.Errorf("trace read: %w", err))
			return
		}
		if n == 0 {
			// read timeout with nothing pending
			time.Sleep(time.Millisecond)
		}
	}
}

// process parses buffered frames; false means the reader was stopped
func (r *Reader) process() bool {
	var out []Record
	r.parser.Parse(r.input, func(msg *protocol.Message) {
		err := protocol.DecodeTrace(msg.Payload,
			func(evt core.TimingEvent) { out = append(out, Record{Event: evt}) },
			func(n uint32) { out = append(out, Record{Dropped: n}) })

		r.mu.Lock()
		r.stats.Frames++
		if err != nil {
			r.stats.Corrupt++
		}
		r.mu.Unlock()
		if err != nil {
			r.logger.Warn("undecodable payload", zap.Uint8("seq", msg.Sequence), zap.Error(err))
		}
	})

	if r.parser.Corrupt > 0 || r.parser.Lost > 0 {
		r.logger.Debug("link errors",
			zap.Uint32("corrupt", r.parser.Corrupt),
			zap.Uint32("lost", r.parser.Lost))
	}

	r.mu.Lock()
	r.stats.Corrupt += r.parser.Corrupt
	r.stats.Lost += r.parser.Lost
	r.parser.Corrupt, r.parser.Lost = 0, 0
	for _, rec := range out {
		r.stats.Dropped += rec.Dropped
	}
	r.mu.Unlock()

	for _, rec := range out {
		select {
		case r.records <- rec:
		case <-r.stopChan:
			return false
		}
	}
	return true
}

func (r *Reader) setErr(err error) {
	r.logger.Warn("read failed", zap.Error(err))
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}
