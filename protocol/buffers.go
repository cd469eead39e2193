package protocol

// InputBuffer is the receive side the frame parser consumes from
type InputBuffer interface {
	Data() []byte
	Available() int
	Pop(n int)
}

// OutputBuffer is what frames and messages are encoded into. Update
// patches a byte already written, which the framer needs for the length.
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
}

// ScratchOutput builds a single frame in place. It never allocates, so the
// target can keep one per link in static storage. Output beyond MessageMax
// is cut off, which EncodeFrame reports as ErrFrameTooLong.
type ScratchOutput struct {
	frame [MessageMax]byte
	n     int
}

// NewScratchOutput returns an empty frame buffer
func NewScratchOutput() *ScratchOutput {
	return new(ScratchOutput)
}

func (s *ScratchOutput) Output(data []byte) {
	s.n += copy(s.frame[s.n:], data)
}

func (s *ScratchOutput) CurPosition() int {
	return s.n
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos >= 0 && pos < s.n {
		s.frame[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos < 0 || pos > s.n {
		return nil
	}
	return s.frame[pos:s.n]
}

// Result returns the bytes written since the last Reset
func (s *ScratchOutput) Result() []byte {
	return s.frame[:s.n]
}

// Free returns how many more bytes fit
func (s *ScratchOutput) Free() int {
	return MessageMax - s.n
}

// Reset starts the next frame
func (s *ScratchOutput) Reset() {
	s.n = 0
}

// RxBuffer holds bytes read off the trace link until the parser has
// consumed them. Unparsed bytes always sit contiguously, so Data never
// copies; consumed space is reclaimed by moving the tail down on Write.
type RxBuffer struct {
	buf        []byte
	head, tail int
}

// NewRxBuffer returns a buffer holding at most capacity unparsed bytes
func NewRxBuffer(capacity int) *RxBuffer {
	return &RxBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count taken
func (r *RxBuffer) Write(data []byte) int {
	if r.tail+len(data) > len(r.buf) && r.head > 0 {
		r.tail = copy(r.buf, r.buf[r.head:r.tail])
		r.head = 0
	}
	n := copy(r.buf[r.tail:], data)
	r.tail += n
	return n
}

// Data returns the unparsed bytes. The slice is only valid until the next
// Write.
func (r *RxBuffer) Data() []byte {
	return r.buf[r.head:r.tail]
}

func (r *RxBuffer) Available() int {
	return r.tail - r.head
}

// Pop discards n parsed bytes
func (r *RxBuffer) Pop(n int) {
	if n > r.Available() {
		n = r.Available()
	}
	r.head += n
	if r.head == r.tail {
		r.head, r.tail = 0, 0
	}
}
