package protocol

import "errors"

var ErrFrameTooLong = errors.New("protocol: frame exceeds MessageMax")

// Framer numbers and wraps outgoing payloads
type Framer struct {
	seq uint8
}

// NewFramer returns a framer starting at sequence 0
func NewFramer() *Framer {
	return &Framer{}
}

// EncodeFrame writes one frame to output, with body supplying the payload.
// The sequence advances with every frame. On error output holds a partial
// frame and the sequence is unchanged.
func (f *Framer) EncodeFrame(output OutputBuffer, body func(output OutputBuffer)) error {
	cursor := output.CurPosition()

	// Write header (length placeholder and sequence)
	output.Output([]byte{0, MessageDest | f.seq&MessageSeqMask})
	body(output)

	changed := len(output.DataSince(cursor))
	msgLen := changed + MessageTrailerSize
	if msgLen > MessageMax {
		return ErrFrameTooLong
	}
	output.Update(cursor, uint8(msgLen))

	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	if len(output.DataSince(cursor)) != msgLen {
		return ErrFrameTooLong
	}

	f.seq = (f.seq + 1) & MessageSeqMask
	return nil
}

// Parser splits a byte stream into validated frames. After a bad frame it
// discards input up to the next sync byte.
type Parser struct {
	synchronized bool
	haveSeq      bool
	nextSeq      uint8

	// Corrupt counts frames rejected for length, sync or CRC
	Corrupt uint32
	// Lost counts frames skipped according to the sequence numbers
	Lost uint32
}

// NewParser returns a parser that accepts the first frame it sees
func NewParser() *Parser {
	return &Parser{synchronized: true}
}

// Parse consumes complete frames from input and calls fn for each one.
// Partial frames stay in input for the next call.
func (p *Parser) Parse(input InputBuffer, fn func(msg *Message)) {
	data := input.Data()

	for len(data) > 0 {
		if !p.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}

			if syncPos >= 0 {
				data = data[syncPos+1:]
				p.synchronized = true
			} else {
				data = nil
			}
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		seq := data[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageMax || seq&^MessageSeqMask != MessageDest {
			p.desync()
			continue
		}

		// Wait for full message
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			p.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			p.desync()
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		msg := &Message{
			Length:   uint8(msgLen),
			Sequence: seq & MessageSeqMask,
			Payload:  payload,
			CRC:      frameCRC,
		}
		data = data[msgLen:]

		if p.haveSeq {
			p.Lost += uint32((msg.Sequence - p.nextSeq) & MessageSeqMask)
		}
		p.haveSeq = true
		p.nextSeq = (msg.Sequence + 1) & MessageSeqMask

		fn(msg)
	}

	// Remove consumed bytes from input
	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (p *Parser) desync() {
	p.synchronized = false
	p.Corrupt++
}
