// Package protocol carries timer channel trace events over a byte stream.
//
// Each frame is
//
//	<len> <seq> <payload...> <crc hi> <crc lo> 0x7E
//
// where len counts the whole frame, seq is 0x10 | (n & 0x0F) and the
// payload is a sequence of VLQ-encoded messages.
package protocol

const Version = "0.1.0"

// Frame layout
const (
	MessageMax         = 64 // Largest frame on the wire
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Sequence numbers count modulo 16 in the low nibble
	MessageSeqMask = 0x0F
)

// Message is one validated frame
type Message struct {
	Length   uint8
	Sequence uint8
	Payload  []byte // Frame data without header/trailer
	CRC      uint16
}
