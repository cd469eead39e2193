//go:build !tinygo

package core

// Register16 mirrors volatile.Register16 so register overlays build and can
// be driven by simulators on the host.
type Register16 struct {
	Reg uint16
}

func (r *Register16) Get() uint16 {
	return r.Reg
}

func (r *Register16) Set(value uint16) {
	r.Reg = value
}

func (r *Register16) SetBits(value uint16) {
	r.Reg |= value
}

func (r *Register16) ClearBits(value uint16) {
	r.Reg &^= value
}

func (r *Register16) HasBits(value uint16) bool {
	return r.Reg&value > 0
}

// ReplaceBits replaces the bits selected by mask<<pos with value<<pos
func (r *Register16) ReplaceBits(value uint16, mask uint16, pos uint8) {
	r.Reg = r.Reg&^(mask<<pos) | value<<pos
}

// Register32 mirrors volatile.Register32 on the host
type Register32 struct {
	Reg uint32
}

func (r *Register32) Get() uint32 {
	return r.Reg
}

func (r *Register32) Set(value uint32) {
	r.Reg = value
}

func (r *Register32) SetBits(value uint32) {
	r.Reg |= value
}

func (r *Register32) ClearBits(value uint32) {
	r.Reg &^= value
}

func (r *Register32) HasBits(value uint32) bool {
	return r.Reg&value > 0
}

// ReplaceBits replaces the bits selected by mask<<pos with value<<pos
func (r *Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Reg = r.Reg&^(mask<<pos) | value<<pos
}

// ClearFlags32 clears status bits. Hardware clears write-one-to-clear flags
// when the mask is written; a plain host register has to drop them itself.
func ClearFlags32(r *Register32, mask uint32) {
	r.ClearBits(mask)
}
