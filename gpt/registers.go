// Package gpt implements a periodic timer channel on the i.MX RT general
// purpose timer (GPT). The GPT runs in restart mode: the counter resets
// when it reaches OCR1 and raises OF1.
package gpt

import "timertool/core"

// Registers overlays one GPT module
type Registers struct {
	CR   core.Register32 // 0x00 control
	PR   core.Register32 // 0x04 prescaler
	SR   core.Register32 // 0x08 status (write one to clear)
	IR   core.Register32 // 0x0C interrupt enable
	OCR1 core.Register32 // 0x10 output compare 1
	OCR2 core.Register32 // 0x14
	OCR3 core.Register32 // 0x18
	ICR1 core.Register32 // 0x1C
	ICR2 core.Register32 // 0x20
	CNT  core.Register32 // 0x24 counter (read only)
}

const (
	crEN    = 1 << 0 // timer enable
	crENMOD = 1 << 1 // counter resets when enabled

	srOF1    = 1 << 0 // output compare 1 flag
	srAll    = 0x3F
	irOF1IE  = 1 << 0
	maxCount = 0xFFFFFFFF
)
