//go:build tinygo

package core

import "runtime/volatile"

// Register16 is a memory-mapped 16-bit peripheral register
type Register16 = volatile.Register16

// Register32 is a memory-mapped 32-bit peripheral register
type Register32 = volatile.Register32

// ClearFlags32 clears write-one-to-clear status bits
func ClearFlags32(r *Register32, mask uint32) {
	r.Set(mask)
}
