package protocol

// crcTable holds the reflected CCITT polynomial (0x8408) for each low byte
var crcTable = makeCRCTable()

func makeCRCTable() (t [256]uint16) {
	for i := range t {
		c := uint16(i)
		for bit := 0; bit < 8; bit++ {
			if c&1 != 0 {
				c = c>>1 ^ 0x8408
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}

// CRC16 returns the frame check over length, sequence and payload. It is
// CRC-16/MCRF4XX: CCITT reflected, seeded with 0xFFFF, no final xor.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc>>8 ^ crcTable[byte(crc)^b]
	}
	return crc
}
