package smf

// maxVarIntBytes is the number of 7-bit groups read before giving up; enough
// to fill a 32-bit accumulator. Longer encodings are truncated, not rejected.
const maxVarIntBytes = 4

// readVarInt decodes a MIDI variable-length quantity.
func readVarInt(c *cursor) (uint32, error) {
	var x uint32
	for i := 0; i < maxVarIntBytes; i++ {
		b, err := c.takeByte()
		if err != nil {
			return 0, err
		}
		x = x<<7 | uint32(b&0x7F)
		if b < 0x80 {
			return x, nil
		}
	}
	return x, nil
}
