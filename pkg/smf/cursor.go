package smf

// cursor is a bounds-checked forward-only reader over an immutable buffer.
// It never copies: take returns a subslice of the underlying data.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// take returns the next n bytes and advances past them.
func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, ErrEndOfData
	}
	out := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return out, nil
}

// takeByte is take(1) without the slice.
func (c *cursor) takeByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, ErrEndOfData
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// peek returns the next byte without advancing. Callers check remain first.
func (c *cursor) peek() byte {
	return c.data[c.pos]
}

func (c *cursor) remain() int {
	return len(c.data) - c.pos
}

func (c *cursor) offset() int {
	return c.pos
}
