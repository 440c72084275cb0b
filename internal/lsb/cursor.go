package lsb

import "github.com/yyyoichi/bitstream-go"

// Cursor is the position of the next bit to embed. It is threaded through
// successive bands so that each band can be processed on its own.
type Cursor struct {
	bits *bitstream.BitReader[uint64]
	pos  int
}

func NewCursor(bits *bitstream.BitReader[uint64]) *Cursor {
	return &Cursor{bits: bits}
}

// Next returns the next bit and advances the cursor.
// ok is false once every bit has been consumed.
func (c *Cursor) Next() (bit uint8, ok bool) {
	if c.Done() {
		return 0, false
	}
	v, _ := c.bits.ReadBitAt(c.pos)
	c.pos++
	if v {
		return 1, true
	}
	return 0, true
}

func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) Len() int {
	return c.bits.Bits()
}

func (c *Cursor) Done() bool {
	return c.pos >= c.bits.Bits()
}
