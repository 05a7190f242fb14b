package viewstate

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfData is returned when a read needs more bytes than remain in the buffer.
	ErrOutOfData = errors.New("out of data")

	// ErrVarUintOverflow is returned when a variable-length integer does not fit in 64 bits.
	ErrVarUintOverflow = errors.New("variable-length integer overflows 64 bits")
)

// maxVarUintBytes is the longest LEB128 sequence that still fits in a uint64.
const maxVarUintBytes = 10

// Cursor is a forward-only reader over a fixed byte buffer.
//
// A Cursor is not safe for concurrent use; each decode builds its own.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of b. The buffer is not
// copied and must not be modified while the Cursor is in use.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// ReadByte returns the next byte and advances by one.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrOutOfData
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadBytes returns a copy of the next n bytes and advances by n.
// If fewer than n bytes remain, nothing is consumed.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes, %d remain", ErrOutOfData, n, c.Remaining())
	}
	out := make([]byte, n)
	copy(out, c.buf[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

/*
ReadVarUint reads an unsigned little-endian base 128 (LEB128) integer.

Each byte contributes its low 7 bits, least significant group first. Reading
continues while the high bit (0x80) of the byte just read is set, so

	0x00      -> 0
	0xAC 0x02 -> 300
*/
func (c *Cursor) ReadVarUint() (uint64, error) {
	var v uint64
	for i := 0; i < maxVarUintBytes; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		group := uint64(b & 0x7F)
		// the tenth byte may only carry the single remaining bit
		if i == maxVarUintBytes-1 && group > 1 {
			return 0, ErrVarUintOverflow
		}
		v |= group << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarUintOverflow
}

// ReadNullTerminatedString reads up to the next 0x00 byte, which is consumed but
// not included in the result. If no terminator is found the rest of the buffer
// is returned.
func (c *Cursor) ReadNullTerminatedString() string {
	start := c.pos
	for c.pos < len(c.buf) {
		if c.buf[c.pos] == 0x00 {
			s := string(c.buf[start:c.pos])
			c.pos++
			return s
		}
		c.pos++
	}
	return string(c.buf[start:])
}
