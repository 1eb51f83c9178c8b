package grib2

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Cursor is a sequential reader over a GRIB2 buffer. Octet ranges passed to
// its accessors are 1-based and inclusive, relative to the current base
// offset. Reads past the end of the buffer yield zero octets rather than
// panicking; callers use Remaining or Exhausted to bound their loops.
type Cursor struct {
	buf  []byte
	base int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current base offset into the buffer.
func (c *Cursor) Offset() int { return c.base }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of octets from the base offset to the end of
// the buffer.
func (c *Cursor) Remaining() int {
	if c.base >= len(c.buf) {
		return 0
	}
	return len(c.buf) - c.base
}

// Exhausted reports whether the base offset has reached the buffer end.
func (c *Cursor) Exhausted() bool { return c.base >= len(c.buf) }

// Advance moves the base offset forward by n octets.
func (c *Cursor) Advance(n int) {
	c.Seek(c.base + n)
}

// Seek moves the base offset to an absolute position, clamped to the buffer.
func (c *Cursor) Seek(off int) {
	switch {
	case off < 0:
		c.base = 0
	case off > len(c.buf):
		c.base = len(c.buf)
	default:
		c.base = off
	}
}

// Octets returns the bytes in the inclusive range [start, end] relative to
// the base offset. The returned slice aliases the buffer and is shorter than
// requested when the range runs past the buffer end.
func (c *Cursor) Octets(start, end int) []byte {
	lo := c.base + start - 1
	hi := c.base + end
	if lo < 0 {
		lo = 0
	}
	if hi > len(c.buf) {
		hi = len(c.buf)
	}
	if lo >= hi {
		return nil
	}
	return c.buf[lo:hi]
}

// Uint reads the range as a big-endian unsigned integer of up to 8 octets.
// Octets beyond the buffer end read as zero.
func (c *Cursor) Uint(start, end int) uint64 {
	n := end - start + 1
	if n <= 0 || n > 8 {
		return 0
	}
	var tmp [8]byte
	copy(tmp[8-n:], c.Octets(start, end))
	return binary.BigEndian.Uint64(tmp[:])
}

// Int reads the range as a sign-magnitude integer: the top bit of the first
// octet is the sign and the remaining bits are the magnitude.
func (c *Cursor) Int(start, end int) int64 {
	n := end - start + 1
	if n <= 0 || n > 8 {
		return 0
	}
	raw := c.Uint(start, end)
	signBit := uint64(1) << (uint(n)*8 - 1)
	mag := int64(raw &^ signBit)
	if raw&signBit != 0 {
		return -mag
	}
	return mag
}

// Float32 reads a 4-octet range as a big-endian IEEE 754 single.
func (c *Cursor) Float32(start, end int) float32 {
	if end-start+1 != 4 {
		return 0
	}
	return math.Float32frombits(uint32(c.Uint(start, end)))
}

// Tag reads the range as an ASCII string.
func (c *Cursor) Tag(start, end int) string {
	return string(c.Octets(start, end))
}

// Find returns the absolute offset of the next occurrence of tag strictly
// after the base offset, or -1.
func (c *Cursor) Find(tag string) int {
	from := c.base + 1
	if from >= len(c.buf) || tag == "" {
		return -1
	}
	i := bytes.Index(c.buf[from:], []byte(tag))
	if i < 0 {
		return -1
	}
	return from + i
}
