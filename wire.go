package notestore

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire types of the tag/length-prefixed encoding. A field tag is a varint
// whose low 3 bits select the wire type and whose remaining bits are the
// field number.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireGroup3  = 3 // legacy group encoding, never emitted by this format
	wireGroup4  = 4
	wireFixed32 = 5
)

const maxVarintBytes = 10

// cursor walks a byte buffer left to right. All read methods fail with
// ErrMalformedInput instead of reading past the end.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) done() bool { return c.off >= len(c.buf) }

func (c *cursor) remaining() int { return len(c.buf) - c.off }

// varint reads a base-128 variable-length integer.
func (c *cursor) varint() (uint64, error) {
	var v uint64
	for i := 0; i < maxVarintBytes; i++ {
		if c.off >= len(c.buf) {
			return 0, fmt.Errorf("%w: truncated varint at offset %d", ErrMalformedInput, c.off)
		}
		b := c.buf[c.off]
		c.off++
		if i == maxVarintBytes-1 && b > 1 {
			return 0, fmt.Errorf("%w: varint overflows 64 bits at offset %d", ErrMalformedInput, c.off)
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b < 0x80 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: varint longer than %d bytes at offset %d", ErrMalformedInput, maxVarintBytes, c.off)
}

// tag reads a field header and splits it into field number and wire type.
func (c *cursor) tag() (field uint64, wire int, err error) {
	v, err := c.varint()
	if err != nil {
		return 0, 0, err
	}
	field = v >> 3
	wire = int(v & 0x7)
	if field == 0 {
		return 0, 0, fmt.Errorf("%w: field number 0 at offset %d", ErrMalformedInput, c.off)
	}
	return field, wire, nil
}

func (c *cursor) fixed32() (float32, error) {
	if c.remaining() < 4 {
		return 0, fmt.Errorf("%w: truncated fixed32 at offset %d", ErrMalformedInput, c.off)
	}
	bits := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return math.Float32frombits(bits), nil
}

func (c *cursor) fixed64() (float64, error) {
	if c.remaining() < 8 {
		return 0, fmt.Errorf("%w: truncated fixed64 at offset %d", ErrMalformedInput, c.off)
	}
	bits := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return math.Float64frombits(bits), nil
}

// bytes reads a varint length prefix followed by that many raw bytes. The
// returned slice aliases the underlying buffer; decode output is build-once
// and read-only, so no copy is taken.
func (c *cursor) bytes() ([]byte, error) {
	n, err := c.varint()
	if err != nil {
		return nil, err
	}
	if n > uint64(c.remaining()) {
		return nil, fmt.Errorf("%w: length %d exceeds %d remaining bytes at offset %d",
			ErrMalformedInput, n, c.remaining(), c.off)
	}
	b := c.buf[c.off : c.off+int(n)]
	c.off += int(n)
	return b, nil
}
