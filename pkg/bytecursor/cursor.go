// Package bytecursor is a thin, bounds-checked big-endian reader/writer over
// a byte buffer. It is the one piece of low-level plumbing every layer of
// the legacy message codec builds on: fixed-width integer access, sub-slice
// views, a writable cursor, and in-place patching for fields (CRC,
// MessageSize) that are only known after the rest of a record has been
// written.
package bytecursor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read or patch would run past the end of
// the underlying buffer.
var ErrShortBuffer = errors.New("bytecursor: short buffer")

// Encoding is the byte order used on the wire. Kafka's legacy message format
// is big-endian throughout.
var Encoding = binary.BigEndian

// Cursor wraps a growable byte buffer with a read position and a write
// position. Reads and writes both advance their own cursor independently,
// so a Cursor can be built up by successive Write* calls and then consumed
// from the start by successive Read* calls.
type Cursor struct {
	buf     []byte
	readPos int
}

// New wraps an existing buffer for reading. The buffer is not copied.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// NewWriter returns an empty Cursor ready to be appended to, optionally
// pre-sized to avoid early reallocation.
func NewWriter(capacityHint int) *Cursor {
	return &Cursor{buf: make([]byte, 0, capacityHint)}
}

// Bytes returns the underlying buffer. Callers must not mutate the slice's
// length; use Patch* to mutate already-written bytes in place.
func (c *Cursor) Bytes() []byte { return c.buf }

// Len returns the number of bytes currently held.
func (c *Cursor) Len() int { return len(c.buf) }

// Pos returns the current write position (== Len, since writes always
// append).
func (c *Cursor) Pos() int { return len(c.buf) }

// Truncate shrinks the buffer to n bytes. It is used to rewind a failed
// Append before returning an error, so the builder never leaves a partial
// write behind.
func (c *Cursor) Truncate(n int) {
	if n < 0 || n > len(c.buf) {
		panic(fmt.Sprintf("bytecursor: truncate(%d) out of range [0,%d]", n, len(c.buf)))
	}
	c.buf = c.buf[:n]
}

// --- writes (always append) ---

func (c *Cursor) WriteInt8(v int8) { c.buf = append(c.buf, byte(v)) }

func (c *Cursor) WriteInt32(v int32) {
	var b [4]byte
	Encoding.PutUint32(b[:], uint32(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) WriteUint32(v uint32) {
	var b [4]byte
	Encoding.PutUint32(b[:], v)
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) WriteInt64(v int64) {
	var b [8]byte
	Encoding.PutUint64(b[:], uint64(v))
	c.buf = append(c.buf, b[:]...)
}

// WriteBytes appends raw bytes with no length prefix.
func (c *Cursor) WriteBytes(p []byte) { c.buf = append(c.buf, p...) }

// --- in-place patches, for fields finalized after the fact (CRC, size) ---

func (c *Cursor) PatchUint32(offset int, v uint32) error {
	if offset < 0 || offset+4 > len(c.buf) {
		return fmt.Errorf("%w: patch uint32 at %d", ErrShortBuffer, offset)
	}
	Encoding.PutUint32(c.buf[offset:offset+4], v)
	return nil
}

// --- bounds-checked reads ---

func (c *Cursor) remaining() int { return len(c.buf) - c.readPos }

func (c *Cursor) need(n int) error {
	if c.remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, c.remaining())
	}
	return nil
}

func (c *Cursor) ReadInt8() (int8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := int8(c.buf[c.readPos])
	c.readPos++
	return v, nil
}

func (c *Cursor) ReadInt32() (int32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := int32(Encoding.Uint32(c.buf[c.readPos : c.readPos+4]))
	c.readPos += 4
	return v, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := Encoding.Uint32(c.buf[c.readPos : c.readPos+4])
	c.readPos += 4
	return v, nil
}

func (c *Cursor) ReadInt64() (int64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := int64(Encoding.Uint64(c.buf[c.readPos : c.readPos+8]))
	c.readPos += 8
	return v, nil
}

// ReadSlice returns a view (not a copy) of the next n bytes and advances the
// read cursor past them.
func (c *Cursor) ReadSlice(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrShortBuffer, n)
	}
	if err := c.need(n); err != nil {
		return nil, err
	}
	s := c.buf[c.readPos : c.readPos+n]
	c.readPos += n
	return s, nil
}

// ReadPos returns the current read offset, and View returns the sub-slice
// between two read offsets without disturbing the cursor. Both are used to
// carve out the "covered region" a CRC is computed over.
func (c *Cursor) ReadPos() int { return c.readPos }

func (c *Cursor) View(start, end int) ([]byte, error) {
	if start < 0 || end > len(c.buf) || start > end {
		return nil, fmt.Errorf("%w: view [%d:%d] of %d", ErrShortBuffer, start, end, len(c.buf))
	}
	return c.buf[start:end], nil
}
