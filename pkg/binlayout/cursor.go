// Package binlayout provides the bounded-cursor binary I/O primitives shared
// by every wire-format codec in the toolchain: little-endian integers and
// floats, length-prefixed strings in three encodings, and 4-byte alignment
// padding. Every read is fallible; an over-read yields gdreerrors.ErrTruncated
// decorated with the attempted offset, matching the teacher's BaseOperation
// style of wrapping stdlib primitives behind a small explicit API rather than
// panicking on malformed input.
package binlayout

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// Cursor is a bounded, seekable reader over an in-memory byte slice. Package
// entries and resource bodies are small enough (a few MiB at most) that
// buffering the whole entry and cursoring over it is simpler and safer than
// threading io.ReaderAt offsets through every decoder, matching the
// teacher's approach of reading slot data fully before decoding it
// (format_2025/reader_slots.go).
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data for sequential, fallible reads starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Seek moves the cursor to an absolute offset within the buffer.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.data) {
		return fmt.Errorf("%w: seek to %d (len %d)", gdreerrors.ErrTruncated, offset, len(c.data))
	}
	c.pos = offset
	return nil
}

// SeekRelative moves the cursor by a signed delta from the current position.
func (c *Cursor) SeekRelative(delta int) error {
	return c.Seek(c.pos + delta)
}

// Bytes returns an exact n-byte slice advancing the cursor, or
// gdreerrors.ErrTruncated if fewer than n bytes remain. The returned slice
// aliases the underlying buffer; callers that retain it beyond the next
// mutation must copy.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d", gdreerrors.ErrTruncated, n, c.pos, c.Remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads a single byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I32 reads a little-endian int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// I64 reads a little-endian int64.
func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// F32 reads an IEEE-754 single-precision float.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// F64 reads an IEEE-754 double-precision float.
func (c *Cursor) F64() (float64, error) {
	v, err := c.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// AlignTo4 advances the cursor to the next 4-byte boundary, matching the
// container's length-prefixed-string padding rule.
func (c *Cursor) AlignTo4() error {
	rem := c.pos % 4
	if rem == 0 {
		return nil
	}
	return c.Seek(c.pos + (4 - rem))
}

// Writer accumulates bytes for a wire-format encoder. Unlike Cursor it never
// fails: growth is unbounded, mirroring bytes.Buffer, but exposes the same
// little-endian vocabulary as Cursor so encoders read symmetrically with
// their decoders.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

// WriteU16 appends a little-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteI32 appends a little-endian int32.
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

// WriteI64 appends a little-endian int64.
func (w *Writer) WriteI64(v int64) { w.WriteU64(uint64(v)) }

// WriteF32 appends an IEEE-754 single-precision float.
func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

// WriteF64 appends an IEEE-754 double-precision float.
func (w *Writer) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }

// PadTo4 pads the buffer with zero bytes to the next 4-byte boundary.
func (w *Writer) PadTo4() {
	rem := len(w.buf) % 4
	if rem == 0 {
		return
	}
	w.buf = append(w.buf, make([]byte, 4-rem)...)
}
