// Package byteio provides the endian-aware scalar and array reads shared by
// the bundle, serializedfile, and typetree packages: fixed-width integers,
// IEEE-754 floats, booleans, null-terminated and length-prefixed strings,
// length-prefixed byte arrays, and power-of-two stream alignment.
//
// All of it sits on top of io.ReadSeeker plus a swappable endian.EndianEngine,
// since a single parse walks data in more than one byte order: bundle
// headers and the block-info directory are always big-endian, while a
// serialized file's own payload picks its endianness from a header byte.
package byteio

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/go-unity/ubundle/endian"
	"github.com/go-unity/ubundle/errs"
)

// Reader wraps an io.ReadSeeker with an endian.EndianEngine that callers can
// swap mid-stream (the bundle layer reads its own header big-endian, then
// hands the same underlying stream to a serialized file that picks its own
// order).
type Reader struct {
	r     io.ReadSeeker
	order endian.EndianEngine
	tmp   [8]byte
}

// New wraps r for reading with the given byte order.
func New(r io.ReadSeeker, order endian.EndianEngine) *Reader {
	return &Reader{r: r, order: order}
}

// SetOrder swaps the byte order used by subsequent multi-byte reads.
func (rd *Reader) SetOrder(order endian.EndianEngine) {
	rd.order = order
}

// Order returns the byte order currently in effect.
func (rd *Reader) Order() endian.EndianEngine {
	return rd.order
}

// Pos returns the current stream offset.
func (rd *Reader) Pos() (int64, error) {
	return rd.r.Seek(0, io.SeekCurrent)
}

// Seek repositions the underlying stream.
func (rd *Reader) Seek(offset int64, whence int) (int64, error) {
	return rd.r.Seek(offset, whence)
}

// ReadFull reads exactly len(buf) bytes or returns an error; a short read is
// always an error, never a partial result.
func (rd *Reader) ReadFull(buf []byte) error {
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return nil
}

// Bytes reads and returns exactly n bytes.
func (rd *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := rd.ReadFull(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// U8 reads one unsigned byte.
func (rd *Reader) U8() (uint8, error) {
	if err := rd.ReadFull(rd.tmp[:1]); err != nil {
		return 0, err
	}

	return rd.tmp[0], nil
}

// I8 reads one signed byte.
func (rd *Reader) I8() (int8, error) {
	b, err := rd.U8()
	return int8(b), err
}

// Bool reads one byte; any non-zero value is true.
func (rd *Reader) Bool() (bool, error) {
	b, err := rd.U8()
	return b != 0, err
}

// U16 reads a 16-bit unsigned integer.
func (rd *Reader) U16() (uint16, error) {
	if err := rd.ReadFull(rd.tmp[:2]); err != nil {
		return 0, err
	}

	return rd.order.Uint16(rd.tmp[:2]), nil
}

// I16 reads a 16-bit signed integer.
func (rd *Reader) I16() (int16, error) {
	v, err := rd.U16()
	return int16(v), err
}

// U32 reads a 32-bit unsigned integer.
func (rd *Reader) U32() (uint32, error) {
	if err := rd.ReadFull(rd.tmp[:4]); err != nil {
		return 0, err
	}

	return rd.order.Uint32(rd.tmp[:4]), nil
}

// I32 reads a 32-bit signed integer.
func (rd *Reader) I32() (int32, error) {
	v, err := rd.U32()
	return int32(v), err
}

// U64 reads a 64-bit unsigned integer.
func (rd *Reader) U64() (uint64, error) {
	if err := rd.ReadFull(rd.tmp[:8]); err != nil {
		return 0, err
	}

	return rd.order.Uint64(rd.tmp[:8]), nil
}

// I64 reads a 64-bit signed integer.
func (rd *Reader) I64() (int64, error) {
	v, err := rd.U64()
	return int64(v), err
}

// U128 reads 16 raw bytes (a hash, GUID, or legacy header field). The value
// never participates in arithmetic, so it is kept as raw bytes rather than a
// synthesized 128-bit integer type.
func (rd *Reader) U128() ([16]byte, error) {
	var out [16]byte
	err := rd.ReadFull(out[:])

	return out, err
}

// F32 reads an IEEE-754 single-precision float.
func (rd *Reader) F32() (float32, error) {
	v, err := rd.U32()
	return math.Float32frombits(v), err
}

// F64 reads an IEEE-754 double-precision float.
func (rd *Reader) F64() (float64, error) {
	v, err := rd.U64()
	return math.Float64frombits(v), err
}

// CString reads bytes until the first 0x00 and validates them as UTF-8.
func (rd *Reader) CString() (string, error) {
	var buf []byte
	for {
		b, err := rd.U8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}

	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: invalid UTF-8 in null-terminated string", errs.ErrInvalidValue)
	}

	return string(buf), nil
}

// ArrayLen reads a 32-bit length prefix.
func (rd *Reader) ArrayLen() (int, error) {
	n, err := rd.U32()
	return int(n), err
}

// String reads a length-prefixed UTF-8 string: a 32-bit length followed by
// that many bytes.
func (rd *Reader) String() (string, error) {
	n, err := rd.ArrayLen()
	if err != nil {
		return "", err
	}

	buf, err := rd.Bytes(n)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: invalid UTF-8 in length-prefixed string", errs.ErrInvalidValue)
	}

	return string(buf), nil
}

// ByteArray reads a length-prefixed raw byte array: a 32-bit length followed
// by that many bytes.
func (rd *Reader) ByteArray() ([]byte, error) {
	n, err := rd.ArrayLen()
	if err != nil {
		return nil, err
	}

	return rd.Bytes(n)
}

// I32Array reads a 32-bit length prefix followed by that many i32 elements.
func (rd *Reader) I32Array() ([]int32, error) {
	n, err := rd.ArrayLen()
	if err != nil {
		return nil, err
	}

	out := make([]int32, n)
	for i := range out {
		v, err := rd.I32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// Align advances the stream to the next n-aligned position, where n is a
// power of two. A position already aligned is left untouched.
func (rd *Reader) Align(n int64) error {
	pos, err := rd.Pos()
	if err != nil {
		return err
	}

	newPos := (pos + n - 1) &^ (n - 1)
	if newPos == pos {
		return nil
	}

	_, err = rd.Seek(newPos, io.SeekStart)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return nil
}
