package bundle

import (
	"encoding/binary"
	"io"
	"math"
)

// reader is a sticky-error cursor over an in-memory buffer. Unity
// mixes big-endian envelope structures with little-endian object
// payloads, so the byte order is part of the reader.
type reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
	err   error
}

func newReader(data []byte, order binary.ByteOrder) *reader {
	return &reader{data: data, order: order}
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n < 0 || r.pos+n > len(r.data) {
		r.err = io.ErrUnexpectedEOF

		return nil
	}

	out := r.data[r.pos : r.pos+n]
	r.pos += n

	return out
}

func (r *reader) skip(n int) {
	r.bytes(n)
}

// align advances the cursor to the next multiple of n.
func (r *reader) align(n int) {
	if rem := r.pos % n; rem != 0 {
		r.skip(n - rem)
	}
}

func (r *reader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) bool() bool {
	return r.u8() != 0
}

func (r *reader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}

	return r.order.Uint16(b)
}

func (r *reader) i16() int16 {
	return int16(r.u16())
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}

	return r.order.Uint32(b)
}

func (r *reader) i32() int32 {
	return int32(r.u32())
}

func (r *reader) u64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}

	return r.order.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

// cstring reads a null-terminated string.
func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}

	start := r.pos
	for r.pos < len(r.data) {
		if r.data[r.pos] == 0 {
			s := string(r.data[start:r.pos])
			r.pos++

			return s
		}

		r.pos++
	}

	r.err = io.ErrUnexpectedEOF

	return ""
}

// alignedString reads a length-prefixed string padded to 4 bytes, the
// serialization used inside object payloads.
func (r *reader) alignedString() string {
	n := int(r.i32())
	if r.err != nil || n < 0 {
		return ""
	}

	s := string(r.bytes(n))
	r.align(4)

	return s
}
