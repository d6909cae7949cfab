// Package pcm decodes interleaved little-endian floating point frames into
// per-channel sample buffers.
package pcm

import (
	"encoding/binary"
	"math"

	"github.com/noriah/constellation/input"
)

// Reader walks a raw byte buffer of float32 or float64 values.
type Reader struct {
	order binary.ByteOrder
	buf   []byte
	f64   bool
}

// NewReader returns a little-endian reader. f64 selects 64-bit values.
func NewReader(f64 bool) *Reader {
	return &Reader{
		order: binary.LittleEndian,
		f64:   f64,
	}
}

// Width is the number of bytes per value.
func (r *Reader) Width() int {
	if r.f64 {
		return 8
	}
	return 4
}

// Reset points the reader at b.
func (r *Reader) Reset(b []byte) {
	r.buf = b
}

// Next decodes the next value.
func (r *Reader) Next() float64 {
	if r.f64 {
		b := r.buf[:8]
		r.buf = r.buf[8:]
		return math.Float64frombits(r.order.Uint64(b))
	}

	b := r.buf[:4]
	r.buf = r.buf[4:]
	return float64(math.Float32frombits(r.order.Uint32(b)))
}

// Deinterleave decodes raw interleaved frames into dst, one buffer per
// channel. raw must hold len(dst) * len(dst[0]) values.
func (r *Reader) Deinterleave(raw []byte, dst [][]input.Sample) {
	r.Reset(raw)

	framesz := len(dst)
	samples := framesz * len(dst[0])

	for n := 0; n < samples; n++ {
		dst[n%framesz][n/framesz] = r.Next()
	}
}

// Clear zeroes every buffer in dst.
func Clear(dst [][]input.Sample) {
	for _, buf := range dst {
		// Go should optimize this to a memclr.
		for i := range buf {
			buf[i] = 0
		}
	}
}
