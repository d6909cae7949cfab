package speaker

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestStreamRoundTrip(t *testing.T) {
	s := newStream(1024)
	s.write([]float64{0.5, -0.25})

	p := make([]byte, 8)
	n, err := s.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []float32{0.5, -0.25}, decode(p))
	assert.Zero(t, s.buffered())
}

func TestStreamUnderrunIsSilent(t *testing.T) {
	s := newStream(1024)
	s.write([]float64{1})

	p := []byte{9, 9, 9, 9, 9, 9, 9, 9}
	n, err := s.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []float32{1, 0}, decode(p))
}

func TestStreamDropsOldest(t *testing.T) {
	s := newStream(8)
	s.write([]float64{1, 2, 3})

	assert.Equal(t, 8, s.buffered())

	p := make([]byte, 8)
	s.Read(p)
	assert.Equal(t, []float32{2, 3}, decode(p))
}
