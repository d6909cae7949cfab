package dsp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ones(n int) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = 1
	}
	return buf
}

func TestGainRamp(t *testing.T) {
	g := NewGain(0)
	g.RampTo(1, 100)
	assert.True(t, g.Ramping())

	buf := ones(50)
	g.Process(buf)
	assert.InDelta(t, 0.5, g.Value(), 1e-9)
	assert.InDelta(t, 0.01, buf[0], 1e-9)
	assert.InDelta(t, 0.5, buf[49], 1e-9)

	// samples rise monotonically while ramping up.
	for i := 1; i < len(buf); i++ {
		assert.Greater(t, buf[i], buf[i-1])
	}

	g.Process(ones(60))
	assert.Equal(t, 1.0, g.Value())
	assert.False(t, g.Ramping())
}

func TestGainJump(t *testing.T) {
	g := NewGain(1)
	g.RampTo(0, 0)
	assert.Zero(t, g.Value())

	buf := ones(4)
	g.Process(buf)
	assert.Equal(t, []float64{0, 0, 0, 0}, buf)
}

func TestRampSamples(t *testing.T) {
	assert.Equal(t, 2205, RampSamples(50*time.Millisecond, 44100))
	assert.Zero(t, RampSamples(0, 44100))
}
