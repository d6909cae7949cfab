package dsp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func playing() PlaybackState {
	var ps PlaybackState
	ps.Set(true)
	return ps
}

func TestSmootherSilentForcesZero(t *testing.T) {
	sm := NewSmoother(DefaultSmootherConfig())

	var ps PlaybackState
	for i := 0; i < 10; i++ {
		assert.Zero(t, sm.Smooth(1.0, ps))
	}
}

func TestSmootherLiveConverges(t *testing.T) {
	sm := NewSmoother(DefaultSmootherConfig())
	ps := playing()

	first := sm.Smooth(0.8, ps)
	assert.InDelta(t, 0.08, first, 1e-12)

	var v float64
	for i := 0; i < 300; i++ {
		v = sm.Smooth(0.8, ps)
	}
	assert.InDelta(t, 0.8, v, 1e-6)
}

func TestSmootherBounds(t *testing.T) {
	sm := NewSmoother(DefaultSmootherConfig())
	rng := rand.New(rand.NewSource(7))

	var ps PlaybackState
	inputs := []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3, 5}

	for i := 0; i < 2000; i++ {
		if rng.Intn(50) == 0 {
			ps.Set(!ps.Playing)
		}

		raw := rng.Float64()*3 - 1
		if i%97 == 0 {
			raw = inputs[(i/97)%len(inputs)]
		}

		v := sm.Smooth(raw, ps)
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestSmootherFadeIsMonotonic(t *testing.T) {
	sm := NewSmoother(DefaultSmootherConfig())
	ps := playing()

	for i := 0; i < 200; i++ {
		sm.Smooth(0.9, ps)
	}

	ps.Set(false)
	assert.False(t, ps.Playing)
	assert.Equal(t, Transition{From: true, To: false}, ps.Transition)

	prev := sm.Value()
	reachedZero := false

	for i := 0; i < 500; i++ {
		// raw input is ignored while fading.
		v := sm.Smooth(1.0, ps)

		if reachedZero {
			assert.Zero(t, v)
			continue
		}

		assert.LessOrEqual(t, v, prev)
		if prev > 0 {
			assert.Less(t, v, prev)
		}

		reachedZero = v == 0
		prev = v
	}

	assert.True(t, reachedZero)
}

func TestSmootherFadeFromLaggingValue(t *testing.T) {
	sm := NewSmoother(DefaultSmootherConfig())
	ps := playing()

	// one live tick leaves the smoothed value well under the raw input.
	sm.Smooth(1.0, ps)
	lagging := sm.Value()

	ps.Set(false)
	assert.LessOrEqual(t, sm.Smooth(1.0, ps), lagging)
}

func TestSmootherReset(t *testing.T) {
	sm := NewSmoother(DefaultSmootherConfig())
	ps := playing()
	sm.Smooth(1.0, ps)
	sm.Reset()
	assert.Zero(t, sm.Value())
}
