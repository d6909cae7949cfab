package dsp

import "time"

// Gain is a gain stage whose changes are linear ramps, so level changes on
// play, pause and track edges never click.
type Gain struct {
	value     float64
	target    float64
	step      float64
	remaining int
}

func NewGain(initial float64) *Gain {
	return &Gain{value: initial, target: initial}
}

// RampSamples converts a ramp duration into a sample count.
func RampSamples(d time.Duration, sampleRate float64) int {
	return int(d.Seconds() * sampleRate)
}

// RampTo starts a linear ramp from the current value to target over the
// given number of samples. A non-positive count jumps immediately.
func (g *Gain) RampTo(target float64, samples int) {
	g.target = target

	if samples <= 0 {
		g.value = target
		g.step = 0
		g.remaining = 0
		return
	}

	g.step = (target - g.value) / float64(samples)
	g.remaining = samples
}

// Process applies the gain to buf in place, advancing the ramp one step per
// sample.
func (g *Gain) Process(buf []float64) {
	for idx := range buf {
		if g.remaining > 0 {
			g.value += g.step
			if g.remaining--; g.remaining == 0 {
				g.value = g.target
			}
		}

		buf[idx] *= g.value
	}
}

// Value is the current gain.
func (g *Gain) Value() float64 {
	return g.value
}

// Target is the value the gain is ramping toward.
func (g *Gain) Target() float64 {
	return g.target
}

// Ramping reports whether a ramp is still in progress.
func (g *Gain) Ramping() bool {
	return g.remaining > 0
}
