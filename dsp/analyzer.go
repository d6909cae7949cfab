// Package dsp provides audio analysis
//
// The analyzer follows the behaviour of browser analyser nodes so the
// features it produces line up with what the visuals were tuned against:
// a Blackman window, a real FFT, magnitudes scaled by 1/N and smoothed over
// time, then reported as decibels or as bytes between two decibel limits.
//
// Some notes:
//
// https://webaudio.github.io/web-audio-api/#AnalyserNode
// https://dlbeer.co.nz/articles/fftvis.html
package dsp

import (
	"math"

	"github.com/noriah/constellation/dsp/window"
	"github.com/noriah/constellation/fft"
)

// MinDB is the decibel floor reported for silent bins.
const MinDB = -200.0

type AnalyzerConfig struct {
	SampleSize      int             `toml:"fft_size"`     // number of samples per analysis window
	SmoothingFactor float64         `toml:"smoothing"`    // time constant of the magnitude smoothing [0, 1)
	MinDecibels     float64         `toml:"min_decibels"` // decibel value mapped to byte 0
	MaxDecibels     float64         `toml:"max_decibels"` // decibel value mapped to byte 255
	Windower        window.Function `toml:"-"`            // window applied before the transform
}

// DefaultAnalyzerConfig returns the analyzer settings the visuals were tuned
// with.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		SampleSize:      512,
		SmoothingFactor: 0.6,
		MinDecibels:     -90,
		MaxDecibels:     -10,
		Windower:        window.Blackman(),
	}
}

// Analyzer turns time domain windows into a smoothed magnitude spectrum.
type Analyzer struct {
	cfg AnalyzerConfig

	input    []float64    // windowed copy of the samples
	output   []complex128 // fft coefficients
	smoothed []float64    // smoothed magnitudes, one per bin
	plan     *fft.Plan
}

func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.SampleSize < 4 {
		cfg.SampleSize = 4
	}

	if cfg.SmoothingFactor < 0 || cfg.SmoothingFactor >= 1 {
		cfg.SmoothingFactor = 0
	}

	if cfg.MaxDecibels <= cfg.MinDecibels {
		cfg.MinDecibels, cfg.MaxDecibels = -100, -30
	}

	if cfg.Windower == nil {
		cfg.Windower = window.Rectangle()
	}

	az := &Analyzer{
		cfg:      cfg,
		input:    make([]float64, cfg.SampleSize),
		output:   make([]complex128, fft.BinCount(cfg.SampleSize)),
		smoothed: make([]float64, cfg.SampleSize/2),
	}

	fft.InitPlan(&az.plan, az.input, az.output)

	return az
}

// BinCount returns the number of frequency bins reported.
func (az *Analyzer) BinCount() int {
	return len(az.smoothed)
}

// SampleSize returns the analysis window length.
func (az *Analyzer) SampleSize() int {
	return az.cfg.SampleSize
}

// Process runs one analysis pass over the most recent SampleSize values of
// samples. Shorter input is zero padded at the front.
func (az *Analyzer) Process(samples []float64) {
	size := len(az.input)

	if len(samples) >= size {
		copy(az.input, samples[len(samples)-size:])
	} else {
		pad := size - len(samples)
		for i := 0; i < pad; i++ {
			az.input[i] = 0
		}
		copy(az.input[pad:], samples)
	}

	az.cfg.Windower(az.input)
	az.plan.Execute()

	tau := az.cfg.SmoothingFactor
	scale := 1.0 / float64(size)

	for idx := range az.smoothed {
		mag := math.Hypot(real(az.output[idx]), imag(az.output[idx])) * scale
		v := tau*az.smoothed[idx] + (1.0-tau)*mag

		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}

		az.smoothed[idx] = v
	}
}

// Decibels writes the smoothed spectrum in decibels into dst, growing it if
// needed, and returns it.
func (az *Analyzer) Decibels(dst []float64) []float64 {
	dst = resize(dst, len(az.smoothed))

	for idx, v := range az.smoothed {
		dst[idx] = toDecibels(v)
	}

	return dst
}

// Bytes writes the smoothed spectrum scaled between MinDecibels and
// MaxDecibels into dst as values from 0 to 255.
func (az *Analyzer) Bytes(dst []uint8) []uint8 {
	if cap(dst) < len(az.smoothed) {
		dst = make([]uint8, len(az.smoothed))
	}
	dst = dst[:len(az.smoothed)]

	scale := 255.0 / (az.cfg.MaxDecibels - az.cfg.MinDecibels)

	for idx, v := range az.smoothed {
		b := scale * (toDecibels(v) - az.cfg.MinDecibels)

		switch {
		case b < 0:
			b = 0
		case b > 255:
			b = 255
		}

		dst[idx] = uint8(b)
	}

	return dst
}

// Reset clears the smoothing memory.
func (az *Analyzer) Reset() {
	for idx := range az.smoothed {
		az.smoothed[idx] = 0
	}
}

func toDecibels(v float64) float64 {
	if v <= 0 {
		return MinDB
	}

	return math.Max(20.0*math.Log10(v), MinDB)
}

func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
