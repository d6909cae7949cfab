package dsp

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Frame is the per-tick audio feature snapshot.
type Frame struct {
	Amplitude float64   // overall level in [0, 1]
	Bins      []float64 // normalized per-bin levels in [0, 1]
}

// Reset zeroes the frame in place.
func (f *Frame) Reset() {
	f.Amplitude = 0
	for idx := range f.Bins {
		f.Bins[idx] = 0
	}
}

// FeatureConfig holds the perceptual compression constants. They are
// tuning values, not invariants.
type FeatureConfig struct {
	AmplitudeExponent float64 `toml:"amplitude_exponent"` // power applied to the mean byte level
	AmplitudeGain     float64 `toml:"amplitude_gain"`     // multiplier applied after the power
	DecibelOffset     float64 `toml:"decibel_offset"`     // bins are (dB + offset) / offset
}

func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		AmplitudeExponent: 1.5,
		AmplitudeGain:     2.0,
		DecibelOffset:     140.0,
	}
}

// Features derives a Frame from an analyzer. Amplitude comes from the byte
// spectrum and the bin vector from the decibel spectrum; the two passes are
// kept separate so the output matches the tuned visuals.
type Features struct {
	cfg FeatureConfig

	bytes  []uint8
	levels []float64
	dbs    []float64
}

func NewFeatures(cfg FeatureConfig) *Features {
	if cfg.DecibelOffset <= 0 {
		cfg.DecibelOffset = DefaultFeatureConfig().DecibelOffset
	}

	return &Features{cfg: cfg}
}

// Extract fills dst from the analyzer's current spectrum.
func (fs *Features) Extract(az *Analyzer, dst *Frame) {
	fs.bytes = az.Bytes(fs.bytes)
	fs.levels = resize(fs.levels, len(fs.bytes))

	for idx, b := range fs.bytes {
		fs.levels[idx] = float64(b) / 255.0
	}

	normalized := 0.0
	if len(fs.levels) > 0 {
		normalized = stat.Mean(fs.levels, nil)
	}

	dst.Amplitude = CompressAmplitude(
		normalized, fs.cfg.AmplitudeExponent, fs.cfg.AmplitudeGain)

	fs.dbs = az.Decibels(fs.dbs)
	dst.Bins = resize(dst.Bins, len(fs.dbs))

	for idx, db := range fs.dbs {
		dst.Bins[idx] = NormalizeDecibels(db, fs.cfg.DecibelOffset)
	}
}

// CompressAmplitude applies min(pow(x, exponent) * gain, 1).
func CompressAmplitude(x, exponent, gain float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}

	return clamp01(math.Pow(x, exponent) * gain)
}

// NormalizeDecibels maps a decibel value to [0, 1] as (dB + offset) / offset.
func NormalizeDecibels(db, offset float64) float64 {
	return clamp01((db + offset) / offset)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
