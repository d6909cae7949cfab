package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(size, bin int, amp float64) []float64 {
	buf := make([]float64, size)
	for i := range buf {
		buf[i] = amp * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(size))
	}
	return buf
}

func TestAnalyzerSilence(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	az.Process(make([]float64, 512))

	for _, b := range az.Bytes(nil) {
		assert.Zero(t, b)
	}

	for _, db := range az.Decibels(nil) {
		assert.Equal(t, MinDB, db)
	}
}

func TestAnalyzerTonePeak(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	require.Equal(t, 256, az.BinCount())

	samples := tone(512, 32, 1.0)
	for i := 0; i < 60; i++ {
		az.Process(samples)
	}

	dbs := az.Decibels(nil)

	peak := 0
	for idx := range dbs {
		if dbs[idx] > dbs[peak] {
			peak = idx
		}
	}

	assert.Equal(t, 32, peak)
	// blackman coherent gain is 0.42, a unit sine splits into two halves.
	assert.InDelta(t, 20*math.Log10(0.21), dbs[32], 0.5)

	// -13.6 dB sits near the top of the -90..-10 byte range.
	bytes := az.Bytes(nil)
	assert.InDelta(t, 243, int(bytes[32]), 3)
	assert.Zero(t, bytes[128])
}

func TestAnalyzerSmoothingRisesGradually(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	samples := tone(512, 16, 1.0)

	az.Process(samples)
	first := az.Decibels(nil)[16]

	az.Process(samples)
	second := az.Decibels(nil)[16]

	assert.Greater(t, second, first)

	// (1 - 0.6) of the full magnitude after one pass.
	assert.InDelta(t, 20*math.Log10(0.4*0.21), first, 0.5)
}

func TestAnalyzerShortInputIsPadded(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	assert.NotPanics(t, func() { az.Process(tone(100, 4, 1)) })
	assert.NotPanics(t, func() { az.Process(nil) })
}

func TestFeaturesExtract(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	fs := NewFeatures(DefaultFeatureConfig())

	var frame Frame

	az.Process(make([]float64, 512))
	fs.Extract(az, &frame)
	assert.Zero(t, frame.Amplitude)
	require.Len(t, frame.Bins, 256)
	for _, b := range frame.Bins {
		assert.Zero(t, b)
	}

	samples := tone(512, 32, 1.0)
	for i := 0; i < 60; i++ {
		az.Process(samples)
	}
	fs.Extract(az, &frame)

	assert.Greater(t, frame.Amplitude, 0.0)
	assert.LessOrEqual(t, frame.Amplitude, 1.0)
	assert.InDelta(t, (20*math.Log10(0.21)+140)/140, frame.Bins[32], 0.01)

	for _, b := range frame.Bins {
		assert.GreaterOrEqual(t, b, 0.0)
		assert.LessOrEqual(t, b, 1.0)
	}
}

func TestCompressAmplitude(t *testing.T) {
	assert.Zero(t, CompressAmplitude(0, 1.5, 2))
	assert.Zero(t, CompressAmplitude(math.NaN(), 1.5, 2))
	assert.InDelta(t, math.Pow(0.5, 1.5)*2, CompressAmplitude(0.5, 1.5, 2), 1e-12)
	assert.Equal(t, 1.0, CompressAmplitude(1, 1.5, 2))
}

func TestNormalizeDecibels(t *testing.T) {
	assert.Zero(t, NormalizeDecibels(MinDB, 140))
	assert.InDelta(t, 0.5, NormalizeDecibels(-70, 140), 1e-12)
	assert.Equal(t, 1.0, NormalizeDecibels(6, 140))
}

func BenchmarkAnalyzer(b *testing.B) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	fs := NewFeatures(DefaultFeatureConfig())
	samples := tone(512, 32, 0.5)

	var frame Frame

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		az.Process(samples)
		fs.Extract(az, &frame)
	}
}
