package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpread(t *testing.T) {
	bins := []float64{0, 0, 8, 0, 0, 1}
	Spread(bins, 2)

	assert.Equal(t, []float64{2, 4, 8, 4, 2, 1}, bins)
}

func TestSpreadKeepsPeaks(t *testing.T) {
	bins := []float64{1, 1, 1}
	Spread(bins, 1.5)
	assert.Equal(t, []float64{1, 1, 1}, bins)

	// factors below one are treated as one
	bins = []float64{0, 3}
	Spread(bins, 0.5)
	assert.Equal(t, []float64{3, 3}, bins)
}

func BenchmarkSpread(b *testing.B) {
	bins := make([]float64, 256)
	for i := range bins {
		bins[i] = float64(i % 7)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Spread(bins, 1.64)
	}
}
