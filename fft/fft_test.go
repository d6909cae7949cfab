package fft

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFindsTone(t *testing.T) {
	const size = 512
	const bin = 32

	in := make([]float64, size)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * bin * float64(i) / size)
	}

	out := make([]complex128, BinCount(size))

	var plan *Plan
	InitPlan(&plan, in, out)
	require.NotNil(t, plan)
	assert.Equal(t, size, plan.Len())

	plan.Execute()

	peak := 0
	for i := range out {
		if cmplx.Abs(out[i]) > cmplx.Abs(out[peak]) {
			peak = i
		}
	}

	assert.Equal(t, bin, peak)
	assert.InDelta(t, size/2, cmplx.Abs(out[bin]), 1e-6)
}

func Benchmark(b *testing.B) {
	reals := generateReals()
	cmplx := make([]complex128, BinCount(len(reals)))
	fftpl := NewPlan(reals, cmplx)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		fftpl.Execute()
	}
}

// Adapted from https://github.com/project-gemmi/benchmarking-fft/blob/master/1d-r.cpp

const numReals = 512

func generateReals() []float64 {
	input := make([]float64, numReals)

	c := 3.1
	for i := range input {
		c += 0.3
		input[i] = 2*c - c*c
	}

	return input
}
