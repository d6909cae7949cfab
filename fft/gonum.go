package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds a gonum FFT plan bound to its input and output buffers.
type Plan struct {
	input  []float64
	output []complex128
	fft    *fourier.FFT
}

// NewPlan returns a plan for real input of len(in) samples.
func NewPlan(in []float64, out []complex128) *Plan {
	return &Plan{
		input:  in,
		output: out,
		fft:    fourier.NewFFT(len(in)),
	}
}

// Execute executes the gonum plan.
func (p *Plan) Execute() {
	p.fft.Coefficients(p.output, p.input)
}

// Len is the transform size.
func (p *Plan) Len() int {
	return len(p.input)
}
