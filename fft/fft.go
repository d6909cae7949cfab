// Package fft provides generic abstractions around fourier transformers.
package fft

// InitPlan points pointer at a new plan transforming input into output.
// The output slice must hold len(input)/2+1 values.
func InitPlan(pointer **Plan, input []float64, output []complex128) {
	(*pointer) = NewPlan(input, output)
}

// BinCount returns the number of complex coefficients a real transform of
// size n produces.
func BinCount(n int) int {
	return n/2 + 1
}
