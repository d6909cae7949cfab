// Package window provides Window Functions for singnal analysis
//
// See https://wikipedia.org/wiki/Window_function
package window

import (
	gwindow "gonum.org/v1/gonum/dsp/window"
)

// Function is a function that will do window things for you
type Function func(buf []float64)

// Rectangle is just do nothing
func Rectangle() Function {
	return func([]float64) {}
}

// Blackman is the window the analyser uses by default. Its coefficients
// (0.42, 0.5, 0.08) match the alpha=0.16 Blackman of browser analysers.
func Blackman() Function {
	return func(buf []float64) {
		gwindow.Blackman(buf)
	}
}

// Hann modifies the buffer to a Hann window
func Hann() Function {
	return func(buf []float64) {
		gwindow.Hann(buf)
	}
}

// Hamming modifies the buffer to a Hamming window
func Hamming() Function {
	return func(buf []float64) {
		gwindow.Hamming(buf)
	}
}

// Lanczos modifies the buffer to a Lanczos window
func Lanczos() Function {
	return func(buf []float64) {
		gwindow.Lanczos(buf)
	}
}

// ByName returns the named window function, or nil if there is none.
func ByName(name string) Function {
	switch name {
	case "rectangle", "none":
		return Rectangle()
	case "blackman":
		return Blackman()
	case "hann":
		return Hann()
	case "hamming":
		return Hamming()
	case "lanczos":
		return Lanczos()
	}

	return nil
}
