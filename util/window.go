// Package util holds small helpers shared by the pipeline and the command.
package util

import "math"

// MovingWindow keeps the last Cap values pushed into it and their running
// mean and sample standard deviation.
//
// Values live in a ring; head is the oldest value once the ring is full.
type MovingWindow struct {
	ring   []float64
	head   int
	length int

	sum   float64
	sumSq float64

	average float64
	stddev  float64
}

// NewMovingWindow returns a new moving window.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{ring: make([]float64, size)}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.length < 1 {
		mw.average, mw.stddev = 0, 0
		return 0, 0
	}

	n := float64(mw.length)
	mw.average = mw.sum / n

	if mw.length > 1 {
		variance := (mw.sumSq - n*mw.average*mw.average) / (n - 1)
		// rounding can take the running sums slightly negative
		mw.stddev = math.Sqrt(math.Max(variance, 0))
	} else {
		mw.stddev = 0
	}

	return mw.average, mw.stddev
}

// Update pushes value, evicting the oldest value when the window is full.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	if mw.length < len(mw.ring) {
		mw.ring[(mw.head+mw.length)%len(mw.ring)] = value
		mw.length++
	} else {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old

		mw.ring[mw.head] = value
		mw.head = (mw.head + 1) % len(mw.ring)
	}

	mw.sum += value
	mw.sumSq += value * value

	return mw.calcFinal()
}

// Drop removes the count oldest values from the window.
func (mw *MovingWindow) Drop(count int) (float64, float64) {
	for ; count > 0 && mw.length > 0; count-- {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old

		mw.head = (mw.head + 1) % len(mw.ring)
		mw.length--
	}

	// clear the sums so rounding does not build up across refills
	if mw.length == 0 {
		mw.head, mw.sum, mw.sumSq = 0, 0, 0
	}

	return mw.calcFinal()
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns max size of window
func (mw *MovingWindow) Cap() int {
	return len(mw.ring)
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}

// StdDev is the moving window sample standard deviation
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the statistics of this window
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.average, mw.stddev
}
