package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat"
)

func TestMovingWindow(t *testing.T) {
	mw := NewMovingWindow(4)
	assert.Equal(t, 4, mw.Cap())

	mean, std := mw.Update(2)
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, std)

	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, v := range values[1:] {
		mw.Update(v)
	}

	assert.Equal(t, 4, mw.Len())

	last := values[len(values)-4:]
	wantMean, wantStd := stat.MeanStdDev(last, nil)
	assert.InDelta(t, wantMean, mw.Mean(), 1e-9)
	assert.InDelta(t, wantStd, mw.StdDev(), 1e-9)
}

func TestMovingWindowDrop(t *testing.T) {
	mw := NewMovingWindow(3)
	mw.Update(1)
	mw.Update(2)
	mw.Update(3)

	mean, _ := mw.Drop(1)
	assert.Equal(t, 2, mw.Len())
	assert.InDelta(t, 2.5, mean, 1e-9)

	mean, std := mw.Drop(5)
	assert.Zero(t, mw.Len())
	assert.Zero(t, mean)
	assert.Zero(t, std)

	// refills cleanly after being emptied
	mw.Update(10)
	assert.Equal(t, 10.0, mw.Mean())
}

func BenchmarkMovingWindow(b *testing.B) {
	mw := NewMovingWindow(120)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		mw.Update(float64(i % 17))
	}
}
