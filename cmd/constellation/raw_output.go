package main

import (
	"bufio"
	"io"
	"strconv"

	"github.com/noriah/constellation/processor"
	"github.com/noriah/constellation/render"
	"github.com/noriah/constellation/util"
)

// Constants
const (
	// ScalingWindow in seconds
	ScalingWindow = 1.5
	// PeakThreshold is the threshold to not scale if the peak is less.
	PeakThreshold = 0.001
)

// RawOutput prints one line per frame: the tick, the smoothed amplitude and
// binCount spectrum values scaled to roughly [0, 100].
type RawOutput struct {
	w         *bufio.Writer
	binCount  int
	trackZero int
	window    *util.MovingWindow

	cols []float64
	line []byte
}

var _ processor.Output = &RawOutput{}

func NewRawOutput(w io.Writer, binCount, frameRate int) *RawOutput {
	return &RawOutput{
		w:        bufio.NewWriter(w),
		binCount: binCount,
		window:   util.NewMovingWindow(int(ScalingWindow*float64(frameRate)) + 1),
		cols:     make([]float64, binCount),
	}
}

// Write prints f.
func (d *RawOutput) Write(f *render.Frame) error {
	peak := d.columns(f.Bins)

	if peak >= PeakThreshold {
		d.trackZero = 0
		d.window.Update(peak)
	} else if d.trackZero++; d.trackZero == 5 {
		// forget the loud past after a few silent frames
		d.window.Drop(d.window.Len())
	}

	scale := 1.0
	if mean, sd := d.window.Stats(); mean+2*sd > scale {
		scale = mean + 2*sd
	}
	scale = 100.0 / scale

	d.line = strconv.AppendInt(d.line[:0], int64(f.Tick), 10)
	d.line = append(d.line, ' ')
	d.line = strconv.AppendFloat(d.line, f.Amplitude, 'f', 4, 64)

	for _, v := range d.cols {
		d.line = append(d.line, ' ')
		d.line = strconv.AppendFloat(d.line, v*scale, 'f', 2, 64)
	}
	d.line = append(d.line, '\n')

	if _, err := d.w.Write(d.line); err != nil {
		return err
	}

	return d.w.Flush()
}

// columns folds bins into binCount columns by maximum and returns the peak.
func (d *RawOutput) columns(bins []float64) float64 {
	peak := 0.0

	for i := range d.cols {
		d.cols[i] = 0
	}

	if len(bins) == 0 {
		return 0
	}

	for i, v := range bins {
		col := i * d.binCount / len(bins)
		if v > d.cols[col] {
			d.cols[col] = v
		}
		if v > peak {
			peak = v
		}
	}

	return peak
}
