// Package render defines the frame a sink receives every tick: flat float32
// buffers ready for upload and typed uniform blocks.
package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

type PointUniforms struct {
	Time float32
}

type LineUniforms struct {
	Time float32
	// Amplitude is the boosted level the line colour ramp reads.
	Amplitude      float32
	Color          colorful.Color
	MaxDistance    float32
	CameraPosition r3.Vec
}

type SwarmUniforms struct {
	Time float32
}

// Frame is rebuilt in place every tick. Sinks must not retain its slices
// past Write.
type Frame struct {
	Tick      uint64
	Time      float64 // seconds since start
	Amplitude float64 // smoothed amplitude
	Shape     string
	Bins      []float64 // normalized spectrum

	Points      []float32 // xyz per cloud point
	Frequencies []float32 // one bin level per cloud point
	Lines       []float32 // xyz xyz per neighbour edge

	Swarm       []float32 // xyz per swarm particle
	SwarmColors []float32 // rgb per swarm particle
	SwarmSizes  []float32

	Point PointUniforms
	Line  LineUniforms
	Field SwarmUniforms
}

// PointCount is the number of cloud points in the frame.
func (f *Frame) PointCount() int { return len(f.Points) / 3 }

// LineCount is the number of line segments in the frame.
func (f *Frame) LineCount() int { return len(f.Lines) / 6 }

// ParticleCount is the number of swarm particles in the frame.
func (f *Frame) ParticleCount() int { return len(f.SwarmSizes) }

// PackVecs flattens src into dst as xyz triples, growing dst as needed.
func PackVecs(dst []float32, src []r3.Vec) []float32 {
	dst = Grow(dst, len(src)*3)
	for idx, v := range src {
		dst[idx*3+0] = float32(v.X)
		dst[idx*3+1] = float32(v.Y)
		dst[idx*3+2] = float32(v.Z)
	}
	return dst
}

// Grow returns buf resliced to n, reallocating only when it is too small.
func Grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

var (
	lowColor  = colorful.Color{R: 0.0, G: 1.0, B: 0.4}
	midColor  = colorful.Color{R: 0.0, G: 0.8, B: 1.0}
	highColor = colorful.Color{R: 1.0, G: 0.0, B: 0.8}
	peakColor = colorful.Color{R: 1.0, G: 1.0, B: 1.0}
)

// AmplitudeColor maps a level to the line colour ramp: green, cyan, pink,
// then white. amp is clamped to [0, 1].
func AmplitudeColor(amp float64) colorful.Color {
	switch {
	case math.IsNaN(amp) || amp < 0:
		amp = 0
	case amp > 1:
		amp = 1
	}

	switch {
	case amp < 0.33:
		return lowColor.BlendRgb(midColor, amp/0.33)
	case amp < 0.66:
		return midColor.BlendRgb(highColor, (amp-0.33)/0.33)
	default:
		return highColor.BlendRgb(peakColor, (amp-0.66)/0.34)
	}
}

// PointColor is the cloud point tint for a point at distance dist from the
// origin at time t.
func PointColor(dist, t float64) colorful.Color {
	return colorful.Color{R: 0.2 + 0.1*math.Sin(dist*0.1+t), G: 0.2, B: 0.3}
}

// Attenuation fades a line by its distance from the camera.
func Attenuation(dist, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 1
	}
	return 1 - math.Max(0, math.Min(dist/maxDistance, 1))
}
