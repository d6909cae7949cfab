// Package shape generates the home positions of the point cloud.
package shape

import (
	"math"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownShape is returned for a shape name or kind that does not exist.
var ErrUnknownShape = errors.New("unknown shape")

// Kind names a shape.
type Kind int

const (
	Heart Kind = iota
	Smiley
	Saturn
)

var kindNames = [...]string{
	Heart:  "heart",
	Smiley: "smiley",
	Saturn: "saturn",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is a known shape.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// Kinds lists every shape.
func Kinds() []Kind {
	return []Kind{Heart, Smiley, Saturn}
}

// ParseKind maps a name to its kind, ignoring case.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(k), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownShape, "%q", name)
}

// Options tune generation.
type Options struct {
	// Scale multiplies every coordinate. Zero means 1.
	Scale float64
	// Depth jitters z uniformly in [-Depth/2, Depth/2]. Zero keeps the
	// flat shapes in the XY plane.
	Depth float64
}

// Generate returns n points of the given shape. Every random draw comes
// from rng.
func Generate(kind Kind, n int, rng *rand.Rand, opts Options) ([]r3.Vec, error) {
	if !kind.Valid() {
		return nil, errors.Wrapf(ErrUnknownShape, "kind %d", int(kind))
	}

	if n <= 0 {
		return []r3.Vec{}, nil
	}

	points := make([]r3.Vec, 0, n)

	switch kind {
	case Heart:
		points = heart(points, n, rng, opts.Depth)
	case Smiley:
		points = smiley(points, n, rng, opts.Depth)
	case Saturn:
		points = saturn(points, n, rng)
	}

	if opts.Scale != 0 && opts.Scale != 1 {
		for idx := range points {
			points[idx] = r3.Scale(opts.Scale, points[idx])
		}
	}

	return points, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func jitter(rng *rand.Rand, depth float64) float64 {
	if depth == 0 {
		return 0
	}
	return uniform(rng, -depth/2, depth/2)
}

// heart samples the parametric heart curve, filled by a radial factor.
func heart(dst []r3.Vec, n int, rng *rand.Rand, depth float64) []r3.Vec {
	for i := 0; i < n; i++ {
		t := uniform(rng, -math.Pi, math.Pi)
		s := rng.Float64()

		sin := math.Sin(t)
		x := 16 * sin * sin * sin
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)

		dst = append(dst, r3.Vec{
			X: x * s * 0.2,
			Y: y * s * 0.2,
			Z: jitter(rng, depth),
		})
	}
	return dst
}

// smiley is a face outline, two eyes and a mouth arc. Region shares are
// floored; the remainder goes to the outline.
func smiley(dst []r3.Vec, n int, rng *rand.Rand, depth float64) []r3.Vec {
	eye := n / 10
	mouth := n * 3 / 10
	face := n - 2*eye - mouth

	for i := 0; i < face; i++ {
		theta := uniform(rng, 0, 2*math.Pi)
		dst = append(dst, r3.Vec{
			X: 5 * math.Cos(theta),
			Y: 5 * math.Sin(theta),
			Z: jitter(rng, depth),
		})
	}

	for _, side := range [2]float64{-1, 1} {
		for i := 0; i < eye; i++ {
			x := uniform(rng, 1, 2)
			dst = append(dst, r3.Vec{
				X: side * x,
				Y: uniform(rng, 1, 2),
				Z: jitter(rng, depth),
			})
		}
	}

	for i := 0; i < mouth; i++ {
		theta := uniform(rng, 0.1*math.Pi, 0.9*math.Pi)
		dst = append(dst, r3.Vec{
			X: 3 * math.Cos(theta),
			Y: -3*math.Sin(theta) - 1,
			Z: jitter(rng, depth),
		})
	}

	return dst
}

// saturn is a sphere of radius 3 and a flat ring in the XZ plane. An odd
// point goes to the ring.
func saturn(dst []r3.Vec, n int, rng *rand.Rand) []r3.Vec {
	sphere := n / 2
	ring := n - sphere

	for i := 0; i < sphere; i++ {
		phi := math.Acos(uniform(rng, -1, 1))
		theta := uniform(rng, 0, 2*math.Pi)
		dst = append(dst, r3.Vec{
			X: 3 * math.Sin(phi) * math.Cos(theta),
			Y: 3 * math.Sin(phi) * math.Sin(theta),
			Z: 3 * math.Cos(phi),
		})
	}

	for i := 0; i < ring; i++ {
		r := uniform(rng, 5, 7)
		theta := uniform(rng, 0, 2*math.Pi)
		dst = append(dst, r3.Vec{
			X: r * math.Cos(theta),
			Z: r * math.Sin(theta),
		})
	}

	return dst
}
