// Package cloud animates the point-cloud shape: every tick each point is
// pushed toward a scattered or pulsed target around its home position and
// eased toward it, and the neighbour lines follow the points.
package cloud

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/noriah/constellation/neighbor"
	"github.com/noriah/constellation/shape"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the animation constants.
type Config struct {
	InterpolationSpeed float64 `toml:"interpolation_speed"`
	DisplacementScale  float64 `toml:"displacement_scale"`
	Exponent           float64 `toml:"exponent"`
	ScatterProbability float64 `toml:"scatter_probability"`
	ScatterScale       float64 `toml:"scatter_scale"`
	PulseFrequency     float64 `toml:"pulse_frequency"`
	PulseDepth         float64 `toml:"pulse_depth"`

	K          int        `toml:"neighbours"`
	PointCount int        `toml:"points"`
	Scale      float64    `toml:"scale"`
	Depth      float64    `toml:"depth"`
	Shape      shape.Kind `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		InterpolationSpeed: 0.15,
		DisplacementScale:  1.0,
		Exponent:           1.5,
		ScatterProbability: 0.3,
		ScatterScale:       0.2,
		PulseFrequency:     2.0,
		PulseDepth:         0.2,
		K:                  6,
		PointCount:         500,
		Scale:              5,
		Shape:              shape.Saturn,
	}
}

// Animator owns the home, current and target positions of the cloud and its
// neighbour graph. It is not safe for concurrent use.
type Animator struct {
	cfg     Config
	rng     *rand.Rand
	indexer neighbor.Indexer

	kind    shape.Kind
	home    []r3.Vec
	current []r3.Vec
	target  []r3.Vec

	graph *neighbor.Graph
	lines []float32

	binIdx []int
	freqs  []float32
}

// New builds an animator showing cfg.Shape. A nil indexer uses the k-d tree.
func New(cfg Config, rng *rand.Rand, indexer neighbor.Indexer) (*Animator, error) {
	if rng == nil {
		return nil, errors.New("nil random source")
	}

	if indexer == nil {
		indexer = neighbor.KDTree{}
	}

	a := &Animator{
		cfg:     cfg,
		rng:     rng,
		indexer: indexer,
	}

	if err := a.SetShape(cfg.Shape); err != nil {
		return nil, err
	}

	return a, nil
}

// SetShape replaces the home positions and rebuilds the neighbour graph.
// An unknown kind leaves the animator untouched.
func (a *Animator) SetShape(kind shape.Kind) error {
	home, err := shape.Generate(kind, a.cfg.PointCount, a.rng, shape.Options{
		Scale: a.cfg.Scale,
		Depth: a.cfg.Depth,
	})
	if err != nil {
		return err
	}

	a.kind = kind
	a.home = home
	a.current = append(a.current[:0], home...)
	a.target = append(a.target[:0], home...)

	a.graph = a.indexer.Build(a.home, a.cfg.K)
	a.lines = a.lines[:0]

	a.binIdx = a.binIdx[:0]
	for _, p := range a.home {
		a.binIdx = append(a.binIdx, hashVec(p))
	}
	a.freqs = make([]float32, len(a.home))

	return nil
}

// Update advances the animation one tick. amp is the smoothed amplitude in
// [0, 1], t the elapsed seconds and bins the current normalized spectrum.
func (a *Animator) Update(amp, t float64, bins []float64) error {
	cfg := a.cfg

	scaled := math.Pow(amp*2, cfg.Exponent) * cfg.DisplacementScale
	scatter := cfg.ScatterProbability * (1 + amp)
	pulse := 1 + math.Sin(t*cfg.PulseFrequency)*cfg.PulseDepth
	radius := scaled * cfg.ScatterScale * 3

	for idx, home := range a.home {
		if a.rng.Float64() < scatter {
			theta := a.rng.Float64() * 2 * math.Pi
			phi := a.rng.Float64() * math.Pi

			a.target[idx] = r3.Add(home, r3.Vec{
				X: radius * math.Sin(phi) * math.Cos(theta),
				Y: radius * math.Sin(phi) * math.Sin(theta),
				Z: radius * math.Cos(phi),
			})
			continue
		}

		if r3.Norm2(home) == 0 {
			a.target[idx] = home
			continue
		}

		a.target[idx] = r3.Add(home, r3.Scale(scaled*pulse, r3.Unit(home)))
	}

	for idx := range a.current {
		delta := r3.Sub(a.target[idx], a.current[idx])
		a.current[idx] = r3.Add(a.current[idx], r3.Scale(cfg.InterpolationSpeed, delta))
	}

	for idx, bin := range a.binIdx {
		if len(bins) == 0 {
			a.freqs[idx] = 0
			continue
		}
		a.freqs[idx] = float32(bins[bin%len(bins)])
	}

	if a.graph == nil {
		return errors.Wrap(neighbor.ErrStaleTopology, "no graph")
	}

	lines, err := a.graph.Segments(a.current, a.lines)
	if err != nil {
		return err
	}
	a.lines = lines

	return nil
}

// Shape is the kind currently shown.
func (a *Animator) Shape() shape.Kind { return a.kind }

// Home positions, not to be modified.
func (a *Animator) Home() []r3.Vec { return a.home }

// Positions are the current interpolated positions, not to be modified.
func (a *Animator) Positions() []r3.Vec { return a.current }

// Targets are this tick's displacement targets, not to be modified.
func (a *Animator) Targets() []r3.Vec { return a.target }

// Graph is the neighbour graph for the current shape.
func (a *Animator) Graph() *neighbor.Graph { return a.graph }

// Lines holds the endpoints of every neighbour edge as of the last update.
func (a *Animator) Lines() []float32 { return a.lines }

// Frequencies holds one spectrum level per point.
func (a *Animator) Frequencies() []float32 { return a.freqs }

// hashVec picks a stable spectrum bin for a home position.
func hashVec(v r3.Vec) int {
	h := fnv.New32a()

	var buf [24]byte
	for i, f := range [3]float64{v.X, v.Y, v.Z} {
		bits := math.Float64bits(f)
		for j := 0; j < 8; j++ {
			buf[i*8+j] = byte(bits >> (8 * j))
		}
	}
	h.Write(buf[:])

	return int(h.Sum32() & 0x7fffffff)
}
