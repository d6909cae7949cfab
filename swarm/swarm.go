// Package swarm animates the background particle field. The field does not
// react to audio; every particle turns on a spiral around the Y axis and is
// pushed in and out along its radius by simplex noise.
package swarm

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"
)

type Config struct {
	Count       int     `toml:"count"`
	InnerRadius float32 `toml:"inner_radius"`
	OuterRadius float32 `toml:"outer_radius"`

	SpiralSpeed float32 `toml:"spiral_speed"`
	Tightness   float32 `toml:"tightness"`
	ChaosAmount float32 `toml:"chaos_amount"`
	ChaosRadius float32 `toml:"chaos_radius"`
	NoiseScale  float32 `toml:"noise_scale"`
	NoiseSpeed  float32 `toml:"noise_speed"`
}

func DefaultConfig() Config {
	return Config{
		Count:       10000,
		InnerRadius: 50,
		OuterRadius: 150,
		SpiralSpeed: 0.4,
		Tightness:   0.9,
		ChaosAmount: 0.6,
		ChaosRadius: 2,
		NoiseScale:  0.88,
		NoiseSpeed:  0.2,
	}
}

type vec3 struct {
	X, Y, Z float32
}

func (v vec3) scale(f float32) vec3 { return vec3{v.X * f, v.Y * f, v.Z * f} }
func (v vec3) add(o vec3) vec3      { return vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v vec3) norm() float32        { return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

func (v vec3) unit() vec3 {
	n := v.norm()
	if n == 0 {
		return vec3{}
	}
	return v.scale(1 / n)
}

// rotateY turns v by angle radians about the Y axis.
func (v vec3) rotateY(angle float32) vec3 {
	s, c := math32.Sincos(angle)
	return vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// Field holds the particles. Positions, Colors and Sizes are rewritten by
// every Update; colours never change.
type Field struct {
	cfg   Config
	noise opensimplex.Noise32

	base   []vec3
	radius []float32
	size   []float32

	Positions []float32
	Colors    []float32
	Sizes     []float32
}

// New places cfg.Count particles in a spherical shell. Every random draw,
// including the noise seed, comes from rng.
func New(cfg Config, rng *rand.Rand) *Field {
	n := cfg.Count
	if n < 0 {
		n = 0
	}

	f := &Field{
		cfg:       cfg,
		noise:     opensimplex.New32(rng.Int63()),
		base:      make([]vec3, n),
		radius:    make([]float32, n),
		size:      make([]float32, n),
		Positions: make([]float32, n*3),
		Colors:    make([]float32, n*3),
		Sizes:     make([]float32, n),
	}

	span := cfg.OuterRadius - cfg.InnerRadius

	for i := 0; i < n; i++ {
		radius := rng.Float32()*span + cfg.InnerRadius
		theta := rng.Float32() * 2 * math32.Pi
		phi := math32.Acos(2*rng.Float32() - 1)

		f.radius[i] = radius
		f.base[i] = vec3{
			X: radius * math32.Sin(phi) * math32.Cos(theta),
			Y: radius * math32.Sin(phi) * math32.Sin(theta),
			Z: radius * math32.Cos(phi),
		}

		hue := 0.6 + 0.1*rng.Float64()
		light := 0.1 + 0.1*rng.Float64()
		c := colorful.Hsl(hue*360, 0.2, light)
		f.Colors[i*3+0] = float32(c.R)
		f.Colors[i*3+1] = float32(c.G)
		f.Colors[i*3+2] = float32(c.B)

		f.size[i] = 2 + rng.Float32()*2
	}

	copy(f.Sizes, f.size)
	for i, p := range f.base {
		f.Positions[i*3+0] = p.X
		f.Positions[i*3+1] = p.Y
		f.Positions[i*3+2] = p.Z
	}

	return f
}

// Len is the particle count.
func (f *Field) Len() int { return len(f.base) }

// Update moves every particle to its position at t seconds.
func (f *Field) Update(t float64) {
	cfg := f.cfg
	tt := float32(t)
	drift := tt * cfg.NoiseSpeed
	freq := cfg.NoiseScale * 0.02

	for i, base := range f.base {
		angle := f.radius[i]*cfg.Tightness - tt*cfg.SpiralSpeed
		spiral := base.rotateY(angle)

		n := f.noise.Eval3(
			spiral.X*freq+drift,
			spiral.Y*freq+drift,
			spiral.Z*freq+drift,
		)
		chaos := spiral.unit().scale(n * cfg.ChaosRadius)
		pos := spiral.add(chaos.scale(cfg.ChaosAmount))

		f.Positions[i*3+0] = pos.X
		f.Positions[i*3+1] = pos.Y
		f.Positions[i*3+2] = pos.Z

		f.Sizes[i] = f.size[i] * (0.8 + 0.2*math32.Sin(tt+base.X*0.1))
	}
}

// Flicker is the colour intensity of the whole field at t seconds.
func Flicker(t float64) float32 {
	return 0.5 + 0.5*math32.Sin(float32(t)*5)
}
