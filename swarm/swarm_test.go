package swarm

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newField(cfg Config) *Field {
	return New(cfg, rand.New(rand.NewSource(1)))
}

func TestNewShell(t *testing.T) {
	f := newField(DefaultConfig())
	require.Equal(t, 10000, f.Len())
	assert.Len(t, f.Positions, 30000)
	assert.Len(t, f.Colors, 30000)
	assert.Len(t, f.Sizes, 10000)

	for i, p := range f.base {
		r := p.norm()
		assert.InDelta(t, f.radius[i], r, 1e-2)
		assert.True(t, r >= 50-1e-2 && r <= 150+1e-2, "radius %v", r)

		assert.True(t, f.size[i] >= 2 && f.size[i] <= 4, "size %v", f.size[i])
	}
}

func TestColours(t *testing.T) {
	f := newField(Config{Count: 500, InnerRadius: 50, OuterRadius: 150})

	for i := 0; i < f.Len(); i++ {
		c := colorful.Color{
			R: float64(f.Colors[i*3]),
			G: float64(f.Colors[i*3+1]),
			B: float64(f.Colors[i*3+2]),
		}
		h, s, l := c.Hsl()

		assert.True(t, h >= 216-0.5 && h <= 252+0.5, "hue %v", h)
		assert.InDelta(t, 0.2, s, 1e-3)
		assert.True(t, l >= 0.1-1e-3 && l <= 0.2+1e-3, "lightness %v", l)
	}
}

func TestUpdateWithoutChaos(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 200
	cfg.ChaosAmount = 0
	f := newField(cfg)

	f.Update(3.5)

	for i, base := range f.base {
		pos := vec3{f.Positions[i*3], f.Positions[i*3+1], f.Positions[i*3+2]}

		// the spiral turns about Y: height and radius are kept
		assert.InDelta(t, base.Y, pos.Y, 1e-3)
		assert.InDelta(t, base.norm(), pos.norm(), 1e-2)

		want := base.rotateY(f.radius[i]*cfg.Tightness - 3.5*cfg.SpiralSpeed)
		assert.InDelta(t, want.X, pos.X, 1e-3)
		assert.InDelta(t, want.Z, pos.Z, 1e-3)
	}
}

func TestChaosIsRadial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 200
	f := newField(cfg)

	f.Update(1.25)

	for i, base := range f.base {
		pos := vec3{f.Positions[i*3], f.Positions[i*3+1], f.Positions[i*3+2]}
		spiral := base.rotateY(f.radius[i]*cfg.Tightness - 1.25*cfg.SpiralSpeed)

		// noise is in [-1, 1]: the radius moves by at most ChaosRadius*ChaosAmount
		delta := math32.Abs(pos.norm() - spiral.norm())
		assert.LessOrEqual(t, delta, cfg.ChaosRadius*cfg.ChaosAmount+1e-2)
	}
}

func TestSizeFlicker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 100
	f := newField(cfg)

	f.Update(2)
	for i, s := range f.Sizes {
		assert.True(t, s >= f.size[i]*0.6-1e-4 && s <= f.size[i]+1e-4, "size %v", s)
	}
}

func TestDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 50

	a, b := newField(cfg), newField(cfg)
	a.Update(0.7)
	b.Update(0.7)
	assert.Equal(t, a.Positions, b.Positions)
}

func TestEmpty(t *testing.T) {
	f := newField(Config{Count: -1})
	assert.Zero(t, f.Len())
	f.Update(1)
}

func TestFlicker(t *testing.T) {
	assert.InDelta(t, 0.5, Flicker(0), 1e-6)
	assert.InDelta(t, 1, Flicker(float64(math32.Pi)/10), 1e-6)
}

func BenchmarkUpdate(b *testing.B) {
	f := New(DefaultConfig(), rand.New(rand.NewSource(1)))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f.Update(float64(i) * 0.016)
	}
}
