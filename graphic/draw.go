package graphic

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/noriah/constellation/dsp"
	"github.com/noriah/constellation/render"
	"github.com/nsf/termbox-go"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// CameraDistance is how far the camera sits from the origin on +Z.
	CameraDistance = 60.0

	// PointRune marks a cloud point.
	PointRune rune = '•'
	// LineRune draws neighbour lines.
	LineRune rune = '·'
	// ParticleRune draws swarm particles.
	ParticleRune rune = '.'

	// NumRunes number of runes for sub step bars
	NumRunes = 8
)

var barRunes = [NumRunes]rune{
	'▁',
	'▂',
	'▃',
	'▄',
	'▅',
	'▆',
	'▇',
	'█',
}

// projector maps world space onto terminal cells with a perspective camera
// that orbits the Y axis.
type projector struct {
	width, height int
	zoom          float64
	sin, cos      float64
}

func newProjector(width, height int, zoom, angle float64) projector {
	s, c := math.Sincos(angle)
	return projector{width: width, height: height, zoom: zoom, sin: s, cos: c}
}

// project returns the cell for a point and its depth. ok is false for
// points behind the camera.
func (p projector) project(x, y, z float64) (cx, cy int, depth float64, ok bool) {
	rx := x*p.cos + z*p.sin
	rz := -x*p.sin + z*p.cos

	depth = CameraDistance - rz
	if depth <= 1 {
		return 0, 0, depth, false
	}

	f := p.zoom * float64(p.height) / depth

	// cells are about twice as tall as they are wide
	cx = p.width/2 + int(math.Round(rx*f*2))
	cy = p.height/2 - int(math.Round(y*f))

	return cx, cy, depth, true
}

func (p projector) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < p.width && y < p.height
}

// drawSwarm plots every particle dimmed by the field flicker.
func drawSwarm(cv canvas, p projector, f *render.Frame, flicker float64) {
	n := f.ParticleCount()
	for i := 0; i < n; i++ {
		x, y, _, ok := p.project(
			float64(f.Swarm[i*3]), float64(f.Swarm[i*3+1]), float64(f.Swarm[i*3+2]))
		if !ok || !p.inside(x, y) {
			continue
		}

		c := colorful.Color{
			R: float64(f.SwarmColors[i*3]),
			G: float64(f.SwarmColors[i*3+1]),
			B: float64(f.SwarmColors[i*3+2]),
		}
		// the field colours are very dark; lift them so a terminal shows them
		cv.SetCell(x, y, ParticleRune, attr(scaled(c, 3*flicker)), termbox.ColorDefault)
	}
}

// drawLines rasterizes every neighbour segment, fading with camera distance.
func drawLines(cv canvas, p projector, f *render.Frame) {
	camera := f.Line.CameraPosition
	if camera == (r3.Vec{}) {
		camera = r3.Vec{Z: CameraDistance}
	}

	n := f.LineCount()
	for i := 0; i < n; i++ {
		seg := f.Lines[i*6 : i*6+6]
		a := r3.Vec{X: float64(seg[0]), Y: float64(seg[1]), Z: float64(seg[2])}
		b := r3.Vec{X: float64(seg[3]), Y: float64(seg[4]), Z: float64(seg[5])}

		x0, y0, _, ok0 := p.project(a.X, a.Y, a.Z)
		x1, y1, _, ok1 := p.project(b.X, b.Y, b.Z)
		if !ok0 || !ok1 {
			continue
		}

		mid := r3.Scale(0.5, r3.Add(a, b))
		fade := render.Attenuation(r3.Norm(r3.Sub(mid, camera)), float64(f.Line.MaxDistance))
		fg := attr(scaled(f.Line.Color, fade))

		line(x0, y0, x1, y1, func(x, y int) {
			if p.inside(x, y) {
				cv.SetCell(x, y, LineRune, fg, termbox.ColorDefault)
			}
		})
	}
}

// drawPoints plots the cloud on top of everything else.
func drawPoints(cv canvas, p projector, f *render.Frame) {
	t := float64(f.Point.Time)

	n := f.PointCount()
	for i := 0; i < n; i++ {
		x, y, z := float64(f.Points[i*3]), float64(f.Points[i*3+1]), float64(f.Points[i*3+2])

		cx, cy, _, ok := p.project(x, y, z)
		if !ok || !p.inside(cx, cy) {
			continue
		}

		c := render.PointColor(math.Sqrt(x*x+y*y+z*z), t)
		if i < len(f.Frequencies) {
			// louder bins brighten their points
			c = scaled(c, 2+2*float64(f.Frequencies[i]))
		}

		cv.SetCell(cx, cy, PointRune, attr(c), termbox.ColorDefault)
	}
}

// drawSpectrum fills the bottom row with one bar per column. bins is
// resampled to the width by taking the loudest bin in each column and then
// spread so peaks bleed into their neighbours.
func drawSpectrum(cv canvas, width, row int, bins []float64, cols []float64, spread float64, fg termbox.Attribute) []float64 {
	if width <= 0 || len(bins) == 0 {
		return cols
	}

	if cap(cols) < width {
		cols = make([]float64, width)
	}
	cols = cols[:width]

	for x := range cols {
		lo := x * len(bins) / width
		hi := (x + 1) * len(bins) / width
		if hi <= lo {
			hi = lo + 1
		}

		peak := 0.0
		for _, v := range bins[lo:hi] {
			peak = math.Max(peak, v)
		}
		cols[x] = peak
	}

	dsp.Spread(cols, spread)

	for x, v := range cols {
		idx := int(v * NumRunes)
		if idx <= 0 {
			continue
		}
		if idx > NumRunes {
			idx = NumRunes
		}
		cv.SetCell(x, row, barRunes[idx-1], fg, termbox.ColorDefault)
	}

	return cols
}

// line walks the cells between two points with Bresenham's algorithm.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)

	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}

		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
