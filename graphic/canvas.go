package graphic

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
)

// canvas is the cell grid the display draws on. termbox in production,
// a plain grid in tests.
type canvas interface {
	Size() (int, int)
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
}

type termboxCanvas struct{}

func (termboxCanvas) Size() (int, int) { return termbox.Size() }

func (termboxCanvas) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

// attr maps a colour onto the 6x6x6 cube of a 256 colour terminal. termbox
// numbers 256 colour attributes from 1.
func attr(c colorful.Color) termbox.Attribute {
	r, g, b := c.Clamped().RGB255()

	level := func(v uint8) int {
		return (int(v)*5 + 127) / 255
	}

	return termbox.Attribute(16+36*level(r)+6*level(g)+level(b)) + 1
}

// scaled dims c by f.
func scaled(c colorful.Color, f float64) colorful.Color {
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

// printText writes s at x, y and returns the column after it.
func printText(cv canvas, x, y int, s string, fg termbox.Attribute) int {
	for _, r := range s {
		cv.SetCell(x, y, r, fg, termbox.ColorDefault)
		x += runewidth.RuneWidth(r)
	}
	return x
}
