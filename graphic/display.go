// Package graphic is a terminal preview of the visual, drawn with termbox.
package graphic

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/harmonica"
	"github.com/noriah/constellation/render"
	"github.com/noriah/constellation/shape"
	"github.com/noriah/constellation/swarm"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

const (
	// ZoomStep is how much one key press changes the zoom target.
	ZoomStep = 0.25
	// MinZoom and MaxZoom bound the zoom target.
	MinZoom = 0.25
	MaxZoom = 4.0

	// OrbitSpeed is how fast the camera circles the cloud, in radians per
	// second.
	OrbitSpeed = 0.15
)

// Controller receives the playback and shape keys.
type Controller interface {
	HandlePlayPause(playing bool)
	Skip()
	SetShape(kind shape.Kind) error
}

type Config struct {
	Controller   Controller // may be nil
	FrameRate    int        // used to step the zoom spring
	Zoom         float64    // initial zoom
	SpreadFactor float64    // spectrum spread, >= 1
	Playing      bool       // initial playback state for the space key
}

// Display draws frames on the terminal and turns key presses into
// controller calls.
type Display struct {
	cfg Config
	cv  canvas

	spring  harmonica.Spring
	zoom    float64
	zoomVel float64

	mu         sync.Mutex
	ctl        Controller
	notice     string
	zoomTarget float64
	playing    bool

	cols []float64
}

func New(cfg Config) *Display {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.Zoom <= 0 {
		cfg.Zoom = 1
	}
	if cfg.SpreadFactor < 1 {
		cfg.SpreadFactor = 1.64
	}

	return &Display{
		cfg:        cfg,
		cv:         termboxCanvas{},
		ctl:        cfg.Controller,
		spring:     harmonica.NewSpring(harmonica.FPS(cfg.FrameRate), 6.0, 0.5),
		zoom:       cfg.Zoom,
		zoomTarget: cfg.Zoom,
		playing:    cfg.Playing,
	}
}

// Init sets up the terminal. Call Close when done.
func (d *Display) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}
	defer restore()

	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.SetOutputMode(termbox.Output256)
	termbox.HideCursor()

	return nil
}

// Close will clean up the terminal
func (d *Display) Close() error {
	termbox.Close()
	return nil
}

// Start polls terminal events until the user quits or ctx is done. The
// returned context is cancelled on quit.
func (d *Display) Start(ctx context.Context) context.Context {
	dispCtx, dispCancel := context.WithCancel(ctx)
	go d.eventPoller(dispCtx, dispCancel)
	return dispCtx
}

func (d *Display) eventPoller(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	events := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Type == termbox.EventError || d.handleEvent(ev) {
				return
			}
		}
	}
}

// handleEvent applies one event and reports whether the user asked to quit.
func (d *Display) handleEvent(ev termbox.Event) (quit bool) {
	if ev.Type != termbox.EventKey {
		return false
	}

	switch ev.Key {
	case termbox.KeyCtrlC, termbox.KeyEsc:
		return true

	case termbox.KeySpace:
		d.mu.Lock()
		d.playing = !d.playing
		playing := d.playing
		d.mu.Unlock()

		if c := d.controller(); c != nil {
			c.HandlePlayPause(playing)
		}

	case termbox.KeyArrowUp:
		d.adjustZoom(ZoomStep)

	case termbox.KeyArrowDown:
		d.adjustZoom(-ZoomStep)
	}

	switch ev.Ch {
	case 'q', 'Q':
		return true

	case 'n', 'N':
		if c := d.controller(); c != nil {
			c.Skip()
		}

	case '+', '=':
		d.adjustZoom(ZoomStep)

	case '-', '_':
		d.adjustZoom(-ZoomStep)

	case '1', '2', '3':
		kinds := shape.Kinds()
		if c := d.controller(); c != nil {
			d.setNotice(c.SetShape(kinds[ev.Ch-'1']))
		}
	}

	return false
}

// setNotice shows err in the status row until the next successful shape
// change. A nil err clears it.
func (d *Display) setNotice(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.notice = ""
	if err != nil {
		d.notice = err.Error()
	}
}

// SetController replaces the controller that receives key presses.
func (d *Display) SetController(c Controller) {
	d.mu.Lock()
	d.ctl = c
	d.mu.Unlock()
}

func (d *Display) controller() Controller {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctl
}

func (d *Display) adjustZoom(delta float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.zoomTarget += delta
	switch {
	case d.zoomTarget < MinZoom:
		d.zoomTarget = MinZoom
	case d.zoomTarget > MaxZoom:
		d.zoomTarget = MaxZoom
	}
}

// Write draws one frame.
func (d *Display) Write(f *render.Frame) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}

	d.draw(f)

	return termbox.Flush()
}

func (d *Display) draw(f *render.Frame) {
	d.mu.Lock()
	target := d.zoomTarget
	playing := d.playing
	notice := d.notice
	d.mu.Unlock()

	d.zoom, d.zoomVel = d.spring.Update(d.zoom, d.zoomVel, target)

	width, height := d.cv.Size()
	if width <= 0 || height <= 2 {
		return
	}

	// one status row on top, the spectrum row at the bottom
	p := newProjector(width, height-1, d.zoom, f.Time*OrbitSpeed)

	if f.ParticleCount() > 0 {
		drawSwarm(d.cv, p, f, float64(swarm.Flicker(float64(f.Field.Time))))
	}
	drawLines(d.cv, p, f)
	drawPoints(d.cv, p, f)

	d.cols = drawSpectrum(d.cv, width, height-1, f.Bins, d.cols,
		d.cfg.SpreadFactor, attr(f.Line.Color))

	state := "paused"
	if playing {
		state = "playing"
	}

	status := fmt.Sprintf(" %s  %-7s amp %.2f  zoom %.2f  [space] play [n] skip [1-3] shape [+/-] zoom [q] quit",
		f.Shape, state, f.Amplitude, d.zoom)

	if notice != "" {
		printText(d.cv, 0, 0, " "+notice, termbox.ColorRed)
		return
	}
	printText(d.cv, 0, 0, status, termbox.ColorWhite)
}
