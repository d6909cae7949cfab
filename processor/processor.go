// Package processor drives the per-tick pipeline: sample the audio
// features, smooth them, animate the cloud and the swarm, and hand the
// resulting frame to an output.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/noriah/constellation/capture"
	"github.com/noriah/constellation/cloud"
	"github.com/noriah/constellation/dsp"
	"github.com/noriah/constellation/render"
	"github.com/noriah/constellation/shape"
	"github.com/noriah/constellation/swarm"
	"github.com/noriah/constellation/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Output receives one frame per tick.
type Output interface {
	Write(*render.Frame) error
}

// Source produces audio features and accepts playback edges.
// capture.Extractor is the usual implementation.
type Source interface {
	Sample() (dsp.Frame, error)
	HandlePlayPause(playing bool)
	Skip()
}

type Config struct {
	FrameRate int                // ticks per second for Run
	Source    Source             // audio features
	Smoother  dsp.SmootherConfig // amplitude smoothing
	Cloud     *cloud.Animator    // point cloud, required
	Swarm     *swarm.Field       // background field, optional
	Output    Output             // frame sink
	Logger    logrus.FieldLogger // defaults to the standard logger

	LineMaxDistance float64 // line attenuation distance
	Camera          r3.Vec  // camera position for line attenuation

	StatsWindow int // number of tick durations kept for Stats
}

type commandKind int

const (
	cmdPlayPause commandKind = iota
	cmdSkip
	cmdShape
)

type command struct {
	kind    commandKind
	playing bool
	shape   shape.Kind
}

// Processor owns the smoother, the animators and the frame. Tick and Run
// must be called from a single goroutine; the controller methods may be
// called from anywhere.
type Processor struct {
	cfg Config
	log logrus.FieldLogger

	commands chan command

	smoother *dsp.Smoother
	state    dsp.PlaybackState

	listenMu  sync.Mutex
	listeners map[int]func(float64)
	nextID    int
	notify    []func(float64)

	frame     render.Frame
	tickTimes *util.MovingWindow
}

// New validates cfg and builds a processor.
func New(cfg Config) (*Processor, error) {
	if cfg.Cloud == nil {
		return nil, errors.New("processor needs a cloud animator")
	}
	if cfg.Source == nil {
		return nil, errors.New("processor needs a source")
	}
	if cfg.Output == nil {
		return nil, errors.New("processor needs an output")
	}

	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.LineMaxDistance <= 0 {
		cfg.LineMaxDistance = 100
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = cfg.FrameRate * 2
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Processor{
		cfg:       cfg,
		log:       log,
		commands:  make(chan command, 64),
		smoother:  dsp.NewSmoother(cfg.Smoother),
		listeners: map[int]func(float64){},
		tickTimes: util.NewMovingWindow(cfg.StatsWindow),
	}, nil
}

func (p *Processor) enqueue(c command) {
	select {
	case p.commands <- c:
	default:
		p.log.WithField("command", c.kind).Warn("command queue full, dropping")
	}
}

// HandlePlayPause records a play/pause edge for the next tick.
func (p *Processor) HandlePlayPause(playing bool) {
	p.enqueue(command{kind: cmdPlayPause, playing: playing})
}

// Skip records a track change for the next tick.
func (p *Processor) Skip() {
	p.enqueue(command{kind: cmdSkip})
}

// SetShape switches the cloud shape on the next tick. Unknown kinds are
// rejected here.
func (p *Processor) SetShape(kind shape.Kind) error {
	if !kind.Valid() {
		return errors.Wrapf(shape.ErrUnknownShape, "kind %d", int(kind))
	}

	p.enqueue(command{kind: cmdShape, shape: kind})
	return nil
}

// Subscribe calls fn with the smoothed amplitude every tick until the
// returned function is called.
func (p *Processor) Subscribe(fn func(float64)) (unsubscribe func()) {
	p.listenMu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.listenMu.Unlock()

	return func() {
		p.listenMu.Lock()
		delete(p.listeners, id)
		p.listenMu.Unlock()
	}
}

// State is the playback state as of the last tick.
func (p *Processor) State() dsp.PlaybackState {
	return p.state
}

// Stats returns the mean and deviation of recent tick durations in seconds.
func (p *Processor) Stats() (float64, float64) {
	return p.tickTimes.Stats()
}

func (p *Processor) drain() {
	for {
		select {
		case c := <-p.commands:
			p.apply(c)
		default:
			return
		}
	}
}

func (p *Processor) apply(c command) {
	switch c.kind {
	case cmdPlayPause:
		p.state.Set(c.playing)
		p.cfg.Source.HandlePlayPause(c.playing)

	case cmdSkip:
		p.cfg.Source.Skip()

	case cmdShape:
		if err := p.cfg.Cloud.SetShape(c.shape); err != nil {
			p.log.WithError(err).WithField("shape", c.shape).Warn("failed to set shape")
		}
	}
}

// Tick runs one pipeline step at elapsed time since start.
func (p *Processor) Tick(elapsed time.Duration) {
	start := time.Now()
	t := elapsed.Seconds()

	p.drain()

	features, err := p.cfg.Source.Sample()
	if err != nil && !errors.Is(err, capture.ErrCaptureNotReady) {
		p.log.WithError(err).Debug("sample failed")
	}

	amp := p.smoother.Smooth(features.Amplitude, p.state)

	p.listenMu.Lock()
	p.notify = p.notify[:0]
	for _, fn := range p.listeners {
		p.notify = append(p.notify, fn)
	}
	p.listenMu.Unlock()

	for _, fn := range p.notify {
		fn(amp)
	}

	if err := p.cfg.Cloud.Update(amp, t, features.Bins); err != nil {
		p.log.WithError(err).Debug("cloud update")
	}

	if p.cfg.Swarm != nil {
		p.cfg.Swarm.Update(t)
	}

	p.fill(amp, t, features.Bins)

	if err := p.cfg.Output.Write(&p.frame); err != nil {
		p.log.WithError(err).WithField("tick", p.frame.Tick).Error("output write failed")
	}

	p.frame.Tick++
	p.tickTimes.Update(time.Since(start).Seconds())
}

func (p *Processor) fill(amp, t float64, bins []float64) {
	f := &p.frame
	c := p.cfg.Cloud

	f.Time = t
	f.Amplitude = amp
	f.Shape = c.Shape().String()
	f.Bins = append(f.Bins[:0], bins...)

	f.Points = render.PackVecs(f.Points, c.Positions())
	f.Frequencies = append(f.Frequencies[:0], c.Frequencies()...)
	f.Lines = append(f.Lines[:0], c.Lines()...)

	if s := p.cfg.Swarm; s != nil {
		f.Swarm = s.Positions
		f.SwarmColors = s.Colors
		f.SwarmSizes = s.Sizes
	}

	boosted := amp * 3

	f.Point = render.PointUniforms{Time: float32(t)}
	f.Line = render.LineUniforms{
		Time:           float32(t),
		Amplitude:      float32(boosted),
		Color:          render.AmplitudeColor(boosted),
		MaxDistance:    float32(p.cfg.LineMaxDistance),
		CameraPosition: p.cfg.Camera,
	}
	f.Field = render.SwarmUniforms{Time: float32(t)}
}

// Run ticks at the configured frame rate until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	dur := time.Second / time.Duration(p.cfg.FrameRate)
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	start := time.Now()

	for {
		p.Tick(time.Since(start))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
