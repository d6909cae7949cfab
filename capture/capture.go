// Package capture turns a live input session into per-tick audio feature
// frames. It owns the capture graph: the input session, a click-free gain
// stage, the analysis window and an optional monitor sink.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/noriah/constellation/dsp"
	"github.com/noriah/constellation/input"
	"github.com/pkg/errors"
)

var (
	// ErrCaptureNotReady is returned by Sample when there is no stream or the
	// stream has not delivered a buffer yet.
	ErrCaptureNotReady = errors.New("capture not ready")
	// ErrDeviceUnavailable is returned by Start when the backend, device or
	// session cannot be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)

// causeError reports kind while keeping cause in the chain, so errors.Is
// matches either one.
type causeError struct {
	kind  error
	cause error
}

func withCause(kind, cause error) error {
	return &causeError{kind: kind, cause: cause}
}

func (e *causeError) Error() string        { return e.kind.Error() + ": " + e.cause.Error() }
func (e *causeError) Is(target error) bool { return target == e.kind }
func (e *causeError) Unwrap() error        { return e.cause }
func (e *causeError) Cause() error         { return e.cause }

// Sink receives the gained mono signal, e.g. a speaker.
type Sink interface {
	Write(samples []float64) error
}

// Config describes the capture graph.
type Config struct {
	Backend    string        // input backend name
	Device     string        // device name, empty for the backend default
	SampleRate float64       // requested capture rate
	Channels   int           // channels per frame, mixed down to mono
	BufferSize int           // frames per session buffer
	RampTime   time.Duration // gain ramp length on every edge

	Analyzer dsp.AnalyzerConfig
	Features dsp.FeatureConfig

	// Monitor is optional.
	Monitor Sink
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		BufferSize: 512,
		RampTime:   50 * time.Millisecond,
		Analyzer:   dsp.DefaultAnalyzerConfig(),
		Features:   dsp.DefaultFeatureConfig(),
	}
}

// Extractor produces one dsp.Frame per Sample call from a running stream.
// Start, Stop and the edge methods may be called from any goroutine; Sample
// must only be called from one goroutine at a time.
type Extractor struct {
	cfg Config

	mu    sync.Mutex
	state *stream

	zero dsp.Frame
}

func NewExtractor(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = def.Channels
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.Analyzer.SampleSize <= 0 {
		cfg.Analyzer = def.Analyzer
	}

	return &Extractor{
		cfg:  cfg,
		zero: dsp.Frame{Bins: make([]float64, cfg.Analyzer.SampleSize/2)},
	}
}

// Start opens the configured backend and device and begins polling. Calling
// Start on a running extractor restarts it.
func (e *Extractor) Start(ctx context.Context) error {
	e.Stop()

	backend, err := input.InitBackend(e.cfg.Backend)
	if err != nil {
		return withCause(ErrDeviceUnavailable, err)
	}

	device, err := input.GetDevice(backend, e.cfg.Device)
	if err != nil {
		return withCause(ErrDeviceUnavailable, err)
	}

	session, err := backend.Start(input.SessionConfig{
		Device:     device,
		FrameSize:  e.cfg.Channels,
		SampleSize: e.cfg.BufferSize,
		SampleRate: e.cfg.SampleRate,
	})
	if err != nil {
		return withCause(ErrDeviceUnavailable, err)
	}

	st := newStream(e.cfg)

	ctx, st.cancel = context.WithCancel(ctx)
	go st.run(ctx, session)

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()

	return nil
}

// Stop ramps the gain to zero, waits out the ramp, then cancels the session
// and drops the stream state. It is a no-op when nothing is running.
func (e *Extractor) Stop() {
	e.mu.Lock()
	st := e.state
	e.state = nil
	e.mu.Unlock()

	if st == nil {
		return
	}

	if st.send(edgeStop) {
		select {
		case <-time.After(e.cfg.RampTime):
		case <-st.done:
		}
	}

	st.cancel()
	<-st.done
}

// Running reports whether a stream exists and its session is alive.
func (e *Extractor) Running() bool {
	st := e.current()
	if st == nil {
		return false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err == nil
}

// Err returns why the session ended, if it has.
func (e *Extractor) Err() error {
	st := e.current()
	if st == nil {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// HandlePlayPause ramps the gain up on play and down on pause.
func (e *Extractor) HandlePlayPause(playing bool) {
	if st := e.current(); st != nil {
		if playing {
			st.send(edgePlay)
		} else {
			st.send(edgePause)
		}
	}
}

// Skip marks a track change: the gain ramps down and, if playing, back up.
func (e *Extractor) Skip() {
	if st := e.current(); st != nil {
		st.send(edgeSkip)
	}
}

// Sample analyses the latest window. The returned Bins slice is reused by
// the next call. Without a live, primed stream it returns a zero frame and
// ErrCaptureNotReady.
func (e *Extractor) Sample() (dsp.Frame, error) {
	st := e.current()
	if st == nil {
		return e.zeroFrame(), ErrCaptureNotReady
	}

	st.mu.Lock()
	if !st.ready || st.err != nil {
		err := st.err
		st.mu.Unlock()

		if err != nil {
			return e.zeroFrame(), withCause(ErrCaptureNotReady, err)
		}
		return e.zeroFrame(), ErrCaptureNotReady
	}
	copy(st.scratch, st.window)
	st.mu.Unlock()

	st.analyzer.Process(st.scratch)
	st.features.Extract(st.analyzer, &st.frame)

	return st.frame, nil
}

func (e *Extractor) zeroFrame() dsp.Frame {
	e.zero.Reset()
	return e.zero
}

func (e *Extractor) current() *stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
