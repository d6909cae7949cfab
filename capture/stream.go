package capture

import (
	"context"
	"sync"

	"github.com/noriah/constellation/dsp"
	"github.com/noriah/constellation/input"
	"github.com/pkg/errors"
)

// errSessionEnded is recorded when a session returns without an error, as
// a file backend does at end of file.
var errSessionEnded = errors.New("input session ended")

type edge int

const (
	edgePlay edge = iota
	edgePause
	edgeSkip
	edgeStop
)

// stream is the state of one Start..Stop cycle.
type stream struct {
	cfg  Config
	ramp int

	cancel context.CancelFunc
	done   chan struct{}
	edges  chan edge

	// owned by run
	gain    *dsp.Gain
	mono    []float64
	playing bool
	restore bool
	monitor Sink

	// guarded by mu, written by run and read by Sample
	mu     sync.Mutex
	window []float64
	ready  bool
	err    error

	// owned by the Sample caller
	scratch  []float64
	analyzer *dsp.Analyzer
	features *dsp.Features
	frame    dsp.Frame
}

func newStream(cfg Config) *stream {
	analyzer := dsp.NewAnalyzer(cfg.Analyzer)

	return &stream{
		cfg:      cfg,
		ramp:     dsp.RampSamples(cfg.RampTime, cfg.SampleRate),
		done:     make(chan struct{}),
		edges:    make(chan edge, 16),
		gain:     dsp.NewGain(0),
		mono:     make([]float64, cfg.BufferSize),
		monitor:  cfg.Monitor,
		window:   make([]float64, analyzer.SampleSize()),
		scratch:  make([]float64, analyzer.SampleSize()),
		analyzer: analyzer,
		features: dsp.NewFeatures(cfg.Features),
	}
}

// send queues an edge for the poll goroutine. It reports false if the
// stream has already exited.
func (st *stream) send(e edge) bool {
	select {
	case <-st.done:
		return false
	case st.edges <- e:
		return true
	}
}

func (st *stream) run(ctx context.Context, session input.Session) {
	defer close(st.done)

	var (
		inMu     sync.Mutex
		kickChan = make(chan bool)
		errCh    = make(chan error, 1)
		bufs     = input.MakeBuffers(st.cfg.Channels, st.cfg.BufferSize)
	)

	go func() {
		errCh <- session.Start(ctx, bufs, kickChan, &inMu)
	}()

	for {
		select {
		case <-ctx.Done():
			<-errCh
			return

		case err := <-errCh:
			if err == nil {
				err = errSessionEnded
			}

			st.mu.Lock()
			st.err = err
			st.mu.Unlock()
			return

		case e := <-st.edges:
			st.handleEdge(e)

		case <-kickChan:
			inMu.Lock()
			mixDown(bufs, st.mono)
			inMu.Unlock()

			st.process()
		}
	}
}

func (st *stream) handleEdge(e edge) {
	switch e {
	case edgePlay:
		st.playing = true
		st.restore = false
		st.gain.RampTo(1, st.ramp)

	case edgePause, edgeStop:
		st.playing = false
		st.restore = false
		st.gain.RampTo(0, st.ramp)

	case edgeSkip:
		st.restore = st.playing
		st.gain.RampTo(0, st.ramp)
	}
}

func (st *stream) process() {
	st.gain.Process(st.mono)

	if st.restore && !st.gain.Ramping() {
		st.restore = false
		st.gain.RampTo(1, st.ramp)
	}

	if st.monitor != nil {
		// A failed monitor is detached; analysis keeps running.
		if err := st.monitor.Write(st.mono); err != nil {
			st.monitor = nil
		}
	}

	st.mu.Lock()
	pushWindow(st.window, st.mono)
	st.ready = true
	st.mu.Unlock()
}

// mixDown averages every channel into dst.
func mixDown(bufs [][]input.Sample, dst []float64) {
	scale := 1 / float64(len(bufs))

	for idx := range dst {
		var sum float64
		for _, ch := range bufs {
			sum += ch[idx]
		}
		dst[idx] = sum * scale
	}
}

// pushWindow shifts src onto the end of window, keeping the newest
// len(window) samples.
func pushWindow(window, src []float64) {
	if len(src) >= len(window) {
		copy(window, src[len(src)-len(window):])
		return
	}

	copy(window, window[len(src):])
	copy(window[len(window)-len(src):], src)
}
