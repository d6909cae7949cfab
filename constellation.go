// Package constellation wires an audio capture backend to the point cloud
// and swarm animators and drives them at a fixed frame rate into an output.
package constellation

import (
	"context"
	"math/rand"
	"time"

	"github.com/noriah/constellation/capture"
	"github.com/noriah/constellation/cloud"
	"github.com/noriah/constellation/dsp"
	"github.com/noriah/constellation/neighbor"
	"github.com/noriah/constellation/processor"
	"github.com/noriah/constellation/swarm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxFrameRate is the highest tick rate Run accepts.
const MaxFrameRate = 240

type (
	// SetupFunc is called before capture starts.
	SetupFunc func() error
	// StartFunc is called once the processor exists and capture is running.
	// The returned context replaces the run context, so an output can end
	// the run by cancelling it.
	StartFunc func(ctx context.Context, p *processor.Processor) (context.Context, error)
	// CleanupFunc is called after the run ends, even on error.
	CleanupFunc func() error
)

type Config struct {
	// Capture graph: backend, device, gain ramp and analyser settings
	Capture capture.Config
	// Amplitude smoothing and fade
	Smoother dsp.SmootherConfig
	// Point cloud constants and initial shape
	Cloud cloud.Config
	// Background field. A Count of zero disables it.
	Swarm swarm.Config

	// Ticks per second
	FrameRate int
	// Seed for every random draw. Zero seeds from the clock.
	Seed int64
	// Start in the playing state
	Playing bool

	LineMaxDistance float64
	Camera          r3.Vec

	// Function to call when setting up the pipeline
	SetupFunc SetupFunc
	// Function to call when starting the pipeline
	StartFunc StartFunc
	// Function to call when cleaning up the pipeline
	CleanupFunc CleanupFunc
	// Where to send every frame
	Output processor.Output
	// Logger for absorbed per-tick errors
	Logger logrus.FieldLogger
}

func NewZeroConfig() Config {
	return Config{
		Capture:         capture.DefaultConfig(),
		Smoother:        dsp.DefaultSmootherConfig(),
		Cloud:           cloud.DefaultConfig(),
		Swarm:           swarm.DefaultConfig(),
		FrameRate:       60,
		Playing:         true,
		LineMaxDistance: 100,
		Camera:          r3.Vec{Z: 60},
	}
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.FrameRate < 1:
		return errors.New("frame rate too low (1 min)")
	case cfg.FrameRate > MaxFrameRate:
		return errors.Errorf("frame rate too high (%d max)", MaxFrameRate)
	}

	if cfg.Output == nil {
		return errors.New("no output")
	}

	if !cfg.Cloud.Shape.Valid() {
		return errors.New("invalid shape")
	}

	switch {
	case cfg.Cloud.PointCount < 1:
		return errors.New("too few points (1 min)")
	case cfg.Cloud.K < 1:
		return errors.New("too few neighbours (1 min)")
	case cfg.Cloud.K >= cfg.Cloud.PointCount:
		return errors.New("more neighbours than points")
	}

	if cfg.Swarm.Count < 0 {
		return errors.New("negative swarm size")
	}

	if cfg.Capture.Backend == "" {
		return errors.New("no backend")
	}

	return nil
}

// Run starts capture, builds the animators and ticks the processor until
// ctx is done or StartFunc's context is cancelled.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	animator, err := cloud.New(cfg.Cloud, rng, neighbor.KDTree{})
	if err != nil {
		return errors.Wrap(err, "failed to build point cloud")
	}

	var field *swarm.Field
	if cfg.Swarm.Count > 0 {
		field = swarm.New(cfg.Swarm, rng)
	}

	extractor := capture.NewExtractor(cfg.Capture)

	proc, err := processor.New(processor.Config{
		FrameRate:       cfg.FrameRate,
		Source:          extractor,
		Smoother:        cfg.Smoother,
		Cloud:           animator,
		Swarm:           field,
		Output:          cfg.Output,
		Logger:          cfg.Logger,
		LineMaxDistance: cfg.LineMaxDistance,
		Camera:          cfg.Camera,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build processor")
	}

	if cfg.SetupFunc != nil {
		if err := cfg.SetupFunc(); err != nil {
			return errors.Wrap(err, "setup failed")
		}
	}

	if cfg.CleanupFunc != nil {
		defer cfg.CleanupFunc()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := extractor.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start capture")
	}
	defer extractor.Stop()

	if cfg.StartFunc != nil {
		if ctx, err = cfg.StartFunc(ctx, proc); err != nil {
			return errors.Wrap(err, "start failed")
		}
	}

	if cfg.Playing {
		proc.HandlePlayPause(true)
	}

	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
