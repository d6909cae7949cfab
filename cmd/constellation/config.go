package main

import (
	"bytes"
	"os"

	"github.com/noriah/constellation"
	"github.com/noriah/constellation/cloud"
	"github.com/noriah/constellation/dsp"
	"github.com/noriah/constellation/dsp/window"
	"github.com/noriah/constellation/shape"
	"github.com/noriah/constellation/swarm"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// config holds the command line.
type config struct {
	// backend is the backend name from list-backends
	backend string
	// device is the device name from list-devices
	device string
	// file plays a wav or mp3 through the file backend
	file string
	// sampleRate is the capture rate
	sampleRate float64
	// channelCount is mixed down to mono before analysis
	channelCount int
	// frameRate is the number of frames drawn every second
	frameRate int
	// shapeName is the initial shape
	shapeName string
	// points and neighbours override the tuning file when set
	points     int
	neighbours int
	// tuning is an optional toml file
	tuning string
	// raw prints numbers instead of drawing
	raw     bool
	rawBins int
	// listen plays the captured signal on the speaker
	listen bool
	// paused starts with the gain down
	paused bool
	// noSwarm disables the background field
	noSwarm bool
	seed    int64
	zoom    float64
	logFile string
	verbose bool
}

func newZeroConfig() config {
	return config{
		sampleRate:   44100,
		channelCount: 1,
		frameRate:    60,
		shapeName:    shape.Saturn.String(),
		rawBins:      32,
		zoom:         1,
	}
}

func (cfg *config) validate() error {
	if cfg.file != "" {
		if cfg.backend != "" && cfg.backend != "file" {
			return errors.Errorf("--file needs the file backend, not %q", cfg.backend)
		}

		cfg.backend = "file"
		cfg.device = cfg.file
	}

	if cfg.backend == "" {
		return errors.New("no backend given and none detected; check list-backends")
	}

	if _, err := shape.ParseKind(cfg.shapeName); err != nil {
		return err
	}

	switch {
	case cfg.sampleRate < 8000:
		return errors.New("sample rate too low (8000 min)")

	case cfg.channelCount > 2:
		return errors.New("too many channels (2 max)")

	case cfg.channelCount < 1:
		return errors.New("too few channels (1 min)")

	case cfg.frameRate < 1:
		return errors.New("frame rate too low (1 min)")

	case cfg.frameRate > constellation.MaxFrameRate:
		return errors.Errorf("frame rate too high (%d max)", constellation.MaxFrameRate)

	case cfg.points < 0:
		return errors.New("negative point count")

	case cfg.neighbours < 0:
		return errors.New("negative neighbour count")

	case cfg.raw && cfg.rawBins < 1:
		return errors.New("too few raw bins (1 min)")

	case cfg.zoom <= 0:
		return errors.New("zoom must be positive")
	}

	return nil
}

// tuning is the layout of the toml file given with -c. Missing keys keep
// their defaults.
type tuning struct {
	// Window names the analysis window, see dsp/window.ByName
	Window   string             `toml:"window"`
	Analyzer dsp.AnalyzerConfig `toml:"analyzer"`
	Features dsp.FeatureConfig  `toml:"features"`
	Smoother dsp.SmootherConfig `toml:"smoother"`
	Cloud    cloud.Config       `toml:"cloud"`
	Swarm    swarm.Config       `toml:"swarm"`
}

func defaultTuning() tuning {
	return tuning{
		Analyzer: dsp.DefaultAnalyzerConfig(),
		Features: dsp.DefaultFeatureConfig(),
		Smoother: dsp.DefaultSmootherConfig(),
		Cloud:    cloud.DefaultConfig(),
		Swarm:    swarm.DefaultConfig(),
	}
}

// loadTuning reads path over the defaults. An empty path returns the
// defaults.
func loadTuning(path string) (tuning, error) {
	t := defaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, errors.Wrap(err, "failed to read tuning file")
	}

	if err := decodeTuning(data, &t); err != nil {
		return t, errors.Wrapf(err, "failed to parse %s", path)
	}

	return t, nil
}

func decodeTuning(data []byte, t *tuning) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(t); err != nil {
		var details *toml.StrictMissingError
		if errors.As(err, &details) {
			return errors.New(details.String())
		}
		return err
	}

	if t.Window != "" {
		fn := window.ByName(t.Window)
		if fn == nil {
			return errors.Errorf("unknown window %q", t.Window)
		}
		t.Analyzer.Windower = fn
	}

	if t.Analyzer.SampleSize < 32 || t.Analyzer.SampleSize&(t.Analyzer.SampleSize-1) != 0 {
		return errors.Errorf("analyzer.fft_size %d is not a power of two >= 32",
			t.Analyzer.SampleSize)
	}

	if t.Analyzer.MinDecibels >= t.Analyzer.MaxDecibels {
		return errors.New("analyzer.min_decibels must be below max_decibels")
	}

	if t.Swarm.InnerRadius > t.Swarm.OuterRadius {
		return errors.New("swarm.inner_radius is above outer_radius")
	}

	return nil
}

// appConfig merges the command line over the tuning values.
func (cfg *config) appConfig(t tuning) constellation.Config {
	out := constellation.NewZeroConfig()

	out.Capture.Backend = cfg.backend
	out.Capture.Device = cfg.device
	out.Capture.SampleRate = cfg.sampleRate
	out.Capture.Channels = cfg.channelCount
	out.Capture.Analyzer = t.Analyzer
	out.Capture.Features = t.Features

	out.Smoother = t.Smoother
	out.Cloud = t.Cloud
	out.Swarm = t.Swarm

	// validated already
	out.Cloud.Shape, _ = shape.ParseKind(cfg.shapeName)

	if cfg.points > 0 {
		out.Cloud.PointCount = cfg.points
	}

	if cfg.neighbours > 0 {
		out.Cloud.K = cfg.neighbours
	}

	if cfg.noSwarm {
		out.Swarm.Count = 0
	}

	out.FrameRate = cfg.frameRate
	out.Seed = cfg.seed
	out.Playing = !cfg.paused

	return out
}
