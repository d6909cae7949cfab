package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noriah/constellation/render"
	"github.com/noriah/constellation/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() config {
	cfg := newZeroConfig()
	cfg.backend = "parec"
	return cfg
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*config)
	}{
		{"no backend", func(c *config) { c.backend = "" }},
		{"bad shape", func(c *config) { c.shapeName = "cube" }},
		{"low rate", func(c *config) { c.sampleRate = 100 }},
		{"three channels", func(c *config) { c.channelCount = 3 }},
		{"zero channels", func(c *config) { c.channelCount = 0 }},
		{"zero fps", func(c *config) { c.frameRate = 0 }},
		{"huge fps", func(c *config) { c.frameRate = 10000 }},
		{"negative points", func(c *config) { c.points = -1 }},
		{"negative neighbours", func(c *config) { c.neighbours = -3 }},
		{"raw without bins", func(c *config) { c.raw, c.rawBins = true, 0 }},
		{"zero zoom", func(c *config) { c.zoom = 0 }},
		{"file with other backend", func(c *config) { c.file = "a.wav" }},
	}

	good := validConfig()
	require.NoError(t, good.validate())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.modify(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateFileSelectsBackend(t *testing.T) {
	cfg := newZeroConfig()
	cfg.file = "song.mp3"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "file", cfg.backend)
	assert.Equal(t, "song.mp3", cfg.device)
}

func TestLoadTuningDefaults(t *testing.T) {
	tune, err := loadTuning("")
	require.NoError(t, err)
	assert.Equal(t, defaultTuning().Cloud, tune.Cloud)
	assert.Equal(t, 512, tune.Analyzer.SampleSize)
}

func TestLoadTuningOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
window = "hann"

[analyzer]
fft_size = 1024

[smoother]
fade_out = 0.1

[cloud]
points = 200
neighbours = 4

[swarm]
count = 50
`), 0o644))

	tune, err := loadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, tune.Analyzer.SampleSize)
	assert.Equal(t, -90.0, tune.Analyzer.MinDecibels)
	assert.NotNil(t, tune.Analyzer.Windower)
	assert.Equal(t, 0.1, tune.Smoother.FadeOutFactor)
	assert.Equal(t, 200, tune.Cloud.PointCount)
	assert.Equal(t, 4, tune.Cloud.K)
	assert.Equal(t, 0.15, tune.Cloud.InterpolationSpeed)
	assert.Equal(t, 50, tune.Swarm.Count)
}

func TestLoadTuningRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "[cloud]\nsparkle = 3\n",
		"fft size":     "[analyzer]\nfft_size = 500\n",
		"decibels":     "[analyzer]\nmin_decibels = -5\n",
		"radius order": "[swarm]\ninner_radius = 300.0\n",
		"syntax":       "[cloud\n",
		"window":       "window = \"triangle\"\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			tune := defaultTuning()
			assert.Error(t, decodeTuning([]byte(body), &tune))
		})
	}

	_, err := loadTuning(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestAppConfig(t *testing.T) {
	cfg := validConfig()
	cfg.shapeName = "HEART"
	cfg.points = 120
	cfg.noSwarm = true
	cfg.paused = true
	require.NoError(t, cfg.validate())

	app := cfg.appConfig(defaultTuning())

	assert.Equal(t, "parec", app.Capture.Backend)
	assert.Equal(t, shape.Heart, app.Cloud.Shape)
	assert.Equal(t, 120, app.Cloud.PointCount)
	assert.Equal(t, 6, app.Cloud.K)
	assert.Equal(t, 0, app.Swarm.Count)
	assert.False(t, app.Playing)
	assert.Equal(t, cfg.frameRate, app.FrameRate)
}

func TestRawOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewRawOutput(&buf, 4, 60)

	f := &render.Frame{Tick: 3, Amplitude: 0.5, Bins: []float64{0.1, 0.2, 0.4, 0.3, 0, 0, 0.8, 0.1}}
	require.NoError(t, out.Write(f))

	fields := strings.Fields(buf.String())
	require.Len(t, fields, 6)
	assert.Equal(t, "3", fields[0])
	assert.Equal(t, "0.5000", fields[1])
	// one value below the scaling threshold keeps the scale at 100
	assert.Equal(t, "20.00", fields[2])
	assert.Equal(t, "40.00", fields[3])
	assert.Equal(t, "0.00", fields[4])
	assert.Equal(t, "80.00", fields[5])

	buf.Reset()
	require.NoError(t, out.Write(&render.Frame{Tick: 4}))
	assert.Equal(t, "4 0.0000 0.00 0.00 0.00 0.00\n", buf.String())
}
