package parec

import (
	"testing"

	"github.com/noriah/constellation/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	cfg := input.SessionConfig{
		Device:     PulseDevice("monitor"),
		FrameSize:  1,
		SampleSize: 512,
		SampleRate: 44100,
	}

	s, err := NewSession(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"parec", "--format=float32le", "--rate=44100", "--channels=1", "-d", "monitor",
	}, s.Argv())
}

func TestNewSessionRejects(t *testing.T) {
	_, err := NewSession(input.SessionConfig{Device: fakeDevice{}, FrameSize: 1})
	assert.Error(t, err)

	_, err = NewSession(input.SessionConfig{Device: PulseDevice("x"), FrameSize: 3})
	assert.Error(t, err)
}

type fakeDevice struct{}

func (fakeDevice) String() string { return "fake" }
