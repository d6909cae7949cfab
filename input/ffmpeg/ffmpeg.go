// Package ffmpeg captures through an ffmpeg child process reading an ALSA or
// PulseAudio input.
package ffmpeg

import (
	"fmt"

	"github.com/noriah/constellation/input"
	"github.com/noriah/constellation/input/common/execread"
)

// FFmpegBackend is a device that knows its ffmpeg input arguments.
type FFmpegBackend interface {
	InputArgs() []string
}

// Argv builds the ffmpeg command line for b.
func Argv(b FFmpegBackend, cfg input.SessionConfig) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, b.InputArgs()...)
	args = append(args,
		"-ar", fmt.Sprintf("%.0f", cfg.SampleRate),
		"-ac", fmt.Sprintf("%d", cfg.FrameSize),
		"-f", "f64le",
		"-",
	)
	return args
}

func NewSession(b FFmpegBackend, cfg input.SessionConfig) (*execread.Session, error) {
	return execread.NewSession(Argv(b, cfg), false, cfg), nil
}
