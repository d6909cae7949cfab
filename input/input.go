// Package input provides audio capture backends and the session contract
// they share.
package input

import (
	"context"
	"sync"
)

// Sample is the datatype we want from our inputs
type Sample = float64

// Device is a capture device a backend can open.
type Device interface {
	// String should return a human-readable name of the device.
	String() string
}

// SessionConfig is the configuration for an input session.
type SessionConfig struct {
	Device     Device  // the device to capture from
	FrameSize  int     // number of channels per frame
	SampleSize int     // number of frames per buffer write
	SampleRate float64 // sample rate
}

// Session is a running capture.
type Session interface {
	// Start runs the capture until ctx is done or the source fails. Every
	// time dst has been filled with a full buffer under mu, Start sends on
	// kickChan.
	Start(ctx context.Context, dst [][]Sample, kickChan chan bool, mu *sync.Mutex) error
}

// MakeBuffers allocates a slice of sample buffers, one per channel.
func MakeBuffers(channels, samples int) [][]Sample {
	buf := make([]Sample, channels*samples)
	bufs := make([][]Sample, channels)

	for i := range bufs {
		bufs[i] = buf[i*samples : (i+1)*samples]
	}

	return bufs
}

// EnsureBufferLen ensures the buffer is of the right length for the config.
func EnsureBufferLen(cfg SessionConfig, buf [][]Sample) bool {
	if len(buf) != cfg.FrameSize {
		return false
	}

	for _, b := range buf {
		if len(b) != cfg.SampleSize {
			return false
		}
	}

	return true
}
