// Package timer paces a source that can produce audio faster than real time
// so that buffers are delivered at the rate a live device would.
package timer

import (
	"context"
	"time"

	"github.com/noriah/constellation/input"
)

// Interval is the real-time duration of one buffer of cfg.SampleSize frames.
func Interval(cfg input.SessionConfig) time.Duration {
	return time.Duration(float64(cfg.SampleSize) / cfg.SampleRate * float64(time.Second))
}

// Process calls fill once per interval until fill returns an error or ctx is
// done. A fill that returns done=true ends the loop without an error.
func Process(ctx context.Context, cfg input.SessionConfig, fill func() (done bool, err error)) error {
	ticker := time.NewTicker(Interval(cfg))
	defer ticker.Stop()

	for {
		done, err := fill()
		if err != nil || done {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
