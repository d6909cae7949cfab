// Package file plays a decoded wav or mp3 file as if it were a live capture
// device, delivering buffers at real-time pace.
package file

import (
	"context"
	"os"
	"sync"

	"github.com/noriah/constellation/input"
	"github.com/noriah/constellation/input/common/timer"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("file", Backend{})
}

// Backend opens audio files. The device name is the file path.
type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

// Devices lists nothing; any readable path is a device.
func (b Backend) Devices() ([]input.Device, error) {
	return nil, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return nil, errors.New("file backend needs a path, pass one with -d")
}

// ParseDevice accepts any existing path.
func (b Backend) ParseDevice(name string) (input.Device, error) {
	if _, err := os.Stat(name); err != nil {
		return nil, errors.Wrap(err, "failed to stat audio file")
	}
	return Device(name), nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	clip, err := Load(string(dv))
	if err != nil {
		return nil, err
	}

	return NewSession(clip, cfg), nil
}

// Device is a path to an audio file.
type Device string

func (d Device) String() string {
	return string(d)
}

// Session streams a clip, resampled to the session rate by nearest frame.
type Session struct {
	clip *clipCursor
	cfg  input.SessionConfig
}

func NewSession(clip *Clip, cfg input.SessionConfig) *Session {
	return &Session{
		clip: newClipCursor(clip, cfg.SampleRate),
		cfg:  cfg,
	}
}

// Start returns nil once the whole clip has been delivered.
func (s *Session) Start(ctx context.Context, dst [][]input.Sample, kickChan chan bool, mu *sync.Mutex) error {
	if !input.EnsureBufferLen(s.cfg, dst) {
		return errors.New("invalid dst length given")
	}

	return timer.Process(ctx, s.cfg, func() (bool, error) {
		if s.clip.done() {
			return true, nil
		}

		mu.Lock()
		s.clip.fill(dst)
		mu.Unlock()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case kickChan <- true:
		}

		return false, nil
	})
}

type clipCursor struct {
	clip *Clip
	step float64
	pos  float64
}

func newClipCursor(clip *Clip, rate float64) *clipCursor {
	step := 1.0
	if rate > 0 && clip.SampleRate > 0 {
		step = clip.SampleRate / rate
	}
	return &clipCursor{clip: clip, step: step}
}

func (c *clipCursor) done() bool {
	return int(c.pos) >= c.clip.Frames()
}

// fill writes the next len(dst[0]) frames. Channels the clip lacks receive
// the mono mix; frames past the end are zero.
func (c *clipCursor) fill(dst [][]input.Sample) {
	frames := c.clip.Frames()

	for i := range dst[0] {
		idx := int(c.pos)
		c.pos += c.step

		for ch := range dst {
			switch {
			case idx >= frames:
				dst[ch][i] = 0
			case ch < c.clip.Channels && len(dst) == c.clip.Channels:
				dst[ch][i] = c.clip.Data[idx*c.clip.Channels+ch]
			default:
				dst[ch][i] = c.clip.Mono(idx)
			}
		}
	}
}
