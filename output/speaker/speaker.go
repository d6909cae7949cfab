// Package speaker plays the captured signal back through the default audio
// output, so a decoded file can be heard while it drives the visual.
package speaker

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

var (
	otoOnce    sync.Once
	otoCtx     *oto.Context
	otoRate    int
	otoInitErr error
)

// oto allows one context per process.
func initOto(rate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}

		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoRate = rate
		}
	})

	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoRate != rate {
		return nil, errors.Errorf("audio output already open at %d Hz", otoRate)
	}

	return otoCtx, nil
}

// Speaker is a mono float32 output.
type Speaker struct {
	buf    *stream
	player *oto.Player
}

// New opens the default output at sampleRate. latency bounds how much
// audio may queue before the oldest samples are dropped.
func New(sampleRate float64, latency time.Duration) (*Speaker, error) {
	ctx, err := initOto(int(sampleRate))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio output")
	}

	maxBytes := int(latency.Seconds()*sampleRate) * 4
	s := &Speaker{buf: newStream(maxBytes)}

	s.player = ctx.NewPlayer(s.buf)
	s.player.Play()

	return s, nil
}

// Write queues samples for playback.
func (s *Speaker) Write(samples []float64) error {
	if err := s.player.Err(); err != nil {
		return errors.Wrap(err, "audio output failed")
	}

	s.buf.write(samples)
	return nil
}

// Close stops playback.
func (s *Speaker) Close() error {
	return s.player.Close()
}

// stream is the reader the player pulls from. An underrun reads silence
// rather than blocking the audio thread.
type stream struct {
	mu   sync.Mutex
	data []byte
	max  int
}

func newStream(max int) *stream {
	if max < 4 {
		max = 4
	}
	return &stream{max: max - max%4}
}

func (s *stream) write(samples []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range samples {
		s.data = binary.LittleEndian.AppendUint32(s.data, math.Float32bits(float32(v)))
	}

	if over := len(s.data) - s.max; over > 0 {
		s.data = append(s.data[:0], s.data[over:]...)
	}
}

func (s *stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.data)
	s.data = append(s.data[:0], s.data[n:]...)

	for i := n; i < len(p); i++ {
		p[i] = 0
	}

	return len(p), nil
}

func (s *stream) buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
