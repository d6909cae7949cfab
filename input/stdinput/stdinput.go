// Package stdinput reads interleaved float32le frames from standard input.
package stdinput

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/noriah/constellation/input"
	"github.com/noriah/constellation/input/common/pcm"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("stdin", StdinBackend{})
}

type StdinBackend struct{}

func (b StdinBackend) Init() error {
	return nil
}

func (b StdinBackend) Close() error {
	return nil
}

func (b StdinBackend) Devices() ([]input.Device, error) {
	return []input.Device{StdInputDevice{}}, nil
}

func (b StdinBackend) DefaultDevice() (input.Device, error) {
	return StdInputDevice{}, nil
}

func (b StdinBackend) Start(config input.SessionConfig) (input.Session, error) {
	return NewSession(os.Stdin, config), nil
}

type StdInputDevice struct{}

func (d StdInputDevice) String() string {
	return "stdin"
}

// Session reads from any reader, os.Stdin for the registered backend. If
// the reader is an io.Closer the session closes it when ctx is done, which
// unblocks a pending read.
type Session struct {
	r   io.Reader
	cfg input.SessionConfig
}

func NewSession(r io.Reader, cfg input.SessionConfig) *Session {
	return &Session{r: r, cfg: cfg}
}

func (s *Session) Start(ctx context.Context, dst [][]input.Sample, kickChan chan bool, mu *sync.Mutex) error {
	if !input.EnsureBufferLen(s.cfg, dst) {
		return errors.New("invalid dst length given")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c, ok := s.r.(io.Closer); ok {
		go func() {
			<-ctx.Done()
			c.Close()
		}()
	}

	reader := pcm.NewReader(false)
	raw := make([]byte, s.cfg.SampleSize*s.cfg.FrameSize*reader.Width())

	// The read runs apart from the kick loop so a reader that never returns
	// cannot hold Start past cancellation. raw is only touched by one side at
	// a time: the reader hands it over on results and waits on next.
	results := make(chan error)
	next := make(chan struct{})

	go func() {
		for {
			_, err := io.ReadFull(s.r, raw)

			select {
			case <-ctx.Done():
				return
			case results <- err:
			}

			if err != nil {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-next:
			}
		}
	}()

	for {
		var err error

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-results:
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return errors.Wrap(err, "failed to read stdin")
		}

		mu.Lock()
		reader.Deinterleave(raw, dst)
		mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case kickChan <- true:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case next <- struct{}{}:
		}
	}
}
