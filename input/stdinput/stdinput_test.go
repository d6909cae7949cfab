package stdinput

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/noriah/constellation/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionReadsFrames(t *testing.T) {
	cfg := input.SessionConfig{
		Device:     StdInputDevice{},
		FrameSize:  1,
		SampleSize: 4,
		SampleRate: 44100,
	}

	var raw bytes.Buffer
	for i := 0; i < 8; i++ {
		binary.Write(&raw, binary.LittleEndian, math.Float32bits(float32(i)/8))
	}

	dst := input.MakeBuffers(1, 4)
	kick := make(chan bool, 4)
	var mu sync.Mutex

	err := NewSession(&raw, cfg).Start(context.Background(), dst, kick, &mu)
	require.NoError(t, err)

	assert.Len(t, kick, 2)
	assert.InDeltaSlice(t, []float64{0.5, 0.625, 0.75, 0.875}, dst[0], 1e-6)
}

func TestSessionRejectsBuffers(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 2, SampleSize: 4}
	err := NewSession(&bytes.Buffer{}, cfg).Start(
		context.Background(), input.MakeBuffers(1, 4), make(chan bool), &sync.Mutex{})
	assert.Error(t, err)
}

// readOnly hides Close so the session cannot unblock the read itself.
type readOnly struct {
	io.Reader
}

func TestSessionStopsWhileReadBlocks(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 1, SampleSize: 4, SampleRate: 44100}

	readers := map[string]func(*io.PipeReader) io.Reader{
		"closer":     func(r *io.PipeReader) io.Reader { return r },
		"not closer": func(r *io.PipeReader) io.Reader { return readOnly{r} },
	}

	for name, wrap := range readers {
		t.Run(name, func(t *testing.T) {
			pr, pw := io.Pipe()
			t.Cleanup(func() { pw.Close() })

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)

			go func() {
				errCh <- NewSession(wrap(pr), cfg).Start(
					ctx, input.MakeBuffers(1, 4), make(chan bool), &sync.Mutex{})
			}()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-errCh:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("Start did not return after cancel")
			}
		})
	}
}

func TestSessionClosesReaderOnCancel(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 1, SampleSize: 4, SampleRate: 44100}
	pr, pw := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSession(pr, cfg).Start(ctx, input.MakeBuffers(1, 4), make(chan bool), &sync.Mutex{})
	}()

	cancel()
	<-done

	// writes fail once the read side has been closed
	require.Eventually(t, func() bool {
		_, err := pw.Write([]byte{0})
		return errors.Is(err, io.ErrClosedPipe)
	}, 2*time.Second, 10*time.Millisecond)
}
