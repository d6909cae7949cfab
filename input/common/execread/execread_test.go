package execread

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/noriah/constellation/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFloat32(t *testing.T, values []float32) string {
	t.Helper()

	buf := make([]byte, 0, len(values)*4)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}

	path := filepath.Join(t.TempDir(), "pcm.raw")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestSessionReadsUntilEOF(t *testing.T) {
	cat, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	// two stereo buffers of four frames
	values := make([]float32, 16)
	for i := range values {
		values[i] = float32(i) / 16
	}

	// a low rate keeps the read deadline far away
	cfg := input.SessionConfig{FrameSize: 2, SampleSize: 4, SampleRate: 8}
	s := NewSession([]string{cat, writeFloat32(t, values)}, true, cfg)
	s.DisconnectedStderr = true

	started := false
	s.OnStart = func(ctx context.Context, cmd *exec.Cmd) error {
		started = cmd.Process != nil
		return nil
	}

	dst := input.MakeBuffers(2, 4)
	kick := make(chan bool, 4)
	mu := &sync.Mutex{}

	require.NoError(t, s.Start(context.Background(), dst, kick, mu))
	assert.True(t, started)
	assert.Len(t, kick, 2)

	// the second buffer is left in dst, deinterleaved
	assert.InDeltaSlice(t, []float64{8. / 16, 10. / 16, 12. / 16, 14. / 16}, dst[0], 1e-6)
	assert.InDeltaSlice(t, []float64{9. / 16, 11. / 16, 13. / 16, 15. / 16}, dst[1], 1e-6)
}

func TestSessionRejectsBadBuffers(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 2, SampleSize: 4, SampleRate: 44100}
	s := NewSession([]string{"cat"}, true, cfg)

	err := s.Start(context.Background(), input.MakeBuffers(1, 4), make(chan bool, 1), &sync.Mutex{})
	assert.Error(t, err)
}

func TestNewSessionPanicsWithoutArgv(t *testing.T) {
	assert.Panics(t, func() {
		NewSession(nil, true, input.SessionConfig{})
	})
}

func TestArgv(t *testing.T) {
	s := NewSession([]string{"parec", "-d", "x"}, true, input.SessionConfig{})
	assert.Equal(t, []string{"parec", "-d", "x"}, s.Argv())
}
