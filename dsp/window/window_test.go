package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ones(n int) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = 1
	}
	return buf
}

func TestRectangleLeavesBuffer(t *testing.T) {
	buf := ones(16)
	Rectangle()(buf)
	assert.Equal(t, ones(16), buf)
}

func TestTaperedWindows(t *testing.T) {
	for _, name := range []string{"blackman", "hann", "hamming", "lanczos"} {
		fn := ByName(name)
		if !assert.NotNil(t, fn, name) {
			continue
		}

		buf := ones(65)
		fn(buf)

		// every tapered window peaks in the middle and falls off at the edges.
		assert.Greater(t, buf[32], buf[0], name)
		assert.Greater(t, buf[32], buf[64], name)
		assert.InDelta(t, 1.0, buf[32], 1e-9, name)
	}
}

func TestByNameUnknown(t *testing.T) {
	assert.Nil(t, ByName("triangle-ish"))
}
