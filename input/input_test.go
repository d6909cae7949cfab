package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeBuffers(t *testing.T) {
	bufs := MakeBuffers(2, 512)
	assert.Len(t, bufs, 2)

	cfg := SessionConfig{FrameSize: 2, SampleSize: 512}
	assert.True(t, EnsureBufferLen(cfg, bufs))

	cfg.SampleSize = 256
	assert.False(t, EnsureBufferLen(cfg, bufs))

	cfg.SampleSize, cfg.FrameSize = 512, 1
	assert.False(t, EnsureBufferLen(cfg, bufs))

	// channel buffers must not alias each other.
	bufs[0][511] = 1
	assert.Zero(t, bufs[1][0])
}

type testBackend struct{}

func (testBackend) Init() error  { return nil }
func (testBackend) Close() error { return nil }
func (testBackend) Devices() ([]Device, error) {
	return []Device{testDevice("a"), testDevice("b")}, nil
}
func (testBackend) DefaultDevice() (Device, error)       { return testDevice("a"), nil }
func (testBackend) Start(SessionConfig) (Session, error) { return nil, nil }

type testDevice string

func (d testDevice) String() string { return string(d) }

func TestRegistry(t *testing.T) {
	RegisterBackend("test-registry", testBackend{})

	assert.True(t, HasBackend("test-registry"))
	assert.Contains(t, GetAllBackendNames(), "test-registry")
	assert.Nil(t, FindBackend("missing"))

	_, err := InitBackend("missing")
	assert.Error(t, err)

	b, err := InitBackend("test-registry")
	assert.NoError(t, err)

	d, err := GetDevice(b, "")
	assert.NoError(t, err)
	assert.Equal(t, "a", d.String())

	d, err = GetDevice(b, "b")
	assert.NoError(t, err)
	assert.Equal(t, "b", d.String())

	_, err = GetDevice(b, "c")
	assert.Error(t, err)
}
