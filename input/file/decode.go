package file

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for files that are neither wav nor mp3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Clip is a fully decoded audio file with samples normalized to [-1, 1].
type Clip struct {
	SampleRate float64
	Channels   int
	// Data holds interleaved frames.
	Data []float64
}

// Frames returns the number of frames in the clip.
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// Mono returns the mean of every channel of frame i.
func (c *Clip) Mono(i int) float64 {
	frame := c.Data[i*c.Channels : (i+1)*c.Channels]

	var sum float64
	for _, v := range frame {
		sum += v
	}
	return sum / float64(c.Channels)
}

// Load decodes the file at path, choosing the decoder by extension.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio file")
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return DecodeWAV(f)
	case ".mp3":
		return DecodeMP3(f)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

// DecodeWAV reads a whole PCM wav stream.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "reading WAV PCM data")
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	if depth <= 0 || depth > 32 {
		return nil, errors.Errorf("unsupported WAV bit depth %d", depth)
	}

	clip := &Clip{
		SampleRate: float64(buf.Format.SampleRate),
		Channels:   buf.Format.NumChannels,
		Data:       make([]float64, len(buf.Data)),
	}

	full := float64(int64(1) << uint(depth-1))
	for i, v := range buf.Data {
		// 8-bit WAV is unsigned
		if depth == 8 {
			v -= 128
		}
		clip.Data[i] = float64(v) / full
	}

	return clip, nil
}

// DecodeMP3 reads a whole mp3 stream. The decoder always yields 16-bit
// stereo.
func DecodeMP3(r io.Reader) (*Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mp3 decoder")
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode mp3")
	}

	clip := &Clip{
		SampleRate: float64(dec.SampleRate()),
		Channels:   2,
		Data:       make([]float64, len(raw)/2),
	}

	for i := range clip.Data {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		clip.Data[i] = float64(v) / 32768
	}

	return clip, nil
}
