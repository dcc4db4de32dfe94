// Package tap turns buffered PCM into FFT magnitude frames.
package tap

import (
	"errors"
	"fmt"
	"math"

	"github.com/ktye/fft"
)

// ValidBinCount is a supported number of output bins. The FFT size is
// twice the bin count.
type ValidBinCount int

const (
	Bins64  ValidBinCount = 64
	Bins128 ValidBinCount = 128
	Bins256 ValidBinCount = 256
	Bins512 ValidBinCount = 512

	DefaultBinCount = Bins128
)

var ErrBinCount = errors.New("unsupported FFT bin count")

// ParseBinCount validates n against the supported counts.
func ParseBinCount(n int) (ValidBinCount, error) {
	switch b := ValidBinCount(n); b {
	case Bins64, Bins128, Bins256, Bins512:
		return b, nil
	default:
		return 0, fmt.Errorf("%w: %d (want 64, 128, 256 or 512)", ErrBinCount, n)
	}
}

// Source delivers one magnitude frame per call, or nil when no new audio is
// available.
type Source interface {
	Frame() []float64
}

// Tap analyzes the newest window of a RingBuffer.
type Tap struct {
	buf      *RingBuffer
	channels int
	size     int
	fft      fft.FFT
	window   []float64
	work     []complex128
	mags     []float64

	// IsNormalized divides magnitudes by the FFT size. Off by default, so
	// frames carry raw linear magnitudes.
	IsNormalized bool
}

// New creates a tap over buf, which holds interleaved samples with the given
// channel count.
func New(buf *RingBuffer, channels int, bins ValidBinCount) (*Tap, error) {
	if _, err := ParseBinCount(int(bins)); err != nil {
		return nil, err
	}
	if channels < 1 {
		return nil, fmt.Errorf("tap: channel count must be positive, got %d", channels)
	}
	size := int(bins) * 2
	f, err := fft.New(size)
	if err != nil {
		return nil, fmt.Errorf("tap: %w", err)
	}
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return &Tap{
		buf:      buf,
		channels: channels,
		size:     size,
		fft:      f,
		window:   window,
		work:     make([]complex128, size),
		mags:     make([]float64, bins),
	}, nil
}

// BinCount returns the number of magnitudes per frame.
func (t *Tap) BinCount() int { return len(t.mags) }

// Frame mixes the newest window to mono, applies a Hann window and returns
// linear bin magnitudes. It returns nil until a full window is buffered.
// The returned slice is reused by the next call.
func (t *Tap) Frame() []float64 {
	samples := t.buf.Latest(t.size * t.channels)
	if len(samples) < t.size*t.channels {
		return nil
	}
	return t.analyze(samples)
}

func (t *Tap) analyze(samples []int16) []float64 {
	scale := 1 / (32768.0 * float64(t.channels))
	for i := range t.size {
		sum := 0
		for ch := range t.channels {
			sum += int(samples[i*t.channels+ch])
		}
		t.work[i] = complex(float64(sum)*scale*t.window[i], 0)
	}

	out := t.fft.Transform(t.work)
	norm := 1.0
	if t.IsNormalized {
		norm = 1 / float64(t.size)
	}
	for i := range t.mags {
		re, im := real(out[i]), imag(out[i])
		t.mags[i] = math.Sqrt(re*re+im*im) * norm
	}
	return t.mags
}
