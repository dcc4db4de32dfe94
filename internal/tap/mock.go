package tap

import (
	"math/rand"
	"time"
)

const (
	// MockBins is the frame length of the synthetic source.
	MockBins = 66
	// MockInterval is how often a UI should pull a mock frame.
	MockInterval = 100 * time.Millisecond
	mockCeiling  = 0.1
)

// Mock emits random magnitudes in [0, 0.1] so the visualizer can run with no
// audio device.
type Mock struct {
	rng *rand.Rand
}

// NewMock seeds a mock source. A nil rng uses a time-based seed.
func NewMock(rng *rand.Rand) *Mock {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mock{rng: rng}
}

func (m *Mock) Frame() []float64 {
	f := make([]float64, MockBins)
	for i := range f {
		f[i] = m.rng.Float64() * mockCeiling
	}
	return f
}
