package player

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/tap"
)

// rampFrames is how long a gain or pan change takes to settle.
const rampFrames = 256

// stage sits between the decoder and oto. It applies gain and balance,
// widens mono to stereo and copies every block it produces into the tap
// buffer.
type stage struct {
	src      io.Reader
	channels int
	tee      *tap.RingBuffer

	mu   sync.Mutex
	gain *param.Smoother
	pan  *param.Smoother

	carry   []byte // partial source frame from the previous read
	in      []byte
	samples []int16
}

func newStage(src io.Reader, channels int, tee *tap.RingBuffer, gain, pan float64) *stage {
	return &stage{
		src:      src,
		channels: channels,
		tee:      tee,
		gain:     param.NewSmoother(rampFrames, gain),
		pan:      param.NewSmoother(rampFrames, pan),
	}
}

func (s *stage) setGain(v float64) {
	s.mu.Lock()
	s.gain.SetTarget(v)
	s.mu.Unlock()
}

func (s *stage) setPan(v float64) {
	s.mu.Lock()
	s.pan.SetTarget(v)
	s.mu.Unlock()
}

// reset drops buffered partial frames after a seek.
func (s *stage) reset() {
	s.mu.Lock()
	s.carry = nil
	s.mu.Unlock()
	if s.tee != nil {
		s.tee.Clear()
	}
}

// Read fills p with stereo 16-bit frames.
func (s *stage) Read(p []byte) (int, error) {
	frames := len(p) / (OutputChannels * 2)
	if frames == 0 {
		return 0, nil
	}
	srcFrame := s.channels * 2
	want := frames * srcFrame

	s.mu.Lock()
	defer s.mu.Unlock()

	if cap(s.in) < want {
		s.in = make([]byte, want)
	}
	in := s.in[:want]
	n := copy(in, s.carry)
	s.carry = nil
	m, err := s.src.Read(in[n:])
	n += m

	whole := n - n%srcFrame
	if whole < n {
		s.carry = append([]byte(nil), in[whole:n]...)
	}
	got := whole / srcFrame
	if got == 0 {
		return 0, err
	}

	if cap(s.samples) < got*OutputChannels {
		s.samples = make([]int16, got*OutputChannels)
	}
	out := s.samples[:got*OutputChannels]
	for i := range got {
		var l, r int16
		if s.channels == 1 {
			l = int16(binary.LittleEndian.Uint16(in[i*2:]))
			r = l
		} else {
			l = int16(binary.LittleEndian.Uint16(in[i*srcFrame:]))
			r = int16(binary.LittleEndian.Uint16(in[i*srcFrame+2:]))
		}
		g := s.gain.Next()
		lg, rg := balance(s.pan.Next())
		out[i*2] = scale(l, g*lg)
		out[i*2+1] = scale(r, g*rg)
	}
	for i, v := range out {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(v))
	}
	if s.tee != nil {
		s.tee.Write(out)
	}
	return got * OutputChannels * 2, err
}

// balance returns left and right multipliers for pan in [-1, 1]. The
// centered position leaves both channels untouched.
func balance(pan float64) (l, r float64) {
	pan = max(-1, min(pan, 1))
	if pan > 0 {
		return 1 - pan, 1
	}
	return 1, 1 + pan
}

func scale(v int16, g float64) int16 {
	x := float64(v) * g
	if x > 32767 {
		return 32767
	}
	if x < -32768 {
		return -32768
	}
	return int16(x)
}
