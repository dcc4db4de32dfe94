package visualizer

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Gradient of the linear layout, from the floor to full scale.
var (
	levelBreaks = []float64{0, 0.4, 0.75, 1}
	levelStops  = []colorful.Color{
		{R: 0.12, G: 0.24, B: 0.55},
		{R: 0.16, G: 0.67, B: 1.00},
		{R: 0.98, G: 0.86, B: 0.35},
		{R: 0.96, G: 0.31, B: 0.27},
	}
)

// levelColor runs from a cool blue at the floor to a hot red at full scale.
func levelColor(t float64) colorful.Color {
	t = clip01(t)
	for i := 1; i < len(levelBreaks); i++ {
		if t <= levelBreaks[i] {
			span := levelBreaks[i] - levelBreaks[i-1]
			return levelStops[i-1].BlendLab(levelStops[i], (t-levelBreaks[i-1])/span).Clamped()
		}
	}
	return levelStops[len(levelStops)-1]
}

// hueColor tints the middle layout. hue is in turns and wraps; louder bars
// are brighter.
func hueColor(hue, level float64) colorful.Color {
	deg := math.Mod(hue, 1) * 360
	if deg < 0 {
		deg += 360
	}
	return colorful.Hsv(deg, 0.75, 0.35+clip01(level)*0.65)
}

// maxShades bounds the escape cache; the middle layout's hue drifts every
// frame.
const maxShades = 4096

// shades turns colors into foreground escapes for one terminal profile.
type shades struct {
	profile termenv.Profile
	seqs    map[string]string
}

func newShades(p termenv.Profile) *shades {
	return &shades{profile: p, seqs: make(map[string]string)}
}

func (s *shades) sequence(c colorful.Color) string {
	hex := c.Hex()
	if seq, ok := s.seqs[hex]; ok {
		return seq
	}
	if len(s.seqs) >= maxShades {
		clear(s.seqs)
	}
	var seq string
	if code := s.profile.Color(hex).Sequence(false); code != "" {
		seq = termenv.CSI + code + "m"
	}
	s.seqs[hex] = seq
	return seq
}

// brush paints one row, writing an escape only when the color changes.
type brush struct {
	shades *shades
	sb     *strings.Builder
	last   string
}

func (s *shades) brush(sb *strings.Builder) brush {
	return brush{shades: s, sb: sb}
}

func (b *brush) set(c colorful.Color) {
	seq := b.shades.sequence(c)
	if seq == b.last {
		return
	}
	b.sb.WriteString(seq)
	b.last = seq
}

// end resets the terminal color if the row changed it.
func (b *brush) end() {
	if b.last == "" {
		return
	}
	b.sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	b.last = ""
}
