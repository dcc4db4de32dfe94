package visualizer

import (
	"strings"

	"github.com/muesli/termenv"
)

// Mirror draws bars centered on the middle row, growing up and down, with a
// hue that slowly rotates and brightness that follows each bar's level.
type Mirror struct {
	smooth springField
	hue    float64
	output string
	shades *shades
}

// NewMirror creates the centered bar layout.
func NewMirror() *Mirror {
	return &Mirror{
		smooth: newSpringField(20, 9.0, 0.9),
		hue:    0.6,
		shades: newShades(termenv.EnvColorProfile()),
	}
}

func (m *Mirror) Name() string { return "middle" }

func (m *Mirror) Update(bars []float64, width, height int) {
	if width < 4 || height < 1 || len(bars) == 0 {
		m.output = ""
		return
	}

	colWidth, gap, cols := layoutColumns(len(bars), width-2)
	levels := m.smooth.ease(columns(bars, cols))
	m.hue += 1.0 / 3600

	// Each bar covers 2*level*half half-cells around the center line.
	half := float64(height) / 2
	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		paint := m.shades.brush(&line)
		top := float64(row)
		for c, level := range levels {
			if c > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			lo := half - level*half
			hi := half + level*half
			ch := mirrorCell(top, lo, hi)
			if ch != ' ' {
				paint.set(hueColor(m.hue, level))
			}
			for range colWidth {
				line.WriteRune(ch)
			}
		}
		paint.end()
		rows[row] = line.String()
	}
	m.output = strings.Join(rows, "\n")
}

// mirrorCell picks the glyph for the cell spanning [top, top+1) given the
// filled interval [lo, hi).
func mirrorCell(top, lo, hi float64) rune {
	upper := top+0.5 > lo && top < hi
	lower := top+1 > lo && top+0.5 < hi
	switch {
	case upper && lower:
		return '█'
	case upper:
		return '▀'
	case lower:
		return '▄'
	default:
		return ' '
	}
}

func (m *Mirror) View() string {
	return m.output
}
