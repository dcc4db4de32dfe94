package visualizer

import (
	"strings"

	"github.com/muesli/termenv"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Spectrum draws bars rising from the bottom edge, colored by row height.
type Spectrum struct {
	smooth springField
	output string
	shades *shades
}

// NewSpectrum creates the bottom-anchored bar layout.
func NewSpectrum() *Spectrum {
	return &Spectrum{
		smooth: newSpringField(20, 9.0, 0.9),
		shades: newShades(termenv.EnvColorProfile()),
	}
}

func (s *Spectrum) Name() string { return "linear" }

func (s *Spectrum) Update(bars []float64, width, height int) {
	if width < 4 || height < 1 || len(bars) == 0 {
		s.output = ""
		return
	}

	colWidth, gap, cols := layoutColumns(len(bars), width-2)
	levels := s.smooth.ease(columns(bars, cols))

	rows := make([]string, height)
	for row := range height {
		var line strings.Builder
		paint := s.shades.brush(&line)
		rowFromBottom := float64(height - 1 - row)
		for c, level := range levels {
			if c > 0 && gap > 0 {
				line.WriteByte(' ')
			}
			h := level * float64(height)
			idx := 0
			if h >= rowFromBottom+1 {
				idx = len(barChars) - 1
			} else if h > rowFromBottom {
				idx = int((h - rowFromBottom) * float64(len(barChars)-1))
			}
			if idx > 0 {
				paint.set(levelColor((rowFromBottom+1)/float64(height)))
			}
			ch := barChars[idx]
			for range colWidth {
				line.WriteRune(ch)
			}
		}
		paint.end()
		rows[row] = line.String()
	}
	s.output = strings.Join(rows, "\n")
}

func (s *Spectrum) View() string {
	return s.output
}

// layoutColumns fits n bars into width cells, returning the cell width of a
// bar, the gap between bars and how many bars are drawn.
func layoutColumns(n, width int) (colWidth, gap, cols int) {
	if width < 1 {
		width = 1
	}
	cols = n
	if cols > width {
		cols = width
	}
	gap = 1
	colWidth = (width - (cols-1)*gap) / cols
	if colWidth < 1 {
		gap = 0
		colWidth = width / cols
		if colWidth < 1 {
			colWidth = 1
		}
	}
	return colWidth, gap, cols
}
