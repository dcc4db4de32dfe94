package visualizer

// Visualizer renders normalized bar heights as terminal art.
type Visualizer interface {
	Name() string
	Update(bars []float64, width, height int)
	View() string
}

// Modes returns all available layouts.
func Modes() []Visualizer {
	return []Visualizer{
		NewSpectrum(),
		NewMirror(),
	}
}

// columns reduces bars to at most cols values, keeping the loudest bar of
// each group so narrow peaks survive.
func columns(bars []float64, cols int) []float64 {
	if cols <= 0 || len(bars) == 0 {
		return nil
	}
	if len(bars) <= cols {
		return bars
	}
	out := make([]float64, cols)
	per := float64(len(bars)) / float64(cols)
	for c := range cols {
		lo := int(float64(c) * per)
		hi := int(float64(c+1) * per)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(bars) {
			hi = len(bars)
		}
		peak := 0.0
		for _, v := range bars[lo:hi] {
			if v > peak {
				peak = v
			}
		}
		out[c] = peak
	}
	return out
}
