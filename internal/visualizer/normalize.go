package visualizer

import "math"

// Normalize converts one magnitude frame into bar heights in [0, 1].
//
// Each bin is handled independently: NaN becomes 0, linear magnitudes are
// converted to dB relative to ReferenceLevel, then the dB value is mapped
// onto [MinAmplitudeDB, MaxAmplitudeDB] and clipped. The result has the same
// length as frame. Applying Normalize to its own output does not give the
// same output back.
func Normalize(frame []float64, cfg Config) []float64 {
	out := make([]float64, len(frame))
	normalizeInto(out, frame, cfg)
	return out
}

// Bars is Normalize padded or truncated to cfg.BarCount(). Bars past the end
// of frame are 0.
func Bars(frame []float64, cfg Config) []float64 {
	out := make([]float64, cfg.barCount)
	n := len(frame)
	if n > len(out) {
		n = len(out)
	}
	normalizeInto(out[:n], frame[:n], cfg)
	return out
}

func normalizeInto(dst, frame []float64, cfg Config) {
	span := cfg.maxDB - cfg.minDB
	if span <= 0 {
		// Zero-value Config; NewConfig never produces this.
		clear(dst)
		return
	}
	factor := 1 / span
	offset := -cfg.minDB / span

	for i, m := range frame {
		if math.IsNaN(m) {
			// Silence in either scale.
			dst[i] = 0
			continue
		}
		db := m
		if cfg.scale == ScaleLinear {
			db = toDecibels(m)
		}
		dst[i] = clip01(db*factor + offset)
	}
}

// toDecibels returns 20*log10(m/ReferenceLevel). Zero maps to -Inf and
// negative input is treated as its magnitude.
func toDecibels(m float64) float64 {
	return 20 * math.Log10(math.Abs(m)/ReferenceLevel)
}

func clip01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
