package param

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FormatValue renders a plain value in the given unit.
func FormatValue(u Unit, v float64) string {
	switch u {
	case Percent:
		return fmt.Sprintf("%.0f%%", v*100)
	case Decibels:
		if v <= -120 {
			return "-∞ dB"
		}
		return fmt.Sprintf("%.1f dB", v)
	case Pan:
		switch {
		case math.Abs(v) < 0.005:
			return "C"
		case v < 0:
			return fmt.Sprintf("L%.0f", -v*100)
		default:
			return fmt.Sprintf("R%.0f", v*100)
		}
	case Boolean:
		if v >= 0.5 {
			return "on"
		}
		return "off"
	case MIDINoteNumber:
		n := int(math.Round(v))
		if n < 0 || n > 127 {
			return fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("%s%d", noteNames[n%12], n/12-1)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
