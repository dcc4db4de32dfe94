package visualizer

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultBarCount matches the bar count used when no bin count is requested.
	DefaultBarCount = 64
	// MaxBarCount caps bar counts derived from large FFT bin counts.
	MaxBarCount = 128

	DefaultMinAmplitudeDB = -150.0
	DefaultMaxAmplitudeDB = -10.0

	// ReferenceLevel is the magnitude that maps to 0 dB.
	ReferenceLevel = 12.0
)

// Scale tells Normalize what unit incoming magnitudes are expressed in.
type Scale uint8

const (
	// ScaleLinear magnitudes are converted with 20*log10(m/ReferenceLevel).
	ScaleLinear Scale = iota
	// ScaleDecibel magnitudes are used as-is.
	ScaleDecibel
)

func (s Scale) String() string {
	switch s {
	case ScaleDecibel:
		return "decibel"
	default:
		return "linear"
	}
}

// ErrInvalidConfig is matched by every *ConfigurationError.
var ErrInvalidConfig = errors.New("invalid visualizer configuration")

// ConfigurationError reports a rejected Config field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("visualizer: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Config is an immutable set of normalization bounds. Build it with NewConfig.
type Config struct {
	barCount int
	minDB    float64
	maxDB    float64
	scale    Scale
}

// NewConfig validates the bounds: barCount >= 1 and minDB < maxDB <= 0.
func NewConfig(barCount int, minDB, maxDB float64, scale Scale) (Config, error) {
	if barCount < 1 {
		return Config{}, &ConfigurationError{Field: "bar_count", Reason: fmt.Sprintf("must be at least 1, got %d", barCount)}
	}
	if math.IsNaN(minDB) || math.IsNaN(maxDB) || math.IsInf(minDB, 0) || math.IsInf(maxDB, 0) {
		return Config{}, &ConfigurationError{Field: "amplitude", Reason: "bounds must be finite"}
	}
	if maxDB > 0 {
		return Config{}, &ConfigurationError{Field: "max_amplitude_db", Reason: fmt.Sprintf("must be <= 0, got %g", maxDB)}
	}
	if minDB >= 0 {
		return Config{}, &ConfigurationError{Field: "min_amplitude_db", Reason: fmt.Sprintf("must be < 0, got %g", minDB)}
	}
	if minDB >= maxDB {
		return Config{}, &ConfigurationError{
			Field:  "min_amplitude_db",
			Reason: fmt.Sprintf("must be below max_amplitude_db (%g >= %g)", minDB, maxDB),
		}
	}
	return Config{barCount: barCount, minDB: minDB, maxDB: maxDB, scale: scale}, nil
}

// DefaultConfig returns the 64 bar, -150..-10 dB, linear configuration.
func DefaultConfig() Config {
	return Config{
		barCount: DefaultBarCount,
		minDB:    DefaultMinAmplitudeDB,
		maxDB:    DefaultMaxAmplitudeDB,
		scale:    ScaleLinear,
	}
}

// BarCountForBins picks a bar count from an FFT bin count, capped at MaxBarCount.
func BarCountForBins(bins int) int {
	switch {
	case bins <= 0:
		return DefaultBarCount
	case bins > MaxBarCount-1:
		return MaxBarCount
	default:
		return bins
	}
}

func (c Config) BarCount() int           { return c.barCount }
func (c Config) MinAmplitudeDB() float64 { return c.minDB }
func (c Config) MaxAmplitudeDB() float64 { return c.maxDB }
func (c Config) Scale() Scale            { return c.scale }

// WithBounds returns a copy of c with new dB bounds, validated like NewConfig.
func (c Config) WithBounds(minDB, maxDB float64) (Config, error) {
	return NewConfig(c.barCount, minDB, maxDB, c.scale)
}
