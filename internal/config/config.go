// Package config loads knobscope settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/olivier-w/knobscope/internal/knob"
	"github.com/olivier-w/knobscope/internal/tap"
	"github.com/olivier-w/knobscope/internal/visualizer"
)

// Config is the full set of user settings.
type Config struct {
	// Layout is the starting visualizer layout, "linear" or "middle".
	Layout string `toml:"layout"`
	// FrameRate is how many spectrum frames are drawn per second.
	FrameRate int `toml:"frame_rate"`
	// Mock replaces audio with random magnitudes.
	Mock bool `toml:"mock"`

	Visualizer Visualizer      `toml:"visualizer"`
	Knobs      map[string]Knob `toml:"knobs"`
}

// Visualizer holds the spectrum bounds.
type Visualizer struct {
	Bars     int     `toml:"bars"`
	BinCount int     `toml:"bin_count"`
	MinDB    float64 `toml:"min_db"`
	MaxDB    float64 `toml:"max_db"`
	Scale    string  `toml:"scale"` // "linear" or "decibel"
}

// Knob overrides one knob's behavior. Zero fields keep the defaults.
type Knob struct {
	Preset       *float64 `toml:"preset"`
	SensitivityX float64  `toml:"sensitivity_x"`
	SensitivityY float64  `toml:"sensitivity_y"`
	GlideSteps   int      `toml:"glide_steps"`
	GlideMillis  int      `toml:"glide_ms"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	cfg := defaults()
	if err := cfg.Sanitize(); err != nil {
		panic(err)
	}
	return cfg
}

// defaults leaves Bars unset so Sanitize can derive it from BinCount.
func defaults() Config {
	return Config{
		Layout:    "linear",
		FrameRate: 20,
		Visualizer: Visualizer{
			BinCount: int(tap.DefaultBinCount),
			MinDB:    visualizer.DefaultMinAmplitudeDB,
			MaxDB:    visualizer.DefaultMaxAmplitudeDB,
			Scale:    "linear",
		},
		Knobs: map[string]Knob{},
	}
}

// Load reads path over the defaults. Unknown keys are an error so typos
// don't go unnoticed.
func Load(path string) (Config, error) {
	cfg := defaults()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Sanitize(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Sanitize fills gaps with defaults and rejects values nothing can use.
func (c *Config) Sanitize() error {
	switch c.Layout {
	case "":
		c.Layout = "linear"
	case "linear", "middle":
	default:
		return fmt.Errorf("layout %q: want linear or middle", c.Layout)
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 20
	}
	if c.FrameRate > 60 {
		return errors.New("frame_rate above 60 is not supported")
	}
	if c.Visualizer.BinCount == 0 {
		c.Visualizer.BinCount = int(tap.DefaultBinCount)
	}
	if _, err := tap.ParseBinCount(c.Visualizer.BinCount); err != nil {
		return err
	}
	if c.Visualizer.Bars == 0 {
		c.Visualizer.Bars = visualizer.BarCountForBins(c.Visualizer.BinCount)
	}
	if _, err := c.Visualizer.Build(); err != nil {
		return err
	}
	for name, k := range c.Knobs {
		if _, err := knob.NewController(k.Apply(knob.DefaultConfig())); err != nil {
			return fmt.Errorf("knob %s: %w", name, err)
		}
	}
	return nil
}

// Build validates the bounds into a visualizer.Config.
func (v Visualizer) Build() (visualizer.Config, error) {
	var scale visualizer.Scale
	switch strings.ToLower(v.Scale) {
	case "", "linear":
		scale = visualizer.ScaleLinear
	case "decibel", "db":
		scale = visualizer.ScaleDecibel
	default:
		return visualizer.Config{}, fmt.Errorf("visualizer scale %q: want linear or decibel", v.Scale)
	}
	return visualizer.NewConfig(v.Bars, v.MinDB, v.MaxDB, scale)
}

// FrameInterval is the delay between spectrum frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// Knob returns the overrides for name, or the zero Knob.
func (c Config) Knob(name string) Knob {
	return c.Knobs[name]
}

// Apply layers k over base.
func (k Knob) Apply(base knob.Config) knob.Config {
	if k.Preset != nil {
		base.Preset = *k.Preset
	}
	if k.SensitivityX != 0 {
		base.SensitivityX = k.SensitivityX
	}
	if k.SensitivityY != 0 {
		base.SensitivityY = k.SensitivityY
	}
	if k.GlideSteps != 0 {
		base.GlideSteps = k.GlideSteps
	}
	if k.GlideMillis != 0 {
		base.GlideDuration = time.Duration(k.GlideMillis) * time.Millisecond
	}
	return base
}
