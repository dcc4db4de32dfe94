package ui

import (
	"math"

	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/visualizer"
)

// Display parameter addresses.
const (
	Floor param.Address = 200 + iota
	Ceiling
)

// DisplayParameters exposes the spectrum bounds of cfg as knob targets.
// Ranges widen to include the configured bounds.
func DisplayParameters(cfg visualizer.Config) param.Group {
	return param.Group{
		Identifier: "display",
		Name:       "Display",
		Specs: []param.Spec{
			{
				Address:    Floor,
				Identifier: "floor",
				Name:       "Floor",
				Unit:       param.Decibels,
				Min:        math.Min(-160, cfg.MinAmplitudeDB()),
				Max:        math.Max(-20, cfg.MinAmplitudeDB()),
				Default:    cfg.MinAmplitudeDB(),
			},
			{
				Address:    Ceiling,
				Identifier: "ceiling",
				Name:       "Ceiling",
				Unit:       param.Decibels,
				Min:        math.Min(-80, cfg.MaxAmplitudeDB()),
				Max:        math.Max(0, cfg.MaxAmplitudeDB()),
				Default:    cfg.MaxAmplitudeDB(),
			},
		},
	}
}
