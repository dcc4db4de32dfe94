package player

import "github.com/olivier-w/knobscope/internal/param"

// Parameter addresses owned by the player.
const (
	Volume param.Address = 100 + iota
	Pan
)

// Parameters describes the playback controls.
func Parameters() param.Group {
	return param.Group{
		Identifier: "playback",
		Name:       "Playback",
		Specs: []param.Spec{
			{
				Address:    Volume,
				Identifier: "volume",
				Name:       "Volume",
				Unit:       param.Percent,
				Min:        0,
				Max:        1,
				Default:    0.8,
				Flags:      param.DefaultFlags | param.Automatable,
			},
			{
				Address:    Pan,
				Identifier: "pan",
				Name:       "Pan",
				Unit:       param.Pan,
				Min:        -1,
				Max:        1,
				Default:    0,
				Flags:      param.DefaultFlags | param.Automatable,
			},
		},
	}
}
