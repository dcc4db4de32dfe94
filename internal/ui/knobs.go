package ui

import (
	"fmt"
	"strings"

	"github.com/olivier-w/knobscope/internal/config"
	"github.com/olivier-w/knobscope/internal/knob"
	"github.com/olivier-w/knobscope/internal/param"
	"github.com/olivier-w/knobscope/internal/player"
)

const (
	knobWidth  = 14 // columns per knob cell, including the gap
	knobHeight = 3  // dial, label and value rows
	knobLeft   = 2  // left margin of the knob row
	dialCells  = 10

	// Terminal cells are coarse, so drags move further per cell than the
	// per-point default.
	cellSensitivityX = 0.02
	cellSensitivityY = 0.05
)

// dial binds a knob controller to the parameter it drives.
type dial struct {
	name   string
	param  *param.Parameter
	ctrl   *knob.Controller
	format func(float64) string
}

type dialSpec struct {
	name   string
	addr   param.Address
	format func(float64) string
}

// dialOrder is the left to right order of the knob row. Entries whose
// parameter is missing from the tree are skipped.
var dialOrder = []dialSpec{
	{"volume", player.Volume, nil},
	{"pan", player.Pan, nil},
	{"floor", Floor, formatBound},
	{"ceiling", Ceiling, formatBound},
}

// formatBound shows spectrum bounds without the silence marker the
// decibel unit uses below -120 dB.
func formatBound(v float64) string {
	return fmt.Sprintf("%.0f dB", v)
}

// newDials builds one controller per known parameter in tree. Presets start
// at the parameter defaults unless cfg overrides them.
func newDials(tree *param.Tree, cfg config.Config, sched knob.Scheduler) ([]*dial, error) {
	var dials []*dial
	for _, ds := range dialOrder {
		p := tree.Get(ds.addr)
		if p == nil {
			continue
		}
		kc := knob.DefaultConfig()
		kc.SensitivityX = cellSensitivityX
		kc.SensitivityY = cellSensitivityY
		kc.Initial = p.Normalized()
		kc.Preset = p.Normalize(p.Default)
		kc = cfg.Knob(ds.name).Apply(kc)

		ctrl, err := knob.NewController(kc, knob.WithScheduler(sched))
		if err != nil {
			return nil, fmt.Errorf("knob %s: %w", ds.name, err)
		}
		d := &dial{name: ds.name, param: p, ctrl: ctrl, format: ds.format}
		ctrl.Subscribe(func(ev knob.Event) {
			if ev.Kind == knob.Changed {
				d.param.SetNormalized(ev.Value)
			}
		})
		dials = append(dials, d)
	}
	return dials, nil
}

// nudge moves d by delta as if the parameter were set directly.
func (d *dial) nudge(delta float64) {
	d.param.SetNormalized(d.param.Normalized() + delta)
	d.ctrl.Sync(d.param.Normalized())
}

// reset restores the parameter default and moves the knob with it.
func (d *dial) reset() {
	d.param.Reset()
	d.ctrl.Sync(d.param.Normalized())
}

func (d *dial) display() string {
	if d.format != nil {
		return d.format(d.param.Value())
	}
	return d.param.Format()
}

// dialAt returns the index of the knob under (x, y) given the row's top line,
// or -1.
func dialAt(n, top, x, y int) int {
	if y < top || y >= top+knobHeight || x < knobLeft {
		return -1
	}
	i := (x - knobLeft) / knobWidth
	if i >= n || (x-knobLeft)%knobWidth >= knobWidth-2 {
		return -1
	}
	return i
}

func renderDial(v float64, width int) string {
	filled := int(v*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return knobDialStyle.Render(strings.Repeat("━", filled)) +
		knobIdleStyle.Render(strings.Repeat("─", width-filled))
}

// renderKnobs draws the knob row as knobHeight lines.
func renderKnobs(dials []*dial, selected int) []string {
	rows := make([]string, knobHeight)
	for i, d := range dials {
		st := d.ctrl.State()
		label := d.name
		switch st.Phase {
		case knob.Dragging:
			label += " *"
		case knob.Gliding:
			label += " ~"
		}
		labelStyle := knobLabelStyle
		if i == selected {
			labelStyle = knobSelectedStyle
		}
		value := d.display()
		cells := []string{
			" " + renderDial(st.Value, dialCells) + " ",
			labelStyle.Render(pad(label, knobWidth-2)),
			timeStyle.Render(pad(value, knobWidth-2)),
		}
		for r := range rows {
			rows[r] += cells[r] + "  "
		}
	}
	return rows
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}
