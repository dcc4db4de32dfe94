package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasPlayer bool) string {
	s := "drag knobs  double-click preset  tab select  ←/→ nudge  enter glide  p store  0 reset  v layout"
	if hasPlayer {
		s += "  space pause  [/] seek  r repeat"
	}
	s += "  q quit"
	return s
}
