package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time
type frameMsg time.Time
type playbackEndedMsg struct{}

// glideStepMsg carries a knob glide step onto the program goroutine.
type glideStepMsg func()

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func frameCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
