package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/knobscope/internal/knob"
)

// programScheduler hands knob glide steps to the bubbletea loop so knob
// listeners only ever run on the program goroutine.
type programScheduler struct {
	steps chan func()
	done  chan struct{}
}

func newProgramScheduler() *programScheduler {
	return &programScheduler{
		steps: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

func (s *programScheduler) AfterFunc(d time.Duration, f func()) knob.Timer {
	return time.AfterFunc(d, func() {
		select {
		case s.steps <- f:
		case <-s.done:
		}
	})
}

// close releases timers that fire after the program has quit.
func (s *programScheduler) close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func waitForGlide(s *programScheduler) tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-s.steps:
			return glideStepMsg(f)
		case <-s.done:
			return nil
		}
	}
}
