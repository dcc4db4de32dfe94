package knob

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. A controller runs every glide step through
// a single Scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealTime schedules on the runtime timer goroutines.
type RealTime struct{}

func (RealTime) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
