package knob

import "math"

// Phase is where a knob sits in its interaction state machine.
type Phase uint8

const (
	Idle Phase = iota
	Dragging
	Gliding
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Gliding:
		return "gliding"
	default:
		return "idle"
	}
}

// Point is a pointer position in whatever units the event source uses
// (pixels, terminal cells).
type Point struct {
	X, Y float64
}

// State is a snapshot of a knob. All values are in [0, 1].
type State struct {
	Value  float64
	Origin float64 // last committed value; a drag that preempts a glide starts here
	Preset float64
	Phase  Phase
}

// EventKind distinguishes notifications sent to listeners.
type EventKind uint8

const (
	// Changed carries a new Value.
	Changed EventKind = iota
	// InteractionEnded is sent when a drag ends or is cancelled.
	InteractionEnded
)

func (k EventKind) String() string {
	if k == InteractionEnded {
		return "interaction-ended"
	}
	return "changed"
}

// Event is delivered to every subscribed Listener.
type Event struct {
	Kind     EventKind
	Value    float64
	Canceled bool // InteractionEnded only: the drag was cancelled, not released
}

// Listener receives knob notifications. It is never called with the
// controller's lock held, so it may call back into the controller.
type Listener func(Event)

// Token identifies a subscription.
type Token uint64

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
