// Package knob turns pointer drags into a bounded control value and glides
// that value toward a stored preset on double activation.
package knob

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	DefaultSensitivity   = 0.005
	DefaultGlideSteps    = 10
	DefaultGlideDuration = 250 * time.Millisecond
)

// ErrInvalidConfig wraps every Config validation failure.
var ErrInvalidConfig = errors.New("invalid knob configuration")

// Config holds the tunables of a Controller. Initial and Preset are clamped
// into [0, 1].
type Config struct {
	SensitivityX  float64 // value change per unit of rightward motion
	SensitivityY  float64 // value change per unit of upward motion
	GlideSteps    int
	GlideDuration time.Duration
	Initial       float64
	Preset        float64
}

// DefaultConfig returns equal axis sensitivities and a 10 step, 250ms glide.
func DefaultConfig() Config {
	return Config{
		SensitivityX:  DefaultSensitivity,
		SensitivityY:  DefaultSensitivity,
		GlideSteps:    DefaultGlideSteps,
		GlideDuration: DefaultGlideDuration,
	}
}

func (c Config) validate() error {
	for name, s := range map[string]float64{"x": c.SensitivityX, "y": c.SensitivityY} {
		if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			return fmt.Errorf("%w: sensitivity %s must be finite and non-negative, got %g", ErrInvalidConfig, name, s)
		}
	}
	if c.GlideSteps < 1 {
		return fmt.Errorf("%w: glide steps must be at least 1, got %d", ErrInvalidConfig, c.GlideSteps)
	}
	if c.GlideDuration < 0 {
		return fmt.Errorf("%w: glide duration must not be negative, got %v", ErrInvalidConfig, c.GlideDuration)
	}
	return nil
}

// Option customizes a Controller.
type Option func(*Controller)

// WithScheduler runs glide steps on s instead of the runtime timers.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

type glide struct {
	from  float64
	to    float64
	step  int
	gen   uint64
	timer Timer
}

// Controller owns one knob's state. It is safe for concurrent use; a drag
// always preempts an in-flight glide.
type Controller struct {
	mu    sync.Mutex
	cfg   Config
	sched Scheduler
	state State
	last  Point
	glide glide
	gen   uint64

	listeners []subscription
	nextToken Token
}

type subscription struct {
	token Token
	fn    Listener
}

// NewController validates cfg and returns an idle controller.
func NewController(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	initial := clampUnit(cfg.Initial)
	c := &Controller{
		cfg:   cfg,
		sched: RealTime{},
		state: State{
			Value:  initial,
			Origin: initial,
			Preset: clampUnit(cfg.Preset),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscribe registers fn for every future notification.
func (c *Controller) Subscribe(fn Listener) Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextToken++
	c.listeners = append(c.listeners, subscription{token: c.nextToken, fn: fn})
	return c.nextToken
}

// Unsubscribe removes a listener. Unknown tokens are ignored.
func (c *Controller) Unsubscribe(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.listeners {
		if s.token == t {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// State returns a snapshot of the knob.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Value returns the current control value.
func (c *Controller) Value() float64 {
	return c.State().Value
}

// BeginDrag starts a drag at p. An in-flight glide stops where it is and its
// current value becomes the drag origin.
func (c *Controller) BeginDrag(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == Gliding {
		c.stopGlideLocked()
		c.state.Origin = c.state.Value
	}
	c.state.Phase = Dragging
	c.last = p
}

// MoveDrag applies the motion since the previous pointer position. Rightward
// and upward motion increase the value. Ignored unless dragging.
func (c *Controller) MoveDrag(p Point) {
	c.mu.Lock()
	if c.state.Phase != Dragging {
		c.mu.Unlock()
		return
	}
	dx := p.X - c.last.X
	dy := p.Y - c.last.Y
	c.last = p

	delta := dx*c.cfg.SensitivityX - dy*c.cfg.SensitivityY
	prev := c.state.Value
	c.state.Value = clampUnit(prev + delta)
	c.state.Origin = c.state.Value
	if c.state.Value == prev {
		c.mu.Unlock()
		return
	}
	ev := Event{Kind: Changed, Value: c.state.Value}
	ls := c.listenersLocked()
	c.mu.Unlock()

	notify(ls, ev)
}

// EndDrag finishes a drag normally.
func (c *Controller) EndDrag() {
	c.finishDrag(false)
}

// CancelDrag finishes a drag that the event source aborted. The value stays
// where the last move left it.
func (c *Controller) CancelDrag() {
	c.finishDrag(true)
}

func (c *Controller) finishDrag(canceled bool) {
	c.mu.Lock()
	if c.state.Phase != Dragging {
		c.mu.Unlock()
		return
	}
	c.state.Phase = Idle
	ev := Event{Kind: InteractionEnded, Value: c.state.Value, Canceled: canceled}
	ls := c.listenersLocked()
	c.mu.Unlock()

	notify(ls, ev)
}

// SetPreset stores the glide target, clamped into [0, 1].
func (c *Controller) SetPreset(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Preset = clampUnit(v)
}

// Sync moves the knob to v without notifying listeners, for mirroring a
// value that changed elsewhere. Ignored while the user is dragging.
func (c *Controller) Sync(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == Dragging {
		return
	}
	c.stopGlideLocked()
	c.state.Phase = Idle
	c.state.Value = clampUnit(v)
	c.state.Origin = c.state.Value
}

// ActivatePreset glides from the current value to the preset in
// GlideSteps equal steps spread over GlideDuration. A second activation
// restarts the glide from wherever the first one got to. Ignored while
// dragging. A knob already at its preset settles without notifying.
func (c *Controller) ActivatePreset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == Dragging {
		return
	}
	c.stopGlideLocked()
	if c.state.Value == c.state.Preset {
		c.state.Phase = Idle
		c.state.Origin = c.state.Value
		return
	}
	c.state.Phase = Gliding
	c.gen++
	c.glide = glide{from: c.state.Value, to: c.state.Preset, gen: c.gen}
	c.scheduleStepLocked()
}

func (c *Controller) stepInterval() time.Duration {
	return c.cfg.GlideDuration / time.Duration(c.cfg.GlideSteps)
}

func (c *Controller) scheduleStepLocked() {
	gen := c.glide.gen
	c.glide.timer = c.sched.AfterFunc(c.stepInterval(), func() { c.glideStep(gen) })
}

func (c *Controller) stopGlideLocked() {
	if c.glide.timer != nil {
		c.glide.timer.Stop()
		c.glide.timer = nil
	}
	// Steps already handed to the scheduler see a stale generation.
	c.gen++
	c.glide.gen = 0
}

func (c *Controller) glideStep(gen uint64) {
	c.mu.Lock()
	if c.state.Phase != Gliding || gen == 0 || c.glide.gen != gen {
		c.mu.Unlock()
		return
	}
	c.glide.step++
	prev := c.state.Value
	steps := c.cfg.GlideSteps
	if c.glide.step >= steps {
		c.state.Value = c.glide.to
		c.state.Origin = c.glide.to
		c.state.Phase = Idle
		c.glide.timer = nil
	} else {
		t := float64(c.glide.step) / float64(steps)
		c.state.Value = clampUnit(c.glide.from + (c.glide.to-c.glide.from)*t)
		c.scheduleStepLocked()
	}
	if c.state.Value == prev {
		c.mu.Unlock()
		return
	}
	ev := Event{Kind: Changed, Value: c.state.Value}
	ls := c.listenersLocked()
	c.mu.Unlock()

	notify(ls, ev)
}

func (c *Controller) listenersLocked() []Listener {
	ls := make([]Listener, len(c.listeners))
	for i, s := range c.listeners {
		ls[i] = s.fn
	}
	return ls
}

func notify(ls []Listener, ev Event) {
	for _, fn := range ls {
		fn(ev)
	}
}
