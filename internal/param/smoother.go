package param

// Smoother ramps a value linearly toward its target over a fixed number of
// samples so gain changes don't click.
type Smoother struct {
	current float64
	target  float64
	step    float64
	left    int
	length  int
}

// NewSmoother creates a smoother that takes length samples per ramp.
func NewSmoother(length int, initial float64) *Smoother {
	if length < 1 {
		length = 1
	}
	return &Smoother{current: initial, target: initial, length: length}
}

// SetTarget starts a new ramp from the current value.
func (s *Smoother) SetTarget(v float64) {
	if v == s.target {
		return
	}
	s.target = v
	s.left = s.length
	s.step = (v - s.current) / float64(s.length)
}

// Next advances one sample.
func (s *Smoother) Next() float64 {
	if s.left == 0 {
		return s.current
	}
	s.left--
	if s.left == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Smoothing reports whether a ramp is in progress.
func (s *Smoother) Smoothing() bool { return s.left > 0 }
