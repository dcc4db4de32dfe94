package visualizer

import "github.com/charmbracelet/harmonica"

// springField eases a row of bar heights toward their latest targets.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]float64, n)
	s.vel = make([]float64, n)
}

// step advances bar i one frame and returns its eased height, kept in [0, 1]
// because a spring can overshoot its target.
func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return clip01(p)
}

func (s *springField) ease(targets []float64) []float64 {
	s.resize(len(targets))
	out := make([]float64, len(targets))
	for i, t := range targets {
		out[i] = s.step(i, t)
	}
	return out
}
