// Package param describes host-visible parameters and notifies observers
// when their values change.
package param

import (
	"math"
	"sync/atomic"
)

// Address identifies a parameter inside a Tree.
type Address uint64

// Unit tells formatters how to display a plain value.
type Unit uint8

const (
	Generic Unit = iota
	Percent
	Decibels
	Pan
	Boolean
	MIDINoteNumber
)

// Flags describe how a host may use a parameter.
type Flags uint32

const (
	Readable Flags = 1 << iota
	Writable
	Automatable
	Hidden
)

// DefaultFlags is what a Spec gets when it leaves Flags zero.
const DefaultFlags = Readable | Writable

// Spec is the static description of a parameter.
type Spec struct {
	Address    Address
	Identifier string
	Name       string
	Unit       Unit
	Min        float64
	Max        float64
	Default    float64 // plain value
	Flags      Flags
}

// Parameter is a live parameter. The value is stored normalized so readers
// on an audio thread never block.
type Parameter struct {
	Spec
	value atomic.Uint64
	tree  *Tree
}

func newParameter(s Spec, t *Tree) *Parameter {
	if s.Flags == 0 {
		s.Flags = DefaultFlags
	}
	p := &Parameter{Spec: s, tree: t}
	p.value.Store(math.Float64bits(p.Normalize(s.Default)))
	return p
}

// Normalized returns the value in [0, 1].
func (p *Parameter) Normalized() float64 {
	return math.Float64frombits(p.value.Load())
}

// Value returns the plain value in [Min, Max].
func (p *Parameter) Value() float64 {
	return p.Denormalize(p.Normalized())
}

// SetNormalized stores v (clamped to [0, 1]) and notifies observers.
func (p *Parameter) SetNormalized(v float64) {
	switch {
	case math.IsNaN(v), v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	p.value.Store(math.Float64bits(v))
	if p.tree != nil {
		p.tree.changed(p)
	}
}

// SetValue stores a plain value, clamped to the parameter range.
func (p *Parameter) SetValue(plain float64) {
	p.SetNormalized(p.Normalize(plain))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.SetValue(p.Default)
}

// Normalize maps a plain value into [0, 1].
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min || math.IsNaN(plain) {
		return 0
	}
	n := (plain - p.Min) / (p.Max - p.Min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// Denormalize maps a value in [0, 1] onto [Min, Max].
func (p *Parameter) Denormalize(n float64) float64 {
	return p.Min + n*(p.Max-p.Min)
}

// Format renders the current value for display.
func (p *Parameter) Format() string {
	return FormatValue(p.Unit, p.Value())
}
