package param

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicateAddress = errors.New("duplicate parameter address")
	ErrInvalidRange     = errors.New("parameter range is empty")
	ErrUnknownAddress   = errors.New("unknown parameter address")
)

// Group is a named set of parameter specs.
type Group struct {
	Identifier string
	Name       string
	Specs      []Spec
}

// Observer is called after a parameter value is stored.
type Observer func(addr Address, plain float64)

// Token identifies an observer registration.
type Token uint64

type observer struct {
	token Token
	addr  Address
	all   bool
	fn    Observer
}

// Tree owns a fixed set of parameters and their observers.
type Tree struct {
	params map[Address]*Parameter
	order  []Address

	mu        sync.Mutex
	observers []observer
	next      Token
}

// NewTree builds a tree, rejecting duplicate addresses and empty ranges.
func NewTree(groups ...Group) (*Tree, error) {
	t := &Tree{
		params: make(map[Address]*Parameter),
	}
	for _, g := range groups {
		for _, s := range g.Specs {
			if _, ok := t.params[s.Address]; ok {
				return nil, fmt.Errorf("%w: %d (%s)", ErrDuplicateAddress, s.Address, s.Identifier)
			}
			if !(s.Max > s.Min) {
				return nil, fmt.Errorf("%w: %s [%g, %g]", ErrInvalidRange, s.Identifier, s.Min, s.Max)
			}
			t.params[s.Address] = newParameter(s, t)
			t.order = append(t.order, s.Address)
		}
	}
	return t, nil
}

// Get returns the parameter at addr or nil.
func (t *Tree) Get(addr Address) *Parameter {
	return t.params[addr]
}

// Lookup is Get with an error for unknown addresses.
func (t *Tree) Lookup(addr Address) (*Parameter, error) {
	p := t.params[addr]
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAddress, addr)
	}
	return p, nil
}

// ByIdentifier finds a parameter by its identifier.
func (t *Tree) ByIdentifier(id string) *Parameter {
	for _, addr := range t.order {
		if p := t.params[addr]; p.Identifier == id {
			return p
		}
	}
	return nil
}

// All returns the parameters in declaration order.
func (t *Tree) All() []*Parameter {
	out := make([]*Parameter, len(t.order))
	for i, addr := range t.order {
		out[i] = t.params[addr]
	}
	return out
}

// Observe registers fn for changes to addr.
func (t *Tree) Observe(addr Address, fn Observer) Token {
	return t.add(observer{addr: addr, fn: fn})
}

// ObserveAll registers fn for changes to every parameter.
func (t *Tree) ObserveAll(fn Observer) Token {
	return t.add(observer{all: true, fn: fn})
}

func (t *Tree) add(o observer) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	o.token = t.next
	t.observers = append(t.observers, o)
	return o.token
}

// Remove drops an observer registration.
func (t *Tree) Remove(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, o := range t.observers {
		if o.token == tok {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Tree) changed(p *Parameter) {
	t.mu.Lock()
	var fns []Observer
	for _, o := range t.observers {
		if o.all || o.addr == p.Address {
			fns = append(fns, o.fn)
		}
	}
	t.mu.Unlock()

	v := p.Value()
	for _, fn := range fns {
		fn(p.Address, v)
	}
}
