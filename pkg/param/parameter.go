package param

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrOutOfBounds is returned when a value lies outside a parameter's bounds.
var ErrOutOfBounds = errors.New("value out of bounds")

// Listener is notified after a parameter value changed. Index is -1 when
// every dimension changed at once.
type Listener func(p *Parameter, index int)

// Parameter is a named real vector with optional bounds.
type Parameter struct {
	name      string
	values    []float64
	stored    []float64
	lower     float64
	upper     float64
	listeners []Listener
}

// Option configures a Parameter.
type Option func(*Parameter)

// WithBounds sets inclusive lower and upper bounds.
func WithBounds(lower, upper float64) Option {
	return func(p *Parameter) {
		p.lower = lower
		p.upper = upper
	}
}

// New creates a parameter holding a copy of values.
func New(name string, values []float64, opts ...Option) (*Parameter, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("parameter %q: no values", name)
	}
	p := &Parameter{
		name:   name,
		values: slices.Clone(values),
		lower:  math.Inf(-1),
		upper:  math.Inf(1),
	}
	for _, opt := range opts {
		opt(p)
	}
	if !(p.lower < p.upper) {
		return nil, fmt.Errorf("parameter %q: lower bound %v not below upper bound %v", name, p.lower, p.upper)
	}
	for i, v := range p.values {
		if !p.InBounds(v) {
			return nil, fmt.Errorf("parameter %q[%d] = %v: %w", name, i, v, ErrOutOfBounds)
		}
	}
	return p, nil
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Dimension returns the number of values.
func (p *Parameter) Dimension() int { return len(p.values) }

// Value returns the i-th value.
func (p *Parameter) Value(i int) float64 { return p.values[i] }

// Values returns a copy of all values.
func (p *Parameter) Values() []float64 { return slices.Clone(p.values) }

// Bounds returns the inclusive lower and upper bounds.
func (p *Parameter) Bounds() (lower, upper float64) { return p.lower, p.upper }

// InBounds reports whether v is a legal value for this parameter.
func (p *Parameter) InBounds(v float64) bool {
	return !math.IsNaN(v) && v >= p.lower && v <= p.upper
}

// SetValue sets the i-th value and notifies listeners. Bounds are not
// enforced here; callers propose only in-bounds values.
func (p *Parameter) SetValue(i int, v float64) {
	p.values[i] = v
	p.fire(i)
}

// SetValues replaces all values and notifies listeners once.
func (p *Parameter) SetValues(vs []float64) error {
	if len(vs) != len(p.values) {
		return fmt.Errorf("parameter %q: got %d values, want %d", p.name, len(vs), len(p.values))
	}
	copy(p.values, vs)
	p.fire(-1)
	return nil
}

// AddListener registers a change listener.
func (p *Parameter) AddListener(l Listener) {
	p.listeners = append(p.listeners, l)
}

func (p *Parameter) fire(i int) {
	for _, l := range p.listeners {
		l(p, i)
	}
}

// Store saves the current values.
func (p *Parameter) Store() {
	p.stored = append(p.stored[:0], p.values...)
}

// Restore returns to the values saved by Store. It only notifies listeners
// when something actually changed.
func (p *Parameter) Restore() {
	if p.stored == nil || slices.Equal(p.stored, p.values) {
		return
	}
	copy(p.values, p.stored)
	p.fire(-1)
}
