package operator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
)

// Schedule is the weighted set of operators of one chain. Operators are added
// before sampling starts; the first SelectNext seals the set. Weights can
// still change through SetWeight.
type Schedule struct {
	mu         sync.RWMutex
	ops        []Operator
	weights    []float64
	cumulative []float64
	names      map[string]int
	sealed     atomic.Bool
}

// NewSchedule builds a schedule from ops, in order.
func NewSchedule(ops ...Operator) (*Schedule, error) {
	s := &Schedule{names: make(map[string]int)}
	for _, op := range ops {
		if err := s.Add(op); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends an operator. Names must be unique within a schedule.
func (s *Schedule) Add(op Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed.Load() {
		return ErrScheduleSealed
	}
	if op == nil {
		return Invalid("schedule", "operator", "must not be nil", nil)
	}
	if _, dup := s.names[op.Name()]; dup {
		return Invalid("schedule", "operator", "duplicate name", op.Name())
	}
	w := op.Weight()
	if !validWeight(w) {
		return Invalid(op.Name(), "weight", "must be finite and positive", w)
	}
	s.names[op.Name()] = len(s.ops)
	s.ops = append(s.ops, op)
	s.weights = append(s.weights, w)
	s.reindex()
	return nil
}

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0)
}

func (s *Schedule) reindex() {
	s.cumulative = s.cumulative[:0]
	var sum float64
	for _, w := range s.weights {
		sum += w
		s.cumulative = append(s.cumulative, sum)
	}
}

// SelectNext draws an operator index with probability proportional to its
// weight, in O(log k). It returns -1 for an empty schedule.
func (s *Schedule) SelectNext(rng *rand.Rand) int {
	s.sealed.Store(true)
	s.mu.RLock()
	defer s.mu.RUnlock()

	k := len(s.cumulative)
	if k == 0 {
		return -1
	}
	u := rng.Float64() * s.cumulative[k-1]
	i := sort.Search(k, func(i int) bool { return s.cumulative[i] > u })
	return min(i, k-1)
}

// Operator returns the i-th operator.
func (s *Schedule) Operator(i int) Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops[i]
}

// Lookup returns the index of the named operator.
func (s *Schedule) Lookup(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.names[name]
	return i, ok
}

// Len returns the number of operators.
func (s *Schedule) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ops)
}

// Operators returns a copy of the operator list.
func (s *Schedule) Operators() []Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Operator(nil), s.ops...)
}

// Weight returns the current weight of the i-th operator.
func (s *Schedule) Weight(i int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights[i]
}

// Probability returns the selection probability of the i-th operator.
func (s *Schedule) Probability(i int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights[i] / s.cumulative[len(s.cumulative)-1]
}

// SetWeight changes the weight of the i-th operator and rebuilds the index.
// Operators exposing SetWeight are updated too.
func (s *Schedule) SetWeight(i int, w float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.ops) {
		return fmt.Errorf("schedule: no operator at index %d", i)
	}
	if !validWeight(w) {
		return Invalid(s.ops[i].Name(), "weight", "must be finite and positive", w)
	}
	s.weights[i] = w
	if ws, ok := s.ops[i].(interface{ SetWeight(float64) }); ok {
		ws.SetWeight(w)
	}
	s.reindex()
	return nil
}
