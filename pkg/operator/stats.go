package operator

import "sync/atomic"

// Stats counts the outcomes of an operator. All methods are safe for
// concurrent use, so diagnostics may read while the chain runs.
type Stats struct {
	accepted   atomic.Int64
	rejected   atomic.Int64
	infeasible atomic.Int64
	deviation  AtomicFloat64
}

// Accepted returns the number of accepted proposals.
func (s *Stats) Accepted() int64 { return s.accepted.Load() }

// Rejected returns the number of rejected proposals, infeasible ones included.
func (s *Stats) Rejected() int64 { return s.rejected.Load() }

// Infeasible returns how many proposals were rejected before evaluation
// because no legal move existed.
func (s *Stats) Infeasible() int64 { return s.infeasible.Load() }

// Count returns the number of completed proposals.
func (s *Stats) Count() int64 { return s.Accepted() + s.Rejected() }

// AcceptanceRate returns accepted/count, or 0 before the first proposal.
func (s *Stats) AcceptanceRate() float64 {
	n := s.Count()
	if n == 0 {
		return 0
	}
	return float64(s.Accepted()) / float64(n)
}

// Deviation returns the sum of the deviations reported on acceptance.
func (s *Stats) Deviation() float64 { return s.deviation.Load() }

// MeanDeviation returns the mean deviation reported on acceptance.
func (s *Stats) MeanDeviation() float64 {
	n := s.Accepted()
	if n == 0 {
		return 0
	}
	return s.deviation.Load() / float64(n)
}

// RecordAccept counts an acceptance with its deviation metric.
func (s *Stats) RecordAccept(deviation float64) {
	s.accepted.Add(1)
	s.deviation.Add(deviation)
}

// RecordReject counts a rejection.
func (s *Stats) RecordReject() { s.rejected.Add(1) }

// RecordInfeasible marks the next rejection as infeasible.
func (s *Stats) RecordInfeasible() { s.infeasible.Add(1) }

// Set overwrites the counters and the deviation sum, for checkpoint restore.
func (s *Stats) Set(accepted, rejected, infeasible int64, deviation float64) {
	s.accepted.Store(accepted)
	s.rejected.Store(rejected)
	s.infeasible.Store(infeasible)
	s.deviation.Store(deviation)
}
