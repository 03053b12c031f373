package operator

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 that may be read concurrently with a single writer.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// Load returns the value.
func (f *AtomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Store sets the value.
func (f *AtomicFloat64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Add adds delta and returns the new value.
func (f *AtomicFloat64) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		v := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return v
		}
	}
}
