package operator_test

import (
	"math/rand/v2"

	"github.com/aretw0/sprig/pkg/operator"
)

// fakeTunable proposes nothing and exposes a plain tuning value.
type fakeTunable struct {
	operator.Base
	value operator.AtomicFloat64
}

func newFake(name string, weight float64) *fakeTunable {
	f := &fakeTunable{}
	if err := f.Init(name, weight); err != nil {
		panic(err)
	}
	return f
}

func (f *fakeTunable) Propose(*rand.Rand) (operator.Result, error) {
	return operator.Proposed(0), nil
}

func (f *fakeTunable) AdaptableParameter() float64     { return f.value.Load() }
func (f *fakeTunable) SetAdaptableParameter(v float64) { f.value.Store(v) }
func (f *fakeTunable) RawParameter() float64           { return f.value.Load() }
func (f *fakeTunable) AdaptableParameterName() string  { return "size" }

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
