package ports

// TipStates is a view of the observed per-tip state vectors. Several views
// (for example two likelihoods sharing the same data) may describe the same
// tips and must agree.
type TipStates interface {
	TipCount() int
	State(tip int) []int
	SetState(tip int, s []int)
}
