// Package density provides the reference target used by command line runs:
// an exponential prior on every branch length plus an independent prior on
// each parameter value. It has no likelihood; it lets the operators be run
// and tuned against a known distribution.
package density

import (
	"context"
	"math"

	"github.com/aretw0/sprig/pkg/param"
	"github.com/aretw0/sprig/pkg/tree"
)

// Prior is a univariate log density.
type Prior interface {
	LogPDF(x float64) float64
}

// Uniform is flat; bounds are enforced by the parameter itself.
type Uniform struct{}

// LogPDF returns 0.
func (Uniform) LogPDF(float64) float64 { return 0 }

// Normal is a normal prior.
type Normal struct{ Mu, Sigma float64 }

// LogPDF implements Prior.
func (n Normal) LogPDF(x float64) float64 {
	z := (x - n.Mu) / n.Sigma
	return -0.5*z*z - math.Log(n.Sigma) - 0.5*math.Log(2*math.Pi)
}

// LogNormal is a log-normal prior on positive values.
type LogNormal struct{ Mu, Sigma float64 }

// LogPDF implements Prior. It is -Inf for x <= 0.
func (l LogNormal) LogPDF(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return Normal{Mu: l.Mu, Sigma: l.Sigma}.LogPDF(math.Log(x)) - math.Log(x)
}

type treeTerm struct {
	tree *tree.Tree
	rate float64
}

type paramTerm struct {
	param *param.Parameter
	prior Prior
}

// Reference is the product of all registered terms.
type Reference struct {
	trees  []treeTerm
	params []paramTerm
}

// Option adds a term.
type Option func(*Reference)

// WithTree puts an Exponential(rate) prior on each branch length of t.
func WithTree(t *tree.Tree, rate float64) Option {
	return func(r *Reference) { r.trees = append(r.trees, treeTerm{t, rate}) }
}

// WithParameter puts prior on each value of p.
func WithParameter(p *param.Parameter, prior Prior) Option {
	return func(r *Reference) { r.params = append(r.params, paramTerm{p, prior}) }
}

// New creates a reference density.
func New(opts ...Option) *Reference {
	r := &Reference{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LogDensity implements ports.Density.
func (r *Reference) LogDensity(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var lp float64
	for _, t := range r.trees {
		logRate := math.Log(t.rate)
		for i := 0; i < t.tree.NodeCount(); i++ {
			n := t.tree.Node(i)
			if n.IsRoot() {
				continue
			}
			lp += logRate - t.rate*n.BranchLength()
		}
	}
	for _, p := range r.params {
		for i := 0; i < p.param.Dimension(); i++ {
			lp += p.prior.LogPDF(p.param.Value(i))
		}
	}
	return lp, nil
}
