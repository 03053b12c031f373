package tree

import (
	"fmt"
	"math/rand/v2"
)

// Random draws a tree for the given taxa from a Kingman coalescent with the
// given coalescence rate per pair of lineages. All tips are at height 0.
func Random(rng *rand.Rand, taxa []string, rate float64) (*Tree, error) {
	if len(taxa) < 2 {
		return nil, fmt.Errorf("%w: need at least two taxa, got %d", ErrInvalidStructure, len(taxa))
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: coalescent rate must be positive, got %v", ErrInvalidStructure, rate)
	}

	lineages := make([]*Node, len(taxa))
	for i, name := range taxa {
		lineages[i] = Leaf(name, 0)
	}

	h := 0.0
	for len(lineages) > 1 {
		k := float64(len(lineages))
		h += rng.ExpFloat64() / (rate * k * (k - 1) / 2)

		i := rng.IntN(len(lineages))
		j := rng.IntN(len(lineages) - 1)
		if j >= i {
			j++
		}
		joined := Join(lineages[i], lineages[j], h)

		// Remove the larger index first so the smaller one stays valid.
		if i < j {
			i, j = j, i
		}
		lineages = append(lineages[:i], lineages[i+1:]...)
		lineages[j] = joined
	}
	return New(lineages[0])
}
