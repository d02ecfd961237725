package simulation

import (
	"math/rand/v2"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// Selector picks one alternative at an OR group with probability
// proportional to each candidate's capability weight (roulette-wheel
// selection). An attacker is assumed to prefer the alternatives they are
// most capable of.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector drawing from rng
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Choose returns one member of candidates. The candidates are shuffled first
// so definition order does not bias ties; if rounding keeps every running sum
// below the threshold the last shuffled candidate is returned. When all
// weights are zero the threshold is zero and the first shuffled candidate wins.
func (s *Selector) Choose(candidates []*tree.Node) (*tree.Node, error) {
	if len(candidates) == 0 {
		return nil, tree.ShapeError("choose", nil, "no alternatives to choose from")
	}

	shuffled := make([]*tree.Node, len(candidates))
	copy(shuffled, candidates)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	weights := make([]float64, len(shuffled))
	total := 0.0
	for i, c := range shuffled {
		w, err := c.CapabilityWeight()
		if err != nil {
			return nil, err
		}
		weights[i] = w
		total += w
	}

	threshold := s.rng.Float64() * total

	sum := 0.0
	for i, c := range shuffled {
		sum += weights[i]
		if sum >= threshold {
			return c, nil
		}
	}
	return shuffled[len(shuffled)-1], nil
}
