package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// Walker performs randomized depth-first walks, each one a single simulated
// attack attempt. A Walker is not safe for concurrent use; parallel
// campaigns give every worker its own.
type Walker struct {
	rng      *rand.Rand
	selector *Selector
	lastStop *tree.Node
}

// NewWalker creates a walker drawing every random number from rng
func NewWalker(rng *rand.Rand) *Walker {
	return &Walker{rng: rng, selector: NewSelector(rng)}
}

// NewSeededWalker creates a walker with a deterministic PCG source
func NewSeededWalker(seed, stream uint64) *Walker {
	return NewWalker(rand.New(rand.NewPCG(seed, stream)))
}

// Walk simulates one attack against the subtree rooted at n. It returns true
// if the attack got through. On false exactly one node on the executed path,
// the first point of failure, has had its success counter incremented.
func (w *Walker) Walk(n *tree.Node) (bool, error) {
	w.lastStop = nil
	return w.walk(n)
}

// LastStop returns the node that stopped the most recent walk, or nil if it
// succeeded.
func (w *Walker) LastStop() *tree.Node {
	return w.lastStop
}

func (w *Walker) walk(n *tree.Node) (bool, error) {
	switch n.Kind {
	case tree.KindOr:
		next, err := w.selector.Choose(n.Children)
		if err != nil {
			return false, tree.Errorf("walk", n, err)
		}
		return w.walk(next)

	case tree.KindAnd:
		if len(n.Children) == 0 {
			return false, tree.ShapeError("walk", n, "and group has no children")
		}
		order := make([]*tree.Node, len(n.Children))
		copy(order, n.Children)
		w.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		return w.walkAll(order)

	case tree.KindSeq:
		if len(n.Children) == 0 {
			return false, tree.ShapeError("walk", n, "seq group has no children")
		}
		return w.walkAll(n.Children)

	case tree.KindMeasure, tree.KindThreat:
		if n.IsLeaf() {
			if n.Kind == tree.KindMeasure {
				return w.measure(n)
			}
			return w.threat(n)
		}
		// an unrated action only forwards to its first child
		if len(n.Children) == 0 {
			return true, nil
		}
		return w.walk(n.Children[0])

	default:
		return false, tree.Errorf("walk", n, tree.ErrUnknownKind)
	}
}

// walkAll short-circuits on the first child that stops the attack
func (w *Walker) walkAll(children []*tree.Node) (bool, error) {
	for _, c := range children {
		ok, err := w.walk(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// measure stops the attack with probability |local|
func (w *Walker) measure(n *tree.Node) (bool, error) {
	p, err := n.LocalProbability()
	if err != nil {
		return false, err
	}
	if w.rng.Float64() < math.Abs(p) {
		w.stop(n)
		return false, nil
	}
	return true, nil
}

// threat first faces its countermeasure (the first child only) and then
// succeeds with probability local
func (w *Walker) threat(n *tree.Node) (bool, error) {
	if len(n.Children) > 0 {
		ok, err := w.walk(n.Children[0])
		if err != nil || !ok {
			return false, err
		}
	}

	p, err := n.LocalProbability()
	if err != nil {
		return false, err
	}
	if w.rng.Float64() > p {
		w.stop(n)
		return false, nil
	}
	return true, nil
}

func (w *Walker) stop(n *tree.Node) {
	n.RecordSuccess()
	w.lastStop = n
}
