package simulation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

func mustNode(t testing.TB, r *tree.Registry, kind tree.Kind, name string, freq float64, capability, difficulty int, children ...*tree.Node) *tree.Node {
	t.Helper()
	n, err := r.NewNode(tree.Spec{
		Name:       name,
		Kind:       kind,
		Frequency:  freq,
		Capability: capability,
		Difficulty: difficulty,
		Children:   children,
	})
	require.NoError(t, err)
	return n
}

// With capability 1 and difficulty 1 the local factor is 0.99, so a
// frequency of 2 pushes |p| above one (always) and 0 pins it at zero (never).
func alwaysStops(t testing.TB, r *tree.Registry, name string) *tree.Node {
	return mustNode(t, r, tree.KindMeasure, name, 2.0, 1, 1)
}

func neverStops(t testing.TB, r *tree.Registry, name string) *tree.Node {
	return mustNode(t, r, tree.KindMeasure, name, 0.0, 1, 1)
}

func alwaysSucceeds(t testing.TB, r *tree.Registry, name string, children ...*tree.Node) *tree.Node {
	return mustNode(t, r, tree.KindThreat, name, 2.0, 1, 1, children...)
}

func alwaysFails(t testing.TB, r *tree.Registry, name string, children ...*tree.Node) *tree.Node {
	return mustNode(t, r, tree.KindThreat, name, 0.0, 1, 1, children...)
}

func testWalker() *Walker {
	return NewSeededWalker(42, 0)
}

// randomTree builds a well-formed tree of bounded depth from rng
func randomTree(r *tree.Registry, rng *rand.Rand, depth int) *tree.Node {
	if depth == 0 || rng.IntN(3) == 0 {
		kind := tree.KindThreat
		if rng.IntN(2) == 0 {
			kind = tree.KindMeasure
		}
		var children []*tree.Node
		if kind == tree.KindThreat && depth > 0 && rng.IntN(2) == 0 {
			children = append(children, randomTree(r, rng, depth-1))
		}
		n, err := r.NewNode(tree.Spec{
			Name:       kind.String(),
			Kind:       kind,
			Frequency:  rng.Float64(),
			Capability: rng.IntN(7),
			Difficulty: rng.IntN(7),
			Children:   children,
		})
		if err != nil {
			panic(err)
		}
		return n
	}

	children := make([]*tree.Node, 1+rng.IntN(3))
	for i := range children {
		children[i] = randomTree(r, rng, depth-1)
	}

	var (
		g   *tree.Node
		err error
	)
	switch rng.IntN(3) {
	case 0:
		g, err = r.Alternatives(children...)
	case 1:
		g, err = r.Composition(children...)
	default:
		g, err = r.Sequence(children...)
	}
	if err != nil {
		panic(err)
	}
	return g
}
