package analytic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-attacktree/pkg/probability"
	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

const epsilon = 1e-9

func node(t *testing.T, r *tree.Registry, kind tree.Kind, name string, freq float64, capability, difficulty int, children ...*tree.Node) *tree.Node {
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

// Capability 3 (0.5) and difficulty 2 (0.3) give a local factor of 0.85.
func TestScenarioSingleThreatLeaf(t *testing.T) {
	r := tree.NewRegistry()
	leaf := node(t, r, tree.KindThreat, "pick lock", 1.0, 3, 2)

	p, err := Evaluate(leaf)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, p, epsilon)
	assert.InDelta(t, 0.85, leaf.LastProbability(), epsilon)
}

func TestScenarioOrOfThreeThreats(t *testing.T) {
	r := tree.NewRegistry()
	var leaves []*tree.Node
	for _, name := range []string{"door", "window", "roof"} {
		leaves = append(leaves, node(t, r, tree.KindThreat, name, 0.3, 3, 2))
	}
	or, err := r.Alternatives(leaves...)
	require.NoError(t, err)

	p, err := Evaluate(or)
	require.NoError(t, err)
	assert.InDelta(t, 0.765, p, epsilon)
	for _, l := range leaves {
		assert.InDelta(t, 0.255, l.LastProbability(), epsilon)
	}
}

// Frequency scales local probability directly: capability 1 and difficulty 1
// give 1 - 0.01 = 0.99, so frequency f/0.99 yields exactly f.
func threatWithProbability(t *testing.T, r *tree.Registry, name string, p float64, children ...*tree.Node) *tree.Node {
	t.Helper()
	return node(t, r, tree.KindThreat, name, p/0.99, 1, 1, children...)
}

func measureWithProbability(t *testing.T, r *tree.Registry, name string, p float64) *tree.Node {
	t.Helper()
	return node(t, r, tree.KindMeasure, name, p/0.99, 1, 1)
}

func TestScenarioAndOfTwoThreats(t *testing.T) {
	r := tree.NewRegistry()
	and, err := r.Composition(
		threatWithProbability(t, r, "a", 0.5),
		threatWithProbability(t, r, "b", 0.4),
	)
	require.NoError(t, err)

	p, err := Evaluate(and)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, p, epsilon)
}

func TestScenarioThreatWithMeasureChild(t *testing.T) {
	r := tree.NewRegistry()
	alarm := measureWithProbability(t, r, "alarm", 0.5)
	burglary := threatWithProbability(t, r, "burglary", 0.8, alarm)

	p, err := Evaluate(burglary)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, p, epsilon)
	assert.InDelta(t, 0.5, alarm.LastProbability(), epsilon, "measures display their magnitude")
}

func TestOrClampsAtOne(t *testing.T) {
	r := tree.NewRegistry()
	or, err := r.Alternatives(
		threatWithProbability(t, r, "a", 0.7),
		threatWithProbability(t, r, "b", 0.6),
	)
	require.NoError(t, err)

	p, err := Evaluate(or)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)
}

func TestAllMeasureOrClampsAtMinusOne(t *testing.T) {
	r := tree.NewRegistry()
	or, err := r.Alternatives(
		measureWithProbability(t, r, "camera", 0.8),
		measureWithProbability(t, r, "guard", 0.9),
	)
	require.NoError(t, err)

	p, err := Evaluate(or)
	require.NoError(t, err)
	assert.Equal(t, -1.0, p)
	assert.Equal(t, 1.0, or.LastProbability())
}

func TestAndOfMeasuresStaysNegative(t *testing.T) {
	r := tree.NewRegistry()
	and, err := r.Composition(
		measureWithProbability(t, r, "lock", 0.5),
		measureWithProbability(t, r, "alarm", 0.4),
	)
	require.NoError(t, err)

	// the raw product of two negatives is positive; the measure flag restores the sign
	p, err := Evaluate(and)
	require.NoError(t, err)
	assert.InDelta(t, -0.2, p, epsilon)
}

func TestThreatWithMeasureGroup(t *testing.T) {
	r := tree.NewRegistry()
	defenses, err := r.Alternatives(
		measureWithProbability(t, r, "camera", 0.2),
		measureWithProbability(t, r, "guard", 0.3),
	)
	require.NoError(t, err)
	intrusion := threatWithProbability(t, r, "intrusion", 0.9, defenses)

	p, err := Evaluate(intrusion)
	require.NoError(t, err)
	assert.InDelta(t, 0.9*(1-0.5), p, epsilon)
}

func TestUnratedActionPassesChildThrough(t *testing.T) {
	r := tree.NewRegistry()
	inner := threatWithProbability(t, r, "inner", 0.3)
	wrapper := node(t, r, tree.KindThreat, "wrapper", 1.0, 0, 0, inner)

	p, err := Evaluate(wrapper)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, p, epsilon)
}

func TestUnratedActionWithoutChildrenIsNeutral(t *testing.T) {
	r := tree.NewRegistry()
	bare := node(t, r, tree.KindThreat, "bare", 1.0, 0, 0)

	p, err := Evaluate(bare)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)
}

func TestActionWithSeveralChildrenIsImplicitOr(t *testing.T) {
	r := tree.NewRegistry()
	parent := node(t, r, tree.KindThreat, "parent", 1.0, 0, 0,
		threatWithProbability(t, r, "a", 0.2),
		threatWithProbability(t, r, "b", 0.3),
	)

	p, err := Evaluate(parent)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, epsilon)

	crowded := node(t, r, tree.KindThreat, "crowded", 1.0, 0, 0,
		threatWithProbability(t, r, "c", 0.8),
		threatWithProbability(t, r, "d", 0.9),
	)
	p, err = Evaluate(crowded)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)
}

// A group whose first child is a threat and second a measure is flagged as
// defensive; the sign depends on the presence of any measure sibling, not on
// the whole subtree being homogeneous.
func TestMixedSiblingsAreFlaggedByAnyMeasure(t *testing.T) {
	r := tree.NewRegistry()
	or, err := r.Alternatives(
		threatWithProbability(t, r, "threat", 0.6),
		measureWithProbability(t, r, "measure", 0.2),
	)
	require.NoError(t, err)

	p, err := Evaluate(or)
	require.NoError(t, err)
	assert.InDelta(t, -0.4, p, epsilon, "0.6 + (-0.2) = 0.4, flipped negative")

	r2 := tree.NewRegistry()
	reversed, err := r2.Alternatives(
		measureWithProbability(t, r2, "measure", 0.2),
		threatWithProbability(t, r2, "threat", 0.6),
	)
	require.NoError(t, err)

	p2, err := Evaluate(reversed)
	require.NoError(t, err)
	assert.InDelta(t, p, p2, epsilon)
}

func TestEvaluateDoesNotTouchCounters(t *testing.T) {
	r := tree.NewRegistry()
	and, err := r.Composition(
		threatWithProbability(t, r, "a", 0.5),
		threatWithProbability(t, r, "b", 0.4),
	)
	require.NoError(t, err)

	_, err = Evaluate(and)
	require.NoError(t, err)
	assert.Zero(t, r.TotalSuccesses())
}

func TestEvaluatePropagatesInvalidLevel(t *testing.T) {
	r := tree.NewRegistry()
	leaf := node(t, r, tree.KindThreat, "leaf", 1.0, 1, 1)
	or, err := r.Alternatives(leaf)
	require.NoError(t, err)

	leaf.Difficulty = 8

	_, err = Evaluate(or)
	assert.ErrorIs(t, err, probability.ErrInvalidLevel)

	var ne *tree.NodeError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, leaf.ID, ne.NodeID)
}

func TestEvaluateRejectsEmptyGroup(t *testing.T) {
	r := tree.NewRegistry()
	or, err := r.Alternatives(node(t, r, tree.KindThreat, "a", 1.0, 1, 1))
	require.NoError(t, err)
	or.Children = nil

	_, err = Evaluate(or)
	assert.ErrorIs(t, err, tree.ErrModelShape)
}

func TestEvaluateRange(t *testing.T) {
	r := tree.NewRegistry()
	root, err := r.Sequence(
		threatWithProbability(t, r, "recon", 0.9,
			measureWithProbability(t, r, "monitoring", 0.3)),
		node(t, r, tree.KindThreat, "exploit", 1.0, 5, 4),
	)
	require.NoError(t, err)

	p, err := Evaluate(root)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p))
	assert.LessOrEqual(t, math.Abs(p), 1.0)
}
