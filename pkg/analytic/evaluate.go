// Package analytic computes closed-form success estimates for attack trees.
//
// The result of Evaluate is signed: a positive value means the dominant effect
// along the subtree is offensive (threats), a negative value means it is
// defensive (measures). The magnitude is the estimated probability of that
// dominant effect.
package analytic

import (
	"math"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// Evaluate folds the subtree rooted at n into a signed probability in [-1, 1]
// and records |p| on every visited node for display. Success counters are
// never touched.
func Evaluate(n *tree.Node) (float64, error) {
	var (
		p   float64
		err error
	)

	if n.Kind.IsGroup() {
		p, err = evaluateGroup(n)
		if err != nil {
			return 0, err
		}
	} else {
		p, err = evaluateAction(n)
		if err != nil {
			return 0, err
		}
	}

	n.SetLastProbability(p)
	return p, nil
}

// evaluateGroup combines children by sum (or) or product (and, seq).
//
// The sign is decided by whether any direct child is a measure. A subtree
// with mixed threat and measure siblings is not homogeneous and the result
// then depends on child order; that is a known modeling hazard which is
// reproduced rather than corrected.
func evaluateGroup(n *tree.Node) (float64, error) {
	if len(n.Children) == 0 {
		return 0, tree.ShapeError("evaluate", n, "%s group has no children", n.Kind)
	}

	p := 1.0
	if n.Kind == tree.KindOr {
		p = 0.0
	}

	measures := false
	for _, child := range n.Children {
		if child.Kind == tree.KindMeasure {
			measures = true
		}

		cp, err := Evaluate(child)
		if err != nil {
			return 0, err
		}

		switch n.Kind {
		case tree.KindOr:
			p += cp
		case tree.KindAnd, tree.KindSeq:
			// sign information is lost in the product, restored below
			p *= cp
		default:
			return 0, tree.Errorf("evaluate", n, tree.ErrUnknownKind)
		}
	}

	if measures {
		return -math.Min(math.Abs(p), 1.0), nil
	}
	return math.Min(p, 1.0), nil
}

// evaluateAction handles threat and measure nodes.
func evaluateAction(n *tree.Node) (float64, error) {
	var p float64

	switch len(n.Children) {
	case 0:
		p = 1.0
	case 1:
		cp, err := Evaluate(n.Children[0])
		if err != nil {
			return 0, err
		}
		p = cp
	default:
		// several children on a threat or measure are read as an implicit OR
		for _, child := range n.Children {
			cp, err := Evaluate(child)
			if err != nil {
				return 0, err
			}
			p += cp
		}
		p = math.Min(p, 1.0)
	}

	if !n.IsLeaf() {
		return p, nil
	}

	local, err := n.LocalProbability()
	if err != nil {
		return 0, err
	}

	// A negative children aggregate means measures oppose this threat: a
	// measure succeeding with probability m leaves local * (1 - m).
	if n.Kind == tree.KindThreat && p < 0 {
		return local * (1 + p), nil
	}
	return p * local, nil
}
