package tree

import (
	"sync/atomic"

	"github.com/dd0wney/cluso-attacktree/pkg/probability"
)

// DefaultFrequency is the base occurrence rate of a node when none is given
const DefaultFrequency = 1.0

// Node is one node of an attack tree. Static attributes are fixed after
// construction; concurrent walks may read them without synchronization.
type Node struct {
	ID         uint64
	Name       string
	Kind       Kind
	Frequency  float64
	Capability int
	Difficulty int
	Children   []*Node

	successes atomic.Int64
	lastProb  float64
	owned     bool
}

// IsLeaf reports whether the node carries an intrinsic probability. A leaf
// is a node with both ratings set, which is not necessarily a topological
// leaf: a threat with measure children is still a leaf.
func (n *Node) IsLeaf() bool {
	return n.Capability != 0 && n.Difficulty != 0
}

// LocalProbability returns the node's signed intrinsic probability.
// Measures are negative, everything else is non-negative.
func (n *Node) LocalProbability() (float64, error) {
	p, err := probability.Local(n.Kind == KindMeasure, n.Frequency, n.Capability, n.Difficulty)
	if err != nil {
		return 0, Errorf("local probability", n, err)
	}
	return p, nil
}

// CapabilityWeight returns the table weight of the node's capability rating
func (n *Node) CapabilityWeight() (float64, error) {
	w, err := probability.CapabilityWeight(n.Capability)
	if err != nil {
		return 0, Errorf("capability weight", n, err)
	}
	return w, nil
}

// SuccessCount returns how often this node was the point at which a
// simulated attack stopped.
func (n *Node) SuccessCount() int64 {
	return n.successes.Load()
}

// RecordSuccess increments the success counter. Campaign walkers call it when
// this node stops an attack.
func (n *Node) RecordSuccess() {
	n.successes.Add(1)
}

// LastProbability returns |p| from the most recent analytic evaluation
func (n *Node) LastProbability() float64 {
	return n.lastProb
}

// SetLastProbability stores the absolute value of p for display
func (n *Node) SetLastProbability(p float64) {
	if p < 0 {
		p = -p
	}
	n.lastProb = p
}

// Walk visits n and its descendants depth-first in declaration order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Edge is a parent to child relation
type Edge struct {
	From *Node
	To   *Node
}

// Edges returns every parent to child pair below n in depth-first order
func (n *Node) Edges() []Edge {
	var edges []Edge
	n.Walk(func(p *Node, _ int) bool {
		for _, c := range p.Children {
			edges = append(edges, Edge{From: p, To: c})
		}
		return true
	})
	return edges
}
