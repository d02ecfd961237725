package tree

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-attacktree/pkg/probability"
	"github.com/dd0wney/cluso-attacktree/pkg/validation"
)

// nextID hands out process-unique node IDs across all registries
var nextID atomic.Uint64

// Spec holds the construction parameters of a node.
type Spec struct {
	Name       string
	Kind       Kind
	Frequency  float64
	Capability int
	Difficulty int
	Children   []*Node
}

// Registry records every node created through it, in creation order, so
// reporting can enumerate a tree without walking it.
type Registry struct {
	mu    sync.RWMutex
	nodes []*Node
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{nodes: make([]*Node, 0)}
}

// NewNode validates spec and creates a node owning spec.Children.
func (r *Registry) NewNode(spec Spec) (*Node, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Ownership is claimed under the registry lock; a child can have only one parent
	seen := make(map[*Node]struct{}, len(spec.Children))
	for _, c := range spec.Children {
		if _, dup := seen[c]; c.owned || dup {
			return nil, ShapeError("create", &Node{Name: spec.Name}, "child %q (node %d) already has a parent", c.Name, c.ID)
		}
		seen[c] = struct{}{}
	}
	for _, c := range spec.Children {
		c.owned = true
	}

	children := make([]*Node, len(spec.Children))
	copy(children, spec.Children)

	n := &Node{
		ID:         nextID.Add(1),
		Name:       spec.Name,
		Kind:       spec.Kind,
		Frequency:  spec.Frequency,
		Capability: spec.Capability,
		Difficulty: spec.Difficulty,
		Children:   children,
	}
	r.nodes = append(r.nodes, n)

	return n, nil
}

// Alternatives wraps children in an OR group
func (r *Registry) Alternatives(children ...*Node) (*Node, error) {
	return r.group(KindOr, children)
}

// Composition wraps children in an AND group
func (r *Registry) Composition(children ...*Node) (*Node, error) {
	return r.group(KindAnd, children)
}

// Sequence wraps children in a SEQ group
func (r *Registry) Sequence(children ...*Node) (*Node, error) {
	return r.group(KindSeq, children)
}

func (r *Registry) group(kind Kind, children []*Node) (*Node, error) {
	return r.NewNode(Spec{
		Name:      kind.String(),
		Kind:      kind,
		Frequency: DefaultFrequency,
		Children:  children,
	})
}

// Nodes returns the registered nodes in creation order
func (r *Registry) Nodes() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Len returns the number of registered nodes
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Snapshot returns the current success count of every node, keyed by ID
func (r *Registry) Snapshot() map[uint64]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uint64]int64, len(r.nodes))
	for _, n := range r.nodes {
		counts[n.ID] = n.SuccessCount()
	}
	return counts
}

// TotalSuccesses sums the success counters of every registered node
func (r *Registry) TotalSuccesses() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, n := range r.nodes {
		total += n.SuccessCount()
	}
	return total
}

// ResetCounters zeroes every success counter. It must not race with a
// running campaign.
func (r *Registry) ResetCounters() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.nodes {
		n.successes.Store(0)
	}
}

func checkSpec(spec Spec) error {
	if !spec.Kind.Valid() {
		return Errorf("create", &Node{Name: spec.Name}, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(spec.Kind)))
	}

	req := &validation.NodeRequest{
		Name:       spec.Name,
		Kind:       spec.Kind.String(),
		Frequency:  spec.Frequency,
		Capability: spec.Capability,
		Difficulty: spec.Difficulty,
		Children:   len(spec.Children),
	}
	if err := validation.ValidateNodeRequest(req); err != nil {
		return Errorf("create", &Node{Name: spec.Name}, classify(err))
	}

	if spec.Kind.IsGroup() && len(spec.Children) == 0 {
		return ShapeError("create", &Node{Name: spec.Name}, "%s group has no children", spec.Kind)
	}
	for i, c := range spec.Children {
		if c == nil {
			return ShapeError("create", &Node{Name: spec.Name}, "child %d is nil", i)
		}
	}
	return nil
}

// classify maps field violations onto the engine's error kinds
func classify(err error) error {
	var fe *validation.FieldError
	if !errors.As(err, &fe) {
		return err
	}

	switch fe.Field {
	case "Capability", "Difficulty":
		return &levelFieldError{field: fe, cause: probability.ErrInvalidLevel}
	case "Frequency":
		return &levelFieldError{field: fe, cause: ErrInvalidFrequency}
	default:
		return fmt.Errorf("%w: %v", ErrModelShape, fe)
	}
}

type levelFieldError struct {
	field *validation.FieldError
	cause error
}

func (e *levelFieldError) Error() string {
	return fmt.Sprintf("%v: %v", e.cause, e.field)
}

func (e *levelFieldError) Unwrap() []error {
	return []error{e.cause, e.field}
}
