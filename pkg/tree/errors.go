package tree

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrModelShape       = errors.New("malformed model")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrUnknownKind      = errors.New("unknown node kind")
)

// NodeError provides structured error information for node operations.
type NodeError struct {
	Op     string // Operation that failed (e.g., "create", "evaluate", "walk")
	NodeID uint64 // Node ID (0 if the node was never created)
	Name   string // Node name
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("%s node %d (%s): %v", e.Op, e.NodeID, e.Name, e.Cause)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s node %q: %v", e.Op, e.Name, e.Cause)
	}
	return fmt.Sprintf("%s node: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *NodeError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// Errorf wraps cause for the given node. A node that already carries a
// NodeError is not wrapped twice, so the innermost failing node is reported.
func Errorf(op string, n *Node, cause error) error {
	var ne *NodeError
	if errors.As(cause, &ne) {
		return cause
	}
	e := &NodeError{Op: op, Cause: cause}
	if n != nil {
		e.NodeID = n.ID
		e.Name = n.Name
	}
	return e
}

// ShapeError reports a structural problem with the model.
func ShapeError(op string, n *Node, format string, args ...any) error {
	return Errorf(op, n, fmt.Errorf("%w: %s", ErrModelShape, fmt.Sprintf(format, args...)))
}
