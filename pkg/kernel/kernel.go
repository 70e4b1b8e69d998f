// Package kernel defines the boolean-mesh contract the carve pipeline is
// built against. Implementations (sdfcsg, manifold) provide the actual
// boolean capability behind this interface; the rest of the system treats
// it as a black box. The abstraction allows swapping backends without
// changing the pipeline.
package kernel

import "fmt"

// Op selects a boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Engine is the boolean-mesh capability. Boolean applies op to two
// watertight solids and returns one mesh per connected component of the
// result; zero meshes is a valid outcome (for example the intersection of
// disjoint solids).
//
// overlapThreshold is a tolerance passed through to the underlying
// capability unchanged; the pipeline does not interpret it. A non-nil
// error means the capability could not produce a result (for example
// non-manifold input); callers must treat that as fatal for the carve.
type Engine interface {
	Boolean(a, b *Mesh, op Op, overlapThreshold float64) ([]*Mesh, error)
}
