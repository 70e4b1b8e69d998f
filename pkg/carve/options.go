package carve

import "fmt"

// PiecesToKeep selects which boolean result pieces survive the carve.
type PiecesToKeep int

const (
	// KeepAll keeps every piece: the target is progressively subdivided
	// by each stencil and every connected component becomes an output.
	KeepAll PiecesToKeep = iota
	// KeepDifference keeps only the target geometry outside the stencils.
	KeepDifference
	// KeepIntersection keeps only the target geometry inside the
	// stencils. With stencils that never overlap the target this is
	// empty and the target is deleted.
	KeepIntersection
)

func (p PiecesToKeep) String() string {
	switch p {
	case KeepAll:
		return "all"
	case KeepDifference:
		return "difference"
	case KeepIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("PiecesToKeep(%d)", int(p))
	}
}

// defaultOverlapThreshold matches the boolean tolerance the original
// operator used for every solver invocation.
const defaultOverlapThreshold = 1e-6

// Options is the operator parameter surface for one carve invocation.
type Options struct {
	// PiecesToKeep selects output pieces.
	PiecesToKeep PiecesToKeep
	// UnionCarves combines all stencils into one solid before carving.
	UnionCarves bool
	// DeleteCarvers destroys stencil source objects after a successful
	// carve.
	DeleteCarvers bool
	// OverlapThreshold is the tolerance handed to the boolean capability
	// unchanged. Must be positive.
	OverlapThreshold float64
	// GrowRatio expands extruded stencil volumes outward to keep boolean
	// inputs away from degenerate coincident faces. Must be >= 0; zero is
	// allowed but raises the failure likelihood.
	GrowRatio float64
	// HullCurves replaces curve and grease pencil stencil shapes with
	// their convex hulls, trading fidelity for robustness.
	HullCurves bool
	// HullWires does the same for edge-only mesh stencils.
	HullWires bool
}

// DefaultOptions returns the operator defaults.
func DefaultOptions() Options {
	return Options{
		PiecesToKeep:     KeepAll,
		OverlapThreshold: defaultOverlapThreshold,
		GrowRatio:        0.01,
	}
}

// validate checks the numeric option domains.
func (o Options) validate() error {
	if o.OverlapThreshold <= 0 {
		return fmt.Errorf("overlap threshold must be > 0, got %g", o.OverlapThreshold)
	}
	if o.GrowRatio < 0 {
		return fmt.Errorf("grow ratio must be >= 0, got %g", o.GrowRatio)
	}
	return nil
}
