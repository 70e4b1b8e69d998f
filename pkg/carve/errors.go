package carve

import (
	"errors"
	"fmt"
)

// The carve failure taxonomy. Every failure leaves the scene untouched:
// the orchestrator performs no destructive mutation until every boolean
// step has succeeded.
var (
	// ErrInvalidSelection: the selection violates a precondition
	// (too few objects, last object not a usable target, target has
	// unapplied modifiers).
	ErrInvalidSelection = errors.New("carve: invalid selection")

	// ErrNoValidStencils: every stencil failed to build, leaving nothing
	// to carve with.
	ErrNoValidStencils = errors.New("carve: no valid stencils")

	// ErrBooleanOpFailed: the boolean capability failed; typically caused
	// by self-intersecting-and-closed or multiply-self-intersecting
	// stencil curves.
	ErrBooleanOpFailed = errors.New("carve: boolean operation failed")
)

// FindingSeverity splits selection findings into blockers and advisories.
type FindingSeverity int

const (
	SeverityError   FindingSeverity = iota // blocks the carve
	SeverityWarning                        // logged, carve proceeds
)

func (s FindingSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("FindingSeverity(%d)", int(s))
	}
}

// Finding is a single selection-validation result.
type Finding struct {
	Object   string
	Message  string
	Severity FindingSeverity
}

func (f Finding) String() string {
	if f.Object == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Object, f.Message)
}
