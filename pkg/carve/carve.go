// Package carve orchestrates the stencil-construction-and-carve pipeline:
// it validates the selection, builds cutting volumes from the stencil
// objects, sequences boolean operations against the target, applies the
// piece-selection policy and finally materializes the result in the
// scene. The whole operation is transactional from the caller's point of
// view: the scene is mutated only after every boolean step has succeeded.
package carve

import (
	"fmt"
	"log"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/stencil"
	"github.com/viewcarve/viewcarve/pkg/view"
)

// phase names the orchestrator states, in execution order.
type phase int

const (
	collectingStencils phase = iota
	buildingVolumes
	carving
	selectingPieces
	finalizing
)

func (p phase) String() string {
	switch p {
	case collectingStencils:
		return "collecting-stencils"
	case buildingVolumes:
		return "building-volumes"
	case carving:
		return "carving"
	case selectingPieces:
		return "selecting-pieces"
	case finalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// PieceClass classifies a result piece relative to the stencil set.
type PieceClass int

const (
	// InsideAll: the piece lies inside every stencil volume.
	InsideAll PieceClass = iota
	// OutsideAll: the piece lies outside every stencil volume.
	OutsideAll
	// Mixed: inside some stencils and outside others; only possible with
	// KeepAll and multiple non-unified stencils.
	Mixed
)

func (c PieceClass) String() string {
	switch c {
	case InsideAll:
		return "inside-all"
	case OutsideAll:
		return "outside-all"
	default:
		return "mixed"
	}
}

// Piece is one output solid of a carve.
type Piece struct {
	Name  string
	Mesh  *kernel.Mesh
	Class PieceClass
}

// Result describes a completed carve. Zero pieces is a valid outcome
// (intersection mode with stencils that miss the target); the target has
// then been consumed with nothing to replace it.
type Result struct {
	Pieces        []Piece
	TargetDeleted bool
	Dropped       []stencil.Dropped
	Findings      []Finding
}

// Carver runs carve operations against a boolean engine. The engine is
// fixed at construction; one Carver may serve many invocations, but a
// single invocation assumes exclusive access to its target and stencil
// objects for its whole duration.
type Carver struct {
	eng kernel.Engine
}

// New returns a Carver backed by the given boolean engine.
func New(eng kernel.Engine) *Carver {
	return &Carver{eng: eng}
}

// workPiece tracks an intermediate piece and, for KeepAll, on which side
// of each stencil it fell.
type workPiece struct {
	mesh   *kernel.Mesh
	inside []bool
}

// Carve cuts the last object of the selection using the preceding objects
// as stencils, projected along viewDir. On failure, no scene mutation has
// happened and the returned error wraps one of the package's sentinel
// errors. On success the target has been replaced by the selected pieces.
func (c *Carver) Carve(sc Scene, selection []Object, viewDir r3.Vec, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	// Collecting stencils: validate the selection and capture the view
	// basis once for the whole operation.
	target, carvers, findings, err := collectStencils(selection)
	if err != nil {
		return nil, err
	}
	for _, f := range findings {
		log.Printf("carve: %s", f)
	}

	basis, err := view.NewBasis(viewDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	min, max := target.Mesh.BoundingBox()
	near, far := basis.SpanDepths(min, max)

	// Building volumes: convert each carver to one or more solids.
	sources := make([]stencil.Source, 0, len(carvers))
	for _, o := range carvers {
		sources = append(sources, objectSource(o))
	}
	set, dropped, warnings, err := stencil.Build(sources, basis, near, far, stencil.BuildOptions{
		GrowRatio:  opts.GrowRatio,
		HullCurves: opts.HullCurves,
		HullWires:  opts.HullWires,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", buildingVolumes, err)
	}
	for _, w := range warnings {
		log.Printf("carve: %s", w)
	}
	for _, d := range dropped {
		log.Printf("carve: dropping stencil %s: %s", d.Name, d.Reason)
	}
	if len(set.Stencils) == 0 {
		return nil, fmt.Errorf("%w: all %d stencil(s) failed to build", ErrNoValidStencils, len(dropped))
	}

	if opts.UnionCarves {
		if err := set.Unify(c.eng, opts.OverlapThreshold); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBooleanOpFailed, err)
		}
	}

	// Carving: all booleans run on copies; the scene stays untouched
	// until every one of them has succeeded.
	pieces, err := c.carvePieces(target.Mesh, set, opts)
	if err != nil {
		return nil, err
	}

	// Selecting pieces: discard anything the boolean step emptied out.
	kept := pieces[:0]
	for _, p := range pieces {
		if !p.mesh.IsEmpty() {
			kept = append(kept, p)
		}
	}
	pieces = kept

	// Finalizing: replace the target with the selected pieces, then
	// delete carver sources if requested. Their solids have all been
	// consumed by now.
	res := &Result{Dropped: dropped, Findings: findings}
	if err := sc.DeleteObject(target.Name); err != nil {
		return nil, fmt.Errorf("%s: deleting target %s: %v", finalizing, target.Name, err)
	}
	res.TargetDeleted = len(pieces) == 0
	for i, p := range pieces {
		name := pieceName(target.Name, i)
		m := p.mesh
		m.Name = name
		if err := sc.CreateObject(name, m); err != nil {
			return nil, fmt.Errorf("%s: creating piece %s: %v", finalizing, name, err)
		}
		res.Pieces = append(res.Pieces, Piece{Name: name, Mesh: m, Class: classify(p.inside)})
	}
	if opts.DeleteCarvers {
		for _, o := range carvers {
			if err := sc.DeleteObject(o.Name); err != nil {
				return nil, fmt.Errorf("%s: deleting carver %s: %v", finalizing, o.Name, err)
			}
		}
	}
	return res, nil
}

// collectStencils validates the selection and splits it into the target
// and the carver objects, deduplicated and in selection order.
func collectStencils(selection []Object) (Object, []Object, []Finding, error) {
	var findings []Finding
	fail := func() (Object, []Object, []Finding, error) {
		var msgs []string
		for _, f := range findings {
			if f.Severity == SeverityError {
				msgs = append(msgs, f.String())
			}
		}
		return Object{}, nil, findings, fmt.Errorf("%w: %s", ErrInvalidSelection, strings.Join(msgs, "; "))
	}

	if len(selection) < 2 {
		findings = append(findings, Finding{
			Message:  fmt.Sprintf("need at least 2 selected objects (stencils plus target), got %d", len(selection)),
			Severity: SeverityError,
		})
		return fail()
	}

	target := selection[len(selection)-1]
	if target.Kind != ObjectMesh || target.Mesh == nil || target.Mesh.IsEmpty() {
		findings = append(findings, Finding{
			Object:   target.Name,
			Message:  "target (last selected) must be a non-empty mesh object",
			Severity: SeverityError,
		})
	}
	if target.HasModifiers {
		findings = append(findings, Finding{
			Object:   target.Name,
			Message:  "target has unapplied modifiers",
			Severity: SeverityError,
		})
	}
	for _, f := range findings {
		if f.Severity == SeverityError {
			return fail()
		}
	}

	seen := map[string]bool{target.Name: true}
	var carvers []Object
	for _, o := range selection[:len(selection)-1] {
		if seen[o.Name] {
			// An object never carves against itself, and duplicate
			// selections carve once.
			continue
		}
		seen[o.Name] = true
		if o.HasModifiers && (o.Kind == ObjectMesh || o.Kind == ObjectGreasePencil) {
			findings = append(findings, Finding{
				Object:   o.Name,
				Message:  fmt.Sprintf("unapplied modifiers on %s stencil are ignored", o.Kind),
				Severity: SeverityWarning,
			})
		}
		carvers = append(carvers, o)
	}
	if len(carvers) == 0 {
		findings = append(findings, Finding{
			Message:  "selection contains no stencil objects besides the target",
			Severity: SeverityError,
		})
		return fail()
	}
	return target, carvers, findings, nil
}

// objectSource maps a selected object onto its stencil source.
func objectSource(o Object) stencil.Source {
	if o.usesOwnGeometry() {
		return stencil.MeshSource{Name: o.Name, Mesh: o.Mesh, Edges: o.Edges}
	}
	return stencil.CurveSource{Name: o.Name, Curves: o.Curves}
}

// carvePieces sequences the boolean operations for the selected policy.
// Stencils apply iteratively in selection order; with UnionCarves the set
// has already been unified to a single stencil.
func (c *Carver) carvePieces(target *kernel.Mesh, set *stencil.Set, opts Options) ([]workPiece, error) {
	pieces := []workPiece{{mesh: target.Clone()}}

	for _, st := range set.Stencils {
		var next []workPiece
		for _, wp := range pieces {
			switch opts.PiecesToKeep {
			case KeepDifference:
				comps, err := c.boolOp(wp.mesh, st, kernel.OpDifference, opts)
				if err != nil {
					return nil, err
				}
				for _, m := range comps {
					next = append(next, workPiece{mesh: m})
				}

			case KeepIntersection:
				comps, err := c.boolOp(wp.mesh, st, kernel.OpIntersection, opts)
				if err != nil {
					return nil, err
				}
				for _, m := range comps {
					next = append(next, workPiece{mesh: m})
				}

			case KeepAll:
				out, err := c.boolOp(wp.mesh, st, kernel.OpDifference, opts)
				if err != nil {
					return nil, err
				}
				in, err := c.boolOp(wp.mesh, st, kernel.OpIntersection, opts)
				if err != nil {
					return nil, err
				}
				for _, m := range out {
					next = append(next, workPiece{mesh: m, inside: appendFlag(wp.inside, false)})
				}
				for _, m := range in {
					next = append(next, workPiece{mesh: m, inside: appendFlag(wp.inside, true)})
				}
			}
		}
		pieces = next
	}

	// KeepDifference pieces are outside every stencil, KeepIntersection
	// pieces inside every one; record that for classification.
	if opts.PiecesToKeep != KeepAll {
		inside := opts.PiecesToKeep == KeepIntersection
		for i := range pieces {
			pieces[i].inside = []bool{inside}
		}
	}
	return pieces, nil
}

// boolOp runs one boolean step, mapping any engine failure onto the
// fatal carve taxonomy.
func (c *Carver) boolOp(a *kernel.Mesh, st stencil.Stencil, op kernel.Op, opts Options) ([]*kernel.Mesh, error) {
	comps, err := c.eng.Boolean(a, st.Solid, op, opts.OverlapThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %s with stencil %s: %v", ErrBooleanOpFailed, op, st.Name, err)
	}
	return comps, nil
}

func appendFlag(flags []bool, f bool) []bool {
	out := make([]bool, len(flags), len(flags)+1)
	copy(out, flags)
	return append(out, f)
}

// classify maps a piece's per-stencil side flags to its class.
func classify(inside []bool) PieceClass {
	if len(inside) == 0 {
		return OutsideAll
	}
	all, any := true, false
	for _, in := range inside {
		all = all && in
		any = any || in
	}
	switch {
	case all:
		return InsideAll
	case !any:
		return OutsideAll
	default:
		return Mixed
	}
}

// pieceName names result objects: the first piece inherits the target's
// name, further pieces get numbered suffixes.
func pieceName(base string, i int) string {
	if i == 0 {
		return base
	}
	return fmt.Sprintf("%s.%03d", base, i)
}
