// Package sdfcsg implements the kernel.Engine boolean contract using the
// github.com/deadsy/sdfx CSG library. Input meshes are lifted to signed
// distance fields, combined with sdfx's boolean operators and remeshed
// with marching cubes. Results are approximate to the sampling grid; the
// trade-off is that the backend is pure Go and never produces
// non-manifold output.
package sdfcsg

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/viewcarve/viewcarve/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Engine = (*Engine)(nil)

// DefaultCells is the marching cubes grid resolution along the longest
// axis of the result's bounding box.
const DefaultCells = 128

// Engine is an sdfx-backed boolean engine.
type Engine struct {
	// Cells overrides the remeshing resolution; zero means DefaultCells.
	Cells int
}

// New returns an Engine with default resolution.
func New() *Engine {
	return &Engine{}
}

// Boolean applies op to two watertight meshes and returns the connected
// components of the result. The overlap threshold is interpreted as a
// minimum feature size: result components smaller than it are discarded
// as numerical slivers.
func (e *Engine) Boolean(a, b *kernel.Mesh, op kernel.Op, overlapThreshold float64) ([]*kernel.Mesh, error) {
	if err := checkInput("a", a); err != nil {
		return nil, err
	}
	if err := checkInput("b", b); err != nil {
		return nil, err
	}

	sa := newMeshSDF(a)
	sb := newMeshSDF(b)

	var s sdf.SDF3
	switch op {
	case kernel.OpUnion:
		s = sdf.Union3D(sa, sb)
	case kernel.OpDifference:
		s = sdf.Difference3D(sa, sb)
	case kernel.OpIntersection:
		s = sdf.Intersect3D(sa, sb)
	default:
		return nil, fmt.Errorf("sdfcsg: unknown op %v", op)
	}

	// Disjoint difference/intersection operands have cheap answers; skip
	// the remesh when the bounding boxes cannot interact.
	if !boxesOverlap(sa.BoundingBox(), sb.BoundingBox()) {
		switch op {
		case kernel.OpIntersection:
			return nil, nil
		case kernel.OpDifference:
			return a.Clone().SplitComponents(), nil
		case kernel.OpUnion:
			return append(a.Clone().SplitComponents(), b.Clone().SplitComponents()...), nil
		}
	}

	cells := e.Cells
	if cells <= 0 {
		cells = DefaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, nil
	}

	out := &kernel.Mesh{}
	for _, tri := range triangles {
		for j := 0; j < 3; j++ {
			out.Indices = append(out.Indices, uint32(out.VertexCount()))
			out.Vertices = append(out.Vertices, tri[j].X, tri[j].Y, tri[j].Z)
		}
	}

	var comps []*kernel.Mesh
	for _, c := range out.SplitComponents() {
		if sliver(c, overlapThreshold) {
			continue
		}
		comps = append(comps, c)
	}
	return comps, nil
}

// checkInput rejects meshes the SDF lift cannot represent.
func checkInput(which string, m *kernel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("sdfcsg: operand %s is empty", which)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("sdfcsg: operand %s: %w", which, err)
	}
	if !m.IsWatertight() {
		return fmt.Errorf("sdfcsg: operand %s is not watertight", which)
	}
	return nil
}

// sliver reports whether a component is below the minimum feature size.
func sliver(m *kernel.Mesh, threshold float64) bool {
	min, max := m.BoundingBox()
	diag := 0.0
	for i := 0; i < 3; i++ {
		d := max[i] - min[i]
		diag += d * d
	}
	return math.Sqrt(diag) < threshold
}

func boxesOverlap(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}
