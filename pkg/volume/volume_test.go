package volume

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"

	"github.com/viewcarve/viewcarve/pkg/region"
	"github.com/viewcarve/viewcarve/pkg/view"
)

func zBasis(t *testing.T) view.Basis {
	t.Helper()
	b, err := view.NewBasis(r3.Vec{Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func squareRegion(side float64) *region.Region {
	return &region.Region{Outer: region.Ring{
		curve.Pt(0, 0), curve.Pt(side, 0), curve.Pt(side, side), curve.Pt(0, side),
	}}
}

func TestExtrudeSquare(t *testing.T) {
	m, err := Extrude(squareRegion(2), zBasis(t), -1, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Two cap triangles per cap, one quad (two triangles) per boundary edge.
	if got := m.TriangleCount(); got != 12 {
		t.Errorf("TriangleCount() = %d, want 12", got)
	}
	if !m.IsWatertight() {
		t.Error("extrusion not watertight")
	}
	if got, want := m.Volume(), 2.0*2*4; math.Abs(got-want) > 1e-9 {
		t.Errorf("Volume() = %g, want %g", got, want)
	}
	min, max := m.BoundingBox()
	if math.Abs(min[2]+1) > 1e-9 || math.Abs(max[2]-3) > 1e-9 {
		t.Errorf("extrusion spans z [%g, %g], want [-1, 3]", min[2], max[2])
	}
}

func TestExtrudeGrow(t *testing.T) {
	base, err := Extrude(squareRegion(2), zBasis(t), 0, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	grown, err := Extrude(squareRegion(2), zBasis(t), 0, 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if base.TriangleCount() != grown.TriangleCount() {
		t.Errorf("grow changed topology: %d vs %d triangles",
			base.TriangleCount(), grown.TriangleCount())
	}
	// Cross-section area scales by (1+ratio)^2, depth is unchanged.
	want := base.Volume() * 1.1 * 1.1
	if got := grown.Volume(); math.Abs(got-want) > 1e-6 {
		t.Errorf("grown Volume() = %g, want %g", got, want)
	}
}

func TestExtrudeWithHole(t *testing.T) {
	rg := &region.Region{
		Outer: region.Ring{curve.Pt(0, 0), curve.Pt(4, 0), curve.Pt(4, 4), curve.Pt(0, 4)},
		// Holes are clockwise.
		Holes: []region.Ring{{curve.Pt(1, 1), curve.Pt(1, 3), curve.Pt(3, 3), curve.Pt(3, 1)}},
	}
	m, err := Extrude(rg, zBasis(t), 0, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsWatertight() {
		t.Error("extrusion with hole not watertight")
	}
	// (outer 16 - hole 4) * depth 2.
	if got, want := m.Volume(), 24.0; math.Abs(got-want) > 1e-6 {
		t.Errorf("Volume() = %g, want %g", got, want)
	}
}

func TestExtrudeObliqueView(t *testing.T) {
	b, err := view.NewBasis(r3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	m, err := Extrude(squareRegion(1), b, 0, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsWatertight() {
		t.Error("oblique extrusion not watertight")
	}
	// Volume is invariant under the change of basis.
	if got, want := m.Volume(), 2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Volume() = %g, want %g", got, want)
	}
}

func TestExtrudeArgumentChecks(t *testing.T) {
	rg := squareRegion(1)
	b := zBasis(t)
	if _, err := Extrude(rg, b, 0, 1, -0.5); err == nil {
		t.Error("negative grow ratio accepted")
	}
	if _, err := Extrude(rg, b, 2, 1, 0); err == nil {
		t.Error("inverted depth range accepted")
	}
	if _, err := Extrude(rg, b, 1, 1, 0); err == nil {
		t.Error("zero-depth range accepted")
	}
}
