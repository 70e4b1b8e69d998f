// Package view maps between world space and the 2D projection plane of a
// viewing direction. A Basis is captured once per carve invocation and
// threaded through the pipeline explicitly, so every stage of one operation
// sees the same, consistent view.
package view

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"honnef.co/go/curve"
)

// DepthPadding is the extra margin added on both sides of the target's
// depth span so that extruded stencils comfortably clear the target.
const DepthPadding = 0.1

// ErrDegenerateView is returned when a basis cannot be derived because the
// view direction has (near) zero length.
var ErrDegenerateView = errors.New("view: degenerate view direction")

// Basis is an immutable orthonormal frame for one view direction.
// Right and Up span the projection plane; Forward points away from the
// viewer, so larger depths are farther from the viewer.
type Basis struct {
	Origin  r3.Vec
	Right   r3.Vec
	Up      r3.Vec
	Forward r3.Vec
}

// NewBasis derives an orthonormal basis from a viewing direction.
// The direction need not be normalized. The in-plane orientation (roll)
// is arbitrary but deterministic; only the plane itself matters for
// carving.
func NewBasis(viewDir r3.Vec) (Basis, error) {
	n := r3.Norm(viewDir)
	if n < 1e-12 {
		return Basis{}, ErrDegenerateView
	}
	forward := r3.Scale(1/n, viewDir)

	// Pick a helper axis that is not parallel to the view direction.
	helper := r3.Vec{Z: 1}
	if math.Abs(forward.Z) > 0.9 {
		helper = r3.Vec{Y: 1}
	}

	right := r3.Unit(r3.Cross(helper, forward))
	up := r3.Cross(forward, right)

	return Basis{Right: right, Up: up, Forward: forward}, nil
}

// To2D projects a world-space point onto the view plane.
func (b Basis) To2D(p r3.Vec) curve.Point {
	d := r3.Sub(p, b.Origin)
	return curve.Pt(r3.Dot(d, b.Right), r3.Dot(d, b.Up))
}

// Depth returns the signed distance of a world-space point along the view
// axis.
func (b Basis) Depth(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, b.Origin), b.Forward)
}

// To3D lifts a plane point back into world space at the given depth along
// the view axis.
func (b Basis) To3D(p curve.Point, depth float64) r3.Vec {
	out := b.Origin
	out = r3.Add(out, r3.Scale(p.X, b.Right))
	out = r3.Add(out, r3.Scale(p.Y, b.Up))
	out = r3.Add(out, r3.Scale(depth, b.Forward))
	return out
}

// SpanDepths returns cap depths that bracket the axis-aligned box
// [min, max] along the view axis, padded so an extrusion between them is
// guaranteed to fully span any geometry inside the box.
func (b Basis) SpanDepths(min, max [3]float64) (near, far float64) {
	near = math.Inf(1)
	far = math.Inf(-1)
	for i := 0; i < 8; i++ {
		corner := r3.Vec{
			X: pick(i&1 != 0, max[0], min[0]),
			Y: pick(i&2 != 0, max[1], min[1]),
			Z: pick(i&4 != 0, max[2], min[2]),
		}
		d := b.Depth(corner)
		near = math.Min(near, d)
		far = math.Max(far, d)
	}
	// Scale-relative padding on top of the fixed padding keeps large
	// scenes from having proportionally paper-thin clearance.
	pad := DepthPadding + 0.01*(far-near)
	return near - pad, far + pad
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
