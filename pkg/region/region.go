// Package region converts projected stencil geometry into closed,
// non-self-intersecting 2D polygons. A Region is the canonical stencil
// shape: one simple outer boundary plus zero or more simple holes that lie
// strictly inside it. Self-intersecting input polylines are repaired by
// splitting them into simple sub-loops; inputs that enclose no area are
// rejected.
package region

import (
	"errors"
	"fmt"
	"math"

	"honnef.co/go/curve"

	"github.com/viewcarve/viewcarve/pkg/view"
)

const (
	// coincidentEps merges points that are effectively the same vertex and
	// decides whether a curve's endpoints already close it.
	coincidentEps = 1e-6

	// areaEps is the threshold below which an enclosed area counts as zero.
	areaEps = 1e-9
)

// ErrNoRegion is returned when a curve degenerates under projection:
// fewer than three distinct projected points, or no enclosed area.
var ErrNoRegion = errors.New("region: curve encloses no region")

// Warning codes reported alongside a successfully built Region.
const (
	WarnAmbiguousRegion = "AmbiguousRegion"
)

// Warning is a non-fatal finding produced while building a Region.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Ring is a closed boundary in projection space. The closing edge from the
// last point back to the first is implicit.
type Ring []curve.Point

// path converts the ring to a closed BezPath for area and winding queries.
func (r Ring) path() curve.BezPath {
	var p curve.BezPath
	if len(r) == 0 {
		return p
	}
	p.MoveTo(r[0])
	for _, pt := range r[1:] {
		p.LineTo(pt)
	}
	p.ClosePath()
	return p
}

// SignedArea returns the shoelace area; positive for counter-clockwise
// rings.
func (r Ring) SignedArea() float64 {
	return r.path().SignedArea()
}

// Area returns the absolute enclosed area.
func (r Ring) Area() float64 {
	return math.Abs(r.SignedArea())
}

// Contains reports whether pt lies strictly inside the ring.
func (r Ring) Contains(pt curve.Point) bool {
	return r.path().Winding(pt) != 0
}

// Centroid returns the area centroid of the ring.
func (r Ring) Centroid() curve.Point {
	var cx, cy, a float64
	n := len(r)
	for i := 0; i < n; i++ {
		p, q := r[i], r[(i+1)%n]
		w := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * w
		cy += (p.Y + q.Y) * w
		a += w
	}
	if math.Abs(a) < areaEps {
		// Degenerate ring; fall back to the vertex mean.
		for _, p := range r {
			cx += p.X
			cy += p.Y
		}
		return curve.Pt(cx/float64(n), cy/float64(n))
	}
	return curve.Pt(cx/(3*a), cy/(3*a))
}

// reversed returns the ring with opposite orientation.
func (r Ring) reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// scaled returns the ring scaled by factor about the given center.
func (r Ring) scaled(center curve.Point, factor float64) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = curve.Pt(center.X+(p.X-center.X)*factor, center.Y+(p.Y-center.Y)*factor)
	}
	return out
}

// isSimple reports whether no two non-adjacent edges of the ring cross.
func (r Ring) isSimple() bool {
	_, _, _, ok := firstCrossing(r)
	return !ok
}

// Region is a closed planar polygon with holes in projection space.
// Invariants: the outer boundary and every hole are simple, the outer
// boundary is counter-clockwise, holes are clockwise, lie strictly inside
// the outer boundary, and do not overlap each other.
type Region struct {
	Outer Ring
	Holes []Ring
}

// Area returns the enclosed area: outer area minus hole areas.
func (rg *Region) Area() float64 {
	a := rg.Outer.Area()
	for _, h := range rg.Holes {
		a -= h.Area()
	}
	return a
}

// Contains reports whether pt is inside the region (inside the outer
// boundary and outside every hole).
func (rg *Region) Contains(pt curve.Point) bool {
	if !rg.Outer.Contains(pt) {
		return false
	}
	for _, h := range rg.Holes {
		if h.Contains(pt) {
			return false
		}
	}
	return true
}

// Grow returns a copy of the region expanded by the given ratio: the outer
// boundary is scaled outward by 1+ratio about its centroid and each hole
// is shrunk by the inverse factor about its own centroid. The margin makes
// the downstream boolean step less prone to coincident-face degeneracies.
// A ratio of 0 is permitted and returns an unscaled copy.
func (rg *Region) Grow(ratio float64) *Region {
	factor := 1 + ratio
	out := &Region{Outer: rg.Outer.scaled(rg.Outer.Centroid(), factor)}
	for _, h := range rg.Holes {
		out.Holes = append(out.Holes, h.scaled(h.Centroid(), 1/factor))
	}
	return out
}

// Validate checks the Region invariants.
func (rg *Region) Validate() error {
	if len(rg.Outer) < 3 {
		return fmt.Errorf("region: outer boundary has %d points, need at least 3", len(rg.Outer))
	}
	if rg.Outer.Area() < areaEps {
		return errors.New("region: outer boundary encloses no area")
	}
	if !rg.Outer.isSimple() {
		return errors.New("region: outer boundary self-intersects")
	}
	for i, h := range rg.Holes {
		if len(h) < 3 {
			return fmt.Errorf("region: hole %d has %d points, need at least 3", i, len(h))
		}
		if !h.isSimple() {
			return fmt.Errorf("region: hole %d self-intersects", i)
		}
		for _, p := range h {
			if !rg.Outer.Contains(p) {
				return fmt.Errorf("region: hole %d is not inside the outer boundary", i)
			}
		}
		for j := 0; j < i; j++ {
			if ringsOverlap(h, rg.Holes[j]) {
				return fmt.Errorf("region: holes %d and %d overlap", j, i)
			}
		}
	}
	return nil
}

// ringsOverlap reports whether two rings cross or one contains the other.
func ringsOverlap(a, b Ring) bool {
	if edgesCross(a, b) {
		return true
	}
	return a.Contains(b[0]) || b.Contains(a[0])
}

// FromPolyCurve projects a world-space curve into the view plane and
// builds its stencil Region. Open curves are auto-closed with a straight
// segment between their endpoints. Self-intersecting closed polylines are
// split into simple loops: the largest loop becomes the outer boundary,
// loops nested inside it become holes, and any remaining disjoint loops
// are discarded with an AmbiguousRegion warning. Degenerate curves fail
// with ErrNoRegion.
func FromPolyCurve(pc PolyCurve, basis view.Basis) (*Region, []Warning, error) {
	ring := projectRing(pc, basis)
	if len(ring) < 3 {
		return nil, nil, ErrNoRegion
	}

	loops := splitLoops(ring, 0)

	// Drop loops that collapsed to nothing.
	kept := loops[:0]
	for _, lp := range loops {
		lp = dedupeRing(lp)
		if len(lp) >= 3 && lp.Area() >= areaEps {
			kept = append(kept, lp)
		}
	}
	if len(kept) == 0 {
		return nil, nil, ErrNoRegion
	}

	// Largest loop is the outer boundary.
	outerIdx := 0
	for i, lp := range kept {
		if lp.Area() > kept[outerIdx].Area() {
			outerIdx = i
		}
	}
	outer := kept[outerIdx]
	if outer.SignedArea() < 0 {
		outer = outer.reversed()
	}

	rg := &Region{Outer: outer}
	var warnings []Warning
	discarded := 0
	for i, lp := range kept {
		if i == outerIdx {
			continue
		}
		if holeFits(rg, lp) {
			if lp.SignedArea() > 0 {
				lp = lp.reversed()
			}
			rg.Holes = append(rg.Holes, lp)
		} else {
			discarded++
		}
	}
	if discarded > 0 {
		warnings = append(warnings, Warning{
			Code: WarnAmbiguousRegion,
			Message: fmt.Sprintf("%s stencil produced %d disjoint loop(s); keeping the largest-area loop only",
				pc.Kind, discarded),
		})
	}

	if err := rg.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("%w: %v", ErrNoRegion, err)
	}
	return rg, warnings, nil
}

// holeFits reports whether loop can join the region as a hole: strictly
// inside the outer boundary and disjoint from the holes accepted so far.
func holeFits(rg *Region, loop Ring) bool {
	for _, p := range loop {
		if !rg.Outer.Contains(p) {
			return false
		}
	}
	if edgesCross(rg.Outer, loop) {
		return false
	}
	for _, h := range rg.Holes {
		if ringsOverlap(h, loop) {
			return false
		}
	}
	return true
}

// FromHull builds a Region from the convex hull of the curve's projected
// points. Hull stencils cannot self-intersect, which trades shape fidelity
// for a lower risk of bad boolean geometry.
func FromHull(pc PolyCurve, basis view.Basis) (*Region, []Warning, error) {
	pts := make([]curve.Point, 0, len(pc.Points))
	for _, p := range pc.Points {
		pts = append(pts, basis.To2D(p))
	}
	hull := ConvexHull(pts)
	if len(hull) < 3 || hull.Area() < areaEps {
		return nil, nil, ErrNoRegion
	}
	return &Region{Outer: hull}, nil, nil
}

// ConvexHull computes the convex hull of a point set using the monotone
// chain method. The result is counter-clockwise with no repeated endpoint.
func ConvexHull(pts []curve.Point) Ring {
	if len(pts) < 3 {
		return nil
	}
	sorted := make([]curve.Point, len(pts))
	copy(sorted, pts)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && lessXY(sorted[j], sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	cross := func(o, a, b curve.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	var lower, upper []curve.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return Ring(hull)
}

func lessXY(a, b curve.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// projectRing projects the curve into the view plane, merges coincident
// points, removes exactly-collinear runs, and closes the ring. The
// returned ring has no repeated endpoint.
func projectRing(pc PolyCurve, basis view.Basis) Ring {
	ring := make(Ring, 0, len(pc.Points))
	for _, p := range pc.Points {
		ring = append(ring, basis.To2D(p))
	}

	// Drop an explicitly repeated endpoint; the closing edge is implicit.
	for len(ring) > 1 && ring[0].Distance(ring[len(ring)-1]) <= coincidentEps {
		ring = ring[:len(ring)-1]
	}

	return dedupeRing(ring)
}

// dedupeRing removes coincident consecutive points and collinear middle
// points, including across the implicit closing edge. Collinear runs must
// go before self-intersection analysis: they produce zero-area spurious
// loops otherwise.
func dedupeRing(ring Ring) Ring {
	for {
		n := len(ring)
		if n < 3 {
			return ring
		}
		changed := false
		out := make(Ring, 0, n)
		for i := 0; i < n; i++ {
			prev := ring[(i-1+n)%n]
			cur := ring[i]
			next := ring[(i+1)%n]
			if cur.Distance(next) <= coincidentEps {
				changed = true
				continue
			}
			a := cur.Sub(prev)
			b := next.Sub(cur)
			if math.Abs(a.Cross(b)) <= areaEps && a.Dot(b) > 0 {
				// cur sits on the straight run prev→next.
				changed = true
				continue
			}
			out = append(out, cur)
		}
		ring = out
		if !changed {
			return ring
		}
	}
}
