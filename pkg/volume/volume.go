// Package volume extrudes a 2D stencil Region along the view axis into a
// watertight 3D solid. The region is triangulated into two mirrored caps,
// boundary edges are bridged with side walls, and the whole solid is grown
// outward by a configurable ratio before triangulation so that downstream
// boolean operations are less likely to hit coincident-face degeneracies.
package volume

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/go-libtess2"
	"honnef.co/go/curve"

	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/region"
	"github.com/viewcarve/viewcarve/pkg/view"
)

// snapEps matches tessellation output vertices back to the region's
// double-precision input points, undoing the float32 round-trip through
// the tessellator for vertices it did not synthesize.
const snapEps = 1e-4

// Extrude builds a capped prism from the region between the near and far
// depths along the view axis. growRatio ≥ 0 expands the region outward
// before extrusion; 0 is permitted but leaves no safety margin against
// degenerate boolean inputs. The caller is responsible for choosing depths
// that fully span the target (view.Basis.SpanDepths).
func Extrude(rg *region.Region, basis view.Basis, near, far, growRatio float64) (*kernel.Mesh, error) {
	if growRatio < 0 {
		return nil, fmt.Errorf("volume: grow ratio must be >= 0, got %g", growRatio)
	}
	if far <= near {
		return nil, fmt.Errorf("volume: far depth %g not beyond near depth %g", far, near)
	}

	grown := rg.Grow(growRatio)

	pts, tris, err := triangulate(grown)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, errors.New("volume: region triangulated to nothing")
	}

	n := uint32(len(pts))
	mesh := &kernel.Mesh{}

	// Near cap vertices 0..n-1, far cap vertices n..2n-1.
	for _, p := range pts {
		v := basis.To3D(p, near)
		mesh.Vertices = append(mesh.Vertices, v.X, v.Y, v.Z)
	}
	for _, p := range pts {
		v := basis.To3D(p, far)
		mesh.Vertices = append(mesh.Vertices, v.X, v.Y, v.Z)
	}

	// In-plane counter-clockwise triangles face along the view axis, so
	// the far cap keeps the tessellation order and the near cap reverses
	// it to face the viewer.
	for _, t := range tris {
		mesh.Indices = append(mesh.Indices, t[0], t[2], t[1])
	}
	for _, t := range tris {
		mesh.Indices = append(mesh.Indices, n+t[0], n+t[1], n+t[2])
	}

	// Directed edges whose reverse never appears belong to the region
	// boundary; each one is bridged with an outward-facing side quad.
	seen := make(map[[2]uint32]bool)
	for _, t := range tris {
		seen[[2]uint32{t[0], t[1]}] = true
		seen[[2]uint32{t[1], t[2]}] = true
		seen[[2]uint32{t[2], t[0]}] = true
	}
	for e := range seen {
		if seen[[2]uint32{e[1], e[0]}] {
			continue
		}
		a, b := e[0], e[1]
		mesh.Indices = append(mesh.Indices,
			a, b, n+b,
			a, n+b, n+a,
		)
	}

	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	if !mesh.IsWatertight() {
		return nil, errors.New("volume: extrusion is not watertight")
	}
	return mesh, nil
}

// triangulate runs the tessellator over the region's boundary contours and
// returns double-precision plane points plus triangle index triples.
// The positive winding rule keeps the counter-clockwise outer boundary and
// drops the area enclosed by the clockwise holes.
func triangulate(rg *region.Region) ([]curve.Point, [][3]uint32, error) {
	contours := make([]libtess2.Contour, 0, 1+len(rg.Holes))
	contours = append(contours, ringContour(rg.Outer))
	for _, h := range rg.Holes {
		contours = append(contours, ringContour(h))
	}

	elements, verts, err := libtess2.Tesselate(contours, libtess2.WindingRulePositive)
	if err != nil {
		return nil, nil, fmt.Errorf("volume: tessellation failed: %w", err)
	}

	pts := make([]curve.Point, len(verts))
	for i, v := range verts {
		pts[i] = snapToRegion(rg, curve.Pt(float64(v.X), float64(v.Y)))
	}

	tris := make([][3]uint32, 0, len(elements)/3)
	for i := 0; i+2 < len(elements); i += 3 {
		tris = append(tris, [3]uint32{
			uint32(elements[i]),
			uint32(elements[i+1]),
			uint32(elements[i+2]),
		})
	}
	return pts, tris, nil
}

func ringContour(r region.Ring) libtess2.Contour {
	c := make(libtess2.Contour, len(r))
	for i, p := range r {
		c[i] = libtess2.Vertex{X: float32(p.X), Y: float32(p.Y)}
	}
	return c
}

// snapToRegion replaces a tessellator output vertex with the nearest
// original boundary point when one is within snapEps.
func snapToRegion(rg *region.Region, p curve.Point) curve.Point {
	best := p
	bestD := snapEps
	snap := func(r region.Ring) {
		for _, q := range r {
			if d := p.Distance(q); d < bestD {
				best, bestD = q, d
			}
		}
	}
	snap(rg.Outer)
	for _, h := range rg.Holes {
		snap(h)
	}
	return best
}
