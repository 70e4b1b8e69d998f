package sdfcsg

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/viewcarve/viewcarve/pkg/kernel"
)

// Compile-time interface check.
var _ sdf.SDF3 = (*meshSDF)(nil)

// parityDir is the fixed ray direction used for inside/outside tests.
// Deliberately irrational-ish and asymmetric so rays do not graze mesh
// edges or vertices on axis-aligned geometry.
var parityDir = v3.Vec{X: 0.5773502691896258, Y: 0.5853981633974483, Z: 0.5931471805599453}

// meshSDF lifts a watertight triangle mesh to an sdf.SDF3. Distance is
// the exact minimum distance over all triangles; the sign comes from
// ray-crossing parity. Evaluation is brute force over the triangle list,
// which is fine for the interactive-editing-sized meshes this pipeline
// handles.
type meshSDF struct {
	tris [][3]v3.Vec
	bb   sdf.Box3
}

func newMeshSDF(m *kernel.Mesh) *meshSDF {
	s := &meshSDF{tris: make([][3]v3.Vec, m.TriangleCount())}
	for t := range s.tris {
		tri := m.Triangle(t)
		for j := 0; j < 3; j++ {
			s.tris[t][j] = v3.Vec{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z}
		}
	}
	min, max := m.BoundingBox()
	s.bb = sdf.Box3{
		Min: v3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: v3.Vec{X: max[0], Y: max[1], Z: max[2]},
	}
	return s
}

// BoundingBox returns the axis-aligned bounding box of the mesh.
func (s *meshSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// Evaluate returns the signed distance from p to the mesh surface,
// negative inside.
func (s *meshSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(1)
	for _, tri := range s.tris {
		d = math.Min(d, distToTriangle(p, tri))
	}
	if s.inside(p) {
		return -d
	}
	return d
}

// inside tests ray-crossing parity along parityDir.
func (s *meshSDF) inside(p v3.Vec) bool {
	crossings := 0
	for _, tri := range s.tris {
		if rayHitsTriangle(p, parityDir, tri) {
			crossings++
		}
	}
	return crossings%2 == 1
}

func sub(a, b v3.Vec) v3.Vec   { return v3.Vec{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func add(a, b v3.Vec) v3.Vec   { return v3.Vec{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }
func scale(f float64, a v3.Vec) v3.Vec {
	return v3.Vec{X: f * a.X, Y: f * a.Y, Z: f * a.Z}
}
func dot(a, b v3.Vec) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func cross(a, b v3.Vec) v3.Vec {
	return v3.Vec{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// rayHitsTriangle is Möller–Trumbore with strictly positive ray
// parameter.
func rayHitsTriangle(origin, dir v3.Vec, tri [3]v3.Vec) bool {
	const eps = 1e-12
	e1 := sub(tri[1], tri[0])
	e2 := sub(tri[2], tri[0])
	h := cross(dir, e1)
	det := dot(e2, h)
	if math.Abs(det) < eps {
		return false
	}
	inv := 1 / det
	s := sub(origin, tri[0])
	u := dot(s, h) * inv
	if u < 0 || u > 1 {
		return false
	}
	q := cross(s, e2)
	v := dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return false
	}
	t := dot(e1, q) * inv
	return t > eps
}

// distToTriangle returns the distance from p to the closest point of the
// triangle, via barycentric region clamping.
func distToTriangle(p v3.Vec, tri [3]v3.Vec) float64 {
	a, b, c := tri[0], tri[1], tri[2]
	ab := sub(b, a)
	ac := sub(c, a)
	ap := sub(p, a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return norm(sub(p, a))
	}

	bp := sub(p, b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return norm(sub(p, b))
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		return norm(sub(p, add(a, scale(t, ab))))
	}

	cp := sub(p, c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return norm(sub(p, c))
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		return norm(sub(p, add(a, scale(t, ac))))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return norm(sub(p, add(b, scale(t, sub(c, b)))))
	}

	// Inside the face region: distance to the triangle plane.
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	closest := add(a, add(scale(v, ab), scale(w, ac)))
	return norm(sub(p, closest))
}

func norm(v v3.Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}
