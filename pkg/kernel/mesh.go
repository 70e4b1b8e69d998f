package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// weldEps quantizes vertex positions when welding coincident vertices for
// topology queries. Boolean backends that emit triangle soup (marching
// cubes) duplicate vertices along shared edges; welding recovers the
// connectivity.
const weldEps = 1e-7

// Mesh is a triangle mesh used as a carve Solid. All arrays are flat:
// Vertices has 3 float64s per vertex (x,y,z), Indices has 3 uint32s per
// triangle, counter-clockwise when seen from outside.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which scene object this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) r3.Vec {
	return r3.Vec{X: m.Vertices[i*3], Y: m.Vertices[i*3+1], Z: m.Vertices[i*3+2]}
}

// Triangle returns the three corner positions of triangle t.
func (m *Mesh) Triangle(t int) [3]r3.Vec {
	return [3]r3.Vec{
		m.Vertex(int(m.Indices[t*3])),
		m.Vertex(int(m.Indices[t*3+1])),
		m.Vertex(int(m.Indices[t*3+2])),
	}
}

// BoundingBox returns the axis-aligned bounding box.
func (m *Mesh) BoundingBox() (min, max [3]float64) {
	min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		for a := 0; a < 3; a++ {
			v := m.Vertices[i*3+a]
			min[a] = math.Min(min[a], v)
			max[a] = math.Max(max[a], v)
		}
	}
	return min, max
}

// Volume returns the enclosed volume via the signed tetrahedron sum.
// Only meaningful for watertight meshes with consistent outward winding.
func (m *Mesh) Volume() float64 {
	var v float64
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		v += r3.Dot(tri[0], r3.Cross(tri[1], tri[2]))
	}
	return v / 6
}

// vertexKey quantizes a position for welding.
type vertexKey [3]int64

func keyOf(v r3.Vec) vertexKey {
	return vertexKey{
		int64(math.Round(v.X / weldEps)),
		int64(math.Round(v.Y / weldEps)),
		int64(math.Round(v.Z / weldEps)),
	}
}

// weldedIndices maps every vertex to a canonical index shared by all
// vertices at (numerically) the same position.
func (m *Mesh) weldedIndices() []int {
	canon := make(map[vertexKey]int)
	out := make([]int, m.VertexCount())
	for i := 0; i < m.VertexCount(); i++ {
		k := keyOf(m.Vertex(i))
		if c, ok := canon[k]; ok {
			out[i] = c
		} else {
			canon[k] = i
			out[i] = i
		}
	}
	return out
}

// IsWatertight reports whether every edge of the mesh is shared by exactly
// two triangles, after welding coincident vertices.
func (m *Mesh) IsWatertight() bool {
	if m.IsEmpty() {
		return false
	}
	welded := m.weldedIndices()
	edges := make(map[[2]int]int)
	for t := 0; t < m.TriangleCount(); t++ {
		for e := 0; e < 3; e++ {
			a := welded[m.Indices[t*3+e]]
			b := welded[m.Indices[t*3+(e+1)%3]]
			if a == b {
				return false // degenerate edge
			}
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}]++
		}
	}
	for _, n := range edges {
		if n != 2 {
			return false
		}
	}
	return true
}

// SplitComponents partitions the mesh into its connected components, one
// mesh per component. Vertices are welded by position first so triangle
// soup splits correctly. The receiver's Name is carried onto every piece.
func (m *Mesh) SplitComponents() []*Mesh {
	if m.IsEmpty() {
		return nil
	}
	welded := m.weldedIndices()

	// Union-find over welded vertex ids.
	parent := make([]int, m.VertexCount())
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for i, c := range welded {
		union(i, c)
	}
	for t := 0; t < m.TriangleCount(); t++ {
		union(int(m.Indices[t*3]), int(m.Indices[t*3+1]))
		union(int(m.Indices[t*3]), int(m.Indices[t*3+2]))
	}

	// Group triangles by component root and re-index each group.
	groups := make(map[int][]int)
	var order []int
	for t := 0; t < m.TriangleCount(); t++ {
		root := find(int(m.Indices[t*3]))
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], t)
	}

	var out []*Mesh
	for _, root := range order {
		piece := &Mesh{Name: m.Name}
		remap := make(map[uint32]uint32)
		for _, t := range groups[root] {
			for e := 0; e < 3; e++ {
				old := m.Indices[t*3+e]
				ni, ok := remap[old]
				if !ok {
					ni = uint32(piece.VertexCount())
					remap[old] = ni
					v := m.Vertex(int(old))
					piece.Vertices = append(piece.Vertices, v.X, v.Y, v.Z)
				}
				piece.Indices = append(piece.Indices, ni)
			}
		}
		out = append(out, piece)
	}
	return out
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: make([]float64, len(m.Vertices)),
		Indices:  make([]uint32, len(m.Indices)),
		Name:     m.Name,
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Indices, m.Indices)
	return out
}

// Validate performs cheap structural checks: index bounds and triangle
// array shape.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("kernel: vertex array length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: index array length %d is not a multiple of 3", len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("kernel: index %d at position %d out of range (have %d vertices)", idx, i, n)
		}
	}
	return nil
}

// Merge concatenates meshes into one. The result may have several
// disjoint shells; it is still a single Solid for boolean purposes.
func Merge(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
		if out.Name == "" {
			out.Name = m.Name
		}
	}
	return out
}

// Box builds an axis-aligned box mesh spanning [min, max] with outward
// winding. Used by tests and by hosts that describe targets as primitives.
func Box(min, max [3]float64) *Mesh {
	xs := [2]float64{min[0], max[0]}
	ys := [2]float64{min[1], max[1]}
	zs := [2]float64{min[2], max[2]}

	m := &Mesh{}
	for _, z := range zs {
		for _, y := range ys {
			for _, x := range xs {
				m.Vertices = append(m.Vertices, x, y, z)
			}
		}
	}
	// Vertex i = x-bit | y-bit<<1 | z-bit<<2.
	quads := [6][4]uint32{
		{0, 2, 3, 1}, // z = min, normal -Z
		{4, 5, 7, 6}, // z = max, normal +Z
		{0, 1, 5, 4}, // y = min, normal -Y
		{2, 6, 7, 3}, // y = max, normal +Y
		{0, 4, 6, 2}, // x = min, normal -X
		{1, 3, 7, 5}, // x = max, normal +X
	}
	for _, q := range quads {
		m.Indices = append(m.Indices, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	return m
}
