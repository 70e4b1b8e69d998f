//go:build manifold

// Package manifold provides a CGo-based boolean engine binding to the
// Manifold library (https://github.com/elalish/manifold). Unlike the
// default sdfcsg backend it performs exact mesh booleans and preserves
// the input topology away from the cut, at the cost of requiring the
// manifoldc C library at build time.
//
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/viewcarve/viewcarve/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Engine = (*Engine)(nil)

// Engine implements kernel.Engine using the Manifold C library.
type Engine struct{}

// New creates a Manifold-backed engine.
func New() (kernel.Engine, error) {
	return &Engine{}, nil
}

// solid wraps a C ManifoldManifold pointer with a finalizer for automatic
// memory management.
type solid struct {
	ptr *C.ManifoldManifold
}

func newSolid(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Boolean applies op to two watertight meshes and returns the connected
// components of the result. Manifold computes exact booleans, so the
// overlap threshold is ignored.
func (e *Engine) Boolean(a, b *kernel.Mesh, op kernel.Op, _ float64) ([]*kernel.Mesh, error) {
	sa, err := fromMesh(a)
	if err != nil {
		return nil, fmt.Errorf("manifold: operand a: %w", err)
	}
	sb, err := fromMesh(b)
	if err != nil {
		return nil, fmt.Errorf("manifold: operand b: %w", err)
	}

	alloc := C.manifold_alloc_manifold()
	var ptr *C.ManifoldManifold
	switch op {
	case kernel.OpUnion:
		ptr = C.manifold_union(alloc, sa.ptr, sb.ptr)
	case kernel.OpDifference:
		ptr = C.manifold_difference(alloc, sa.ptr, sb.ptr)
	case kernel.OpIntersection:
		ptr = C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	default:
		return nil, fmt.Errorf("manifold: unknown op %v", op)
	}
	res := newSolid(ptr)

	if status := C.manifold_status(res.ptr); status != C.MANIFOLD_NO_ERROR {
		return nil, fmt.Errorf("manifold: %s failed with status %d", op, int(status))
	}

	// One output mesh per connected component.
	decompAlloc := C.manifold_alloc_manifold_vec()
	vec := C.manifold_decompose(decompAlloc, res.ptr)
	defer C.manifold_delete_manifold_vec(vec)

	n := int(C.manifold_manifold_vec_length(vec))
	var out []*kernel.Mesh
	for i := 0; i < n; i++ {
		compAlloc := C.manifold_alloc_manifold()
		comp := newSolid(C.manifold_manifold_vec_get(compAlloc, vec, C.size_t(i)))
		m, err := toMesh(comp)
		if err != nil {
			return nil, err
		}
		if !m.IsEmpty() {
			m.Name = a.Name
			out = append(out, m)
		}
	}
	runtime.KeepAlive(sa)
	runtime.KeepAlive(sb)
	return out, nil
}

// fromMesh builds a Manifold solid from a kernel mesh through MeshGL.
func fromMesh(m *kernel.Mesh) (*solid, error) {
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("empty mesh")
	}

	verts := make([]C.float, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = C.float(v)
	}
	tris := make([]C.uint32_t, len(m.Indices))
	for i, idx := range m.Indices {
		tris[i] = C.uint32_t(idx)
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&verts[0])), C.size_t(m.VertexCount()), 3,
		(*C.uint32_t)(unsafe.Pointer(&tris[0])), C.size_t(m.TriangleCount()),
	)
	defer C.manifold_delete_meshgl(meshGL)

	alloc := C.manifold_alloc_manifold()
	s := newSolid(C.manifold_of_meshgl(alloc, meshGL))
	if status := C.manifold_status(s.ptr); status != C.MANIFOLD_NO_ERROR {
		return nil, fmt.Errorf("mesh is not manifold (status %d)", int(status))
	}
	return s, nil
}

// toMesh extracts a kernel mesh from a Manifold solid via MeshGL.
func toMesh(s *solid) (*kernel.Mesh, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, s.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	m := &kernel.Mesh{
		Vertices: make([]float64, numVert*3),
		Indices:  indices,
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		m.Vertices[i*3+0] = float64(propData[base+0])
		m.Vertices[i*3+1] = float64(propData[base+1])
		m.Vertices[i*3+2] = float64(propData[base+2])
	}

	if m.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			m.VertexCount(), numVert)
	}
	return m, nil
}
