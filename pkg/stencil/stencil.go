// Package stencil converts carver objects into cutting Solids and
// aggregates them into the set the orchestrator carves with. Curve-shaped
// sources (curves, grease pencil strokes, edge-only meshes) go through the
// region/volume pipeline; meshes with faces are used directly as solids.
package stencil

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/region"
	"github.com/viewcarve/viewcarve/pkg/view"
	"github.com/viewcarve/viewcarve/pkg/volume"
)

// Source is a carver object the pipeline can derive cutting solids from.
// Concrete types: CurveSource, MeshSource.
type Source interface {
	SourceName() string
}

// CurveSource carries one or more world-space polycurves. A curve object
// contributes a single PolyCurve; a grease pencil object contributes one
// per stroke, each carving independently.
type CurveSource struct {
	Name   string
	Curves []region.PolyCurve
}

func (s CurveSource) SourceName() string { return s.Name }

// MeshSource carries an object's evaluated base geometry. When the mesh
// has faces it is used directly as the cutting solid. A faceless mesh is
// interpreted as a wire shape: its edge chains are walked into polycurves
// which then take the region/volume path like any other curve.
type MeshSource struct {
	Name  string
	Mesh  *kernel.Mesh
	Edges [][2]int // populated for faceless meshes only
}

func (s MeshSource) SourceName() string { return s.Name }

// Stencil is one cutting solid plus the name of the source it came from.
type Stencil struct {
	Name  string
	Solid *kernel.Mesh
}

// Set is the ordered stencil set for one carve. Order follows source
// order, which the orchestrator derives from selection order.
type Set struct {
	Stencils []Stencil
}

// Dropped records a stencil that failed to build and was removed from the
// set without aborting the carve.
type Dropped struct {
	Name   string
	Reason string
}

// BuildOptions control the curve-to-region conversion.
type BuildOptions struct {
	GrowRatio  float64 // outward margin for extruded solids
	HullCurves bool    // use convex hulls for curve/stroke stencils
	HullWires  bool    // use convex hulls for edge-only mesh stencils
}

// Build converts sources into the stencil set. Each failing curve or
// source is dropped and reported, not fatal; an empty resulting set is an
// error left for the orchestrator to classify. Warnings (for example
// ambiguous self-intersecting regions) are collected across all sources.
func Build(sources []Source, basis view.Basis, near, far float64, opts BuildOptions) (*Set, []Dropped, []region.Warning, error) {
	set := &Set{}
	var dropped []Dropped
	var warnings []region.Warning

	for _, src := range sources {
		switch s := src.(type) {
		case CurveSource:
			for i, pc := range s.Curves {
				name := s.Name
				if len(s.Curves) > 1 {
					name = fmt.Sprintf("%s/stroke[%d]", s.Name, i)
				}
				solid, w, err := curveSolid(pc, basis, near, far, opts.GrowRatio, opts.HullCurves)
				warnings = append(warnings, w...)
				if err != nil {
					dropped = append(dropped, Dropped{Name: name, Reason: err.Error()})
					continue
				}
				set.Stencils = append(set.Stencils, Stencil{Name: name, Solid: solid})
			}

		case MeshSource:
			if s.Mesh != nil && s.Mesh.TriangleCount() > 0 {
				solid := s.Mesh.Clone()
				solid.Name = s.Name
				set.Stencils = append(set.Stencils, Stencil{Name: s.Name, Solid: solid})
				continue
			}
			curves := wireCurves(s)
			if len(curves) == 0 {
				dropped = append(dropped, Dropped{Name: s.Name, Reason: "mesh has no faces and no usable edge chains"})
				continue
			}
			for i, pc := range curves {
				name := s.Name
				if len(curves) > 1 {
					name = fmt.Sprintf("%s/chain[%d]", s.Name, i)
				}
				solid, w, err := curveSolid(pc, basis, near, far, opts.GrowRatio, opts.HullWires)
				warnings = append(warnings, w...)
				if err != nil {
					dropped = append(dropped, Dropped{Name: name, Reason: err.Error()})
					continue
				}
				set.Stencils = append(set.Stencils, Stencil{Name: name, Solid: solid})
			}

		default:
			dropped = append(dropped, Dropped{
				Name:   src.SourceName(),
				Reason: fmt.Sprintf("unsupported source type %T", src),
			})
		}
	}

	return set, dropped, warnings, nil
}

// curveSolid runs one polycurve through the region and volume stages.
func curveSolid(pc region.PolyCurve, basis view.Basis, near, far, growRatio float64, hull bool) (*kernel.Mesh, []region.Warning, error) {
	if n := pc.Distinct(); n < 2 {
		return nil, nil, fmt.Errorf("stencil: %d distinct point(s), need at least 2", n)
	}
	build := region.FromPolyCurve
	if hull {
		build = region.FromHull
	}
	rg, warnings, err := build(pc, basis)
	if err != nil {
		return nil, warnings, err
	}
	solid, err := volume.Extrude(rg, basis, near, far, growRatio)
	if err != nil {
		return nil, warnings, err
	}
	return solid, warnings, nil
}

// Unify replaces the set's stencils with their boolean union, so that
// subsequent carve logic sees exactly one stencil. A set with zero or one
// stencils is returned unchanged; union over an empty set degrades to
// nothing-to-do rather than failing here.
func (s *Set) Unify(eng kernel.Engine, overlapThreshold float64) error {
	if len(s.Stencils) <= 1 {
		return nil
	}
	acc := s.Stencils[0].Solid
	for _, st := range s.Stencils[1:] {
		parts, err := eng.Boolean(acc, st.Solid, kernel.OpUnion, overlapThreshold)
		if err != nil {
			return fmt.Errorf("stencil: union with %s: %w", st.Name, err)
		}
		if len(parts) == 0 {
			return errors.New("stencil: union produced no geometry")
		}
		acc = kernel.Merge(parts...)
	}
	acc.Name = "stencil-union"
	s.Stencils = []Stencil{{Name: "stencil-union", Solid: acc}}
	return nil
}

// wireCurves walks the edge chains of a faceless mesh into polycurves.
// Chains start at vertices of degree one (open paths); what remains after
// that are closed loops, walked from any unvisited degree-two vertex.
func wireCurves(s MeshSource) []region.PolyCurve {
	if s.Mesh == nil || len(s.Edges) == 0 {
		return nil
	}

	adj := make(map[int][]int)
	for _, e := range s.Edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}

	visited := make(map[int]bool)
	var curves []region.PolyCurve

	walk := func(start int) []int {
		path := []int{start}
		visited[start] = true
		cur := start
		prev := -1
		for {
			var next int = -1
			for _, n := range adj[cur] {
				if n != prev && (!visited[n] || n == start) {
					next = n
					break
				}
			}
			if next == -1 {
				return path
			}
			path = append(path, next)
			if next == start {
				return path // closed loop, endpoint repeated
			}
			visited[next] = true
			if len(adj[next]) != 2 {
				return path // junction or endpoint stops the chain
			}
			prev = cur
			cur = next
		}
	}

	collect := func(start int) {
		path := walk(start)
		if len(path) < 2 {
			return
		}
		pts := make([]r3.Vec, len(path))
		for i, vi := range path {
			pts[i] = s.Mesh.Vertex(vi)
		}
		curves = append(curves, region.PolyCurve{Points: pts, Kind: region.KindOther})
	}

	// Open chains first so loops are not entered mid-path.
	for v := 0; v < s.Mesh.VertexCount(); v++ {
		if !visited[v] && len(adj[v]) == 1 {
			collect(v)
		}
	}
	for v := 0; v < s.Mesh.VertexCount(); v++ {
		if !visited[v] && len(adj[v]) == 2 {
			collect(v)
		}
	}
	return curves
}
