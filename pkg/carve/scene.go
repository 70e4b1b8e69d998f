package carve

import (
	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/region"
)

// ObjectKind classifies a selected scene object the way the pipeline
// needs to treat it. Mesh, surface and text objects contribute their
// evaluated base geometry directly; curve and grease pencil objects go
// through region extraction and extrusion.
type ObjectKind int

const (
	ObjectMesh ObjectKind = iota
	ObjectCurve
	ObjectGreasePencil
	ObjectSurface
	ObjectText
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectMesh:
		return "mesh"
	case ObjectCurve:
		return "curve"
	case ObjectGreasePencil:
		return "grease-pencil"
	case ObjectSurface:
		return "surface"
	case ObjectText:
		return "text"
	default:
		return "unknown"
	}
}

// Object is the host-independent snapshot of one selected scene object.
// The host adapter fills it from already-evaluated geometry; the carve
// core reads it and never reaches back into host state.
type Object struct {
	Name string
	Kind ObjectKind

	// Mesh is the evaluated base geometry for mesh/surface/text objects.
	// For an edge-only mesh, Edges lists its wire topology.
	Mesh  *kernel.Mesh
	Edges [][2]int

	// Curves holds the strokes of curve and grease pencil objects.
	Curves []region.PolyCurve

	// HasModifiers marks unapplied modifiers on the host object. Fatal on
	// the target; a documented, silently-ignored caveat on mesh and
	// grease pencil stencils (their base geometry is used as-is).
	HasModifiers bool
}

// usesOwnGeometry reports whether the object's solid is its own mesh
// rather than an extruded region.
func (o Object) usesOwnGeometry() bool {
	switch o.Kind {
	case ObjectMesh, ObjectSurface, ObjectText:
		return true
	default:
		return false
	}
}

// Scene is the mutation capability the orchestrator consumes. All calls
// happen in the finalizing phase, after every boolean has succeeded; a
// failed carve never touches the scene.
type Scene interface {
	// CreateObject materializes a result piece as a new scene object.
	CreateObject(name string, mesh *kernel.Mesh) error
	// DeleteObject removes an object (the consumed target, or a stencil
	// source when delete-carvers is set).
	DeleteObject(name string) error
}
