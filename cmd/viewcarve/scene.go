package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viewcarve/viewcarve/pkg/carve"
	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/region"
)

// sceneDoc is the JSON scene format. Stencil order in the document is
// selection order; the target is always carved last.
type sceneDoc struct {
	View     [3]float64  `json:"view"`
	Stencils []objectDoc `json:"stencils"`
	Target   objectDoc   `json:"target"`
}

type objectDoc struct {
	Name      string       `json:"name"`
	Kind      string       `json:"kind"` // mesh, curve, grease-pencil, surface, text
	Mesh      *kernel.Mesh `json:"mesh,omitempty"`
	Box       *boxDoc      `json:"box,omitempty"`
	Edges     [][2]int     `json:"edges,omitempty"`
	Curves    []curveDoc   `json:"curves,omitempty"`
	Modifiers bool         `json:"modifiers,omitempty"`
}

type boxDoc struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type curveDoc struct {
	Points [][3]float64 `json:"points"`
	Cyclic bool         `json:"cyclic"`
}

func loadScene(path string) (*sceneDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

func (d *sceneDoc) viewDir() r3.Vec {
	return r3.Vec{X: d.View[0], Y: d.View[1], Z: d.View[2]}
}

// selection builds the carve selection: stencils in document order, the
// target last.
func (d *sceneDoc) selection() []carve.Object {
	var sel []carve.Object
	for _, o := range d.Stencils {
		sel = append(sel, o.toObject())
	}
	sel = append(sel, d.Target.toObject())
	return sel
}

func (o objectDoc) toObject() carve.Object {
	obj := carve.Object{
		Name:         o.Name,
		Mesh:         o.Mesh,
		Edges:        o.Edges,
		HasModifiers: o.Modifiers,
	}
	if o.Box != nil {
		obj.Mesh = kernel.Box(o.Box.Min, o.Box.Max)
	}
	switch o.Kind {
	case "curve":
		obj.Kind = carve.ObjectCurve
	case "grease-pencil":
		obj.Kind = carve.ObjectGreasePencil
	case "surface":
		obj.Kind = carve.ObjectSurface
	case "text":
		obj.Kind = carve.ObjectText
	default:
		obj.Kind = carve.ObjectMesh
	}
	kind := region.KindCurve
	if obj.Kind == carve.ObjectGreasePencil {
		kind = region.KindGreasePencil
	}
	for _, c := range o.Curves {
		pc := region.PolyCurve{Kind: kind, Cyclic: c.Cyclic}
		for _, p := range c.Points {
			pc.Points = append(pc.Points, r3.Vec{X: p[0], Y: p[1], Z: p[2]})
		}
		obj.Curves = append(obj.Curves, pc)
	}
	return obj
}

// memScene is the in-memory carve.Scene for the CLI: created pieces are
// collected for STL export, deletions only drop earlier creations.
type memScene struct {
	objects map[string]*kernel.Mesh
}

func newMemScene() *memScene {
	return &memScene{objects: make(map[string]*kernel.Mesh)}
}

func (s *memScene) CreateObject(name string, mesh *kernel.Mesh) error {
	if _, ok := s.objects[name]; ok {
		return fmt.Errorf("object %s already exists", name)
	}
	s.objects[name] = mesh
	return nil
}

func (s *memScene) DeleteObject(name string) error {
	delete(s.objects, name)
	return nil
}
