package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/viewcarve/viewcarve/pkg/carve"
	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/region"
)

const sampleScene = `{
  "view": [0, 0, 1],
  "stencils": [
    {
      "name": "cut",
      "kind": "grease-pencil",
      "curves": [
        {"points": [[0,0,0],[1,0,0],[1,1,0],[0,1,0]], "cyclic": true}
      ]
    },
    {"name": "block", "kind": "mesh", "box": {"min": [2,2,2], "max": [3,3,3]}}
  ],
  "target": {"name": "slab", "kind": "mesh", "box": {"min": [0,0,0], "max": [4,4,1]}, "modifiers": true}
}`

func writeScene(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScene(t *testing.T) {
	doc, err := loadScene(writeScene(t, sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	if dir := doc.viewDir(); dir.Z != 1 || dir.X != 0 || dir.Y != 0 {
		t.Errorf("viewDir() = %v", dir)
	}

	sel := doc.selection()
	if len(sel) != 3 {
		t.Fatalf("selection has %d objects, want 3", len(sel))
	}
	// Document order: stencils first, target last.
	wantNames := []string{"cut", "block", "slab"}
	for i, n := range wantNames {
		if sel[i].Name != n {
			t.Errorf("selection[%d] = %q, want %q", i, sel[i].Name, n)
		}
	}

	gp := sel[0]
	if gp.Kind != carve.ObjectGreasePencil {
		t.Errorf("cut kind = %s, want grease-pencil", gp.Kind)
	}
	if len(gp.Curves) != 1 {
		t.Fatalf("cut has %d curves, want 1", len(gp.Curves))
	}
	if gp.Curves[0].Kind != region.KindGreasePencil {
		t.Errorf("curve kind = %s, want grease-pencil", gp.Curves[0].Kind)
	}
	if !gp.Curves[0].Cyclic {
		t.Error("cyclic flag lost")
	}

	block := sel[1]
	if block.Kind != carve.ObjectMesh || block.Mesh == nil {
		t.Fatal("box stencil did not expand to a mesh")
	}
	if got := block.Mesh.TriangleCount(); got != 12 {
		t.Errorf("box mesh has %d triangles, want 12", got)
	}

	target := sel[2]
	if !target.HasModifiers {
		t.Error("modifiers flag lost")
	}
	min, max := target.Mesh.BoundingBox()
	if min != [3]float64{0, 0, 0} || max != [3]float64{4, 4, 1} {
		t.Errorf("target bounds = %v..%v", min, max)
	}
}

func TestLoadSceneBadJSON(t *testing.T) {
	if _, err := loadScene(writeScene(t, "{not json")); err == nil {
		t.Error("malformed scene accepted")
	}
	if _, err := loadScene(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestMemScene(t *testing.T) {
	sc := newMemScene()
	m := kernel.Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	if err := sc.CreateObject("a", m); err != nil {
		t.Fatal(err)
	}
	if err := sc.CreateObject("a", m); err == nil {
		t.Error("duplicate create accepted")
	}
	if err := sc.DeleteObject("a"); err != nil {
		t.Fatal(err)
	}
	// Deleting objects the scene never saw is fine; the CLI scene only
	// tracks pieces it created.
	if err := sc.DeleteObject("never-created"); err != nil {
		t.Errorf("DeleteObject(unknown) = %v", err)
	}
}

func TestWriteSTLFile(t *testing.T) {
	m := kernel.Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	m.Name = "piece"
	path := filepath.Join(t.TempDir(), "piece.stl")
	if err := writeSTLFile(path, m); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// 80-byte header, 4-byte count, 50 bytes per triangle.
	if want := 84 + 50*m.TriangleCount(); len(data) != want {
		t.Errorf("STL file is %d bytes, want %d", len(data), want)
	}
	if string(data[:5]) != "piece" {
		t.Errorf("header starts with %q, want the mesh name", data[:5])
	}
	count := uint32(data[80]) | uint32(data[81])<<8 | uint32(data[82])<<16 | uint32(data[83])<<24
	if count != uint32(m.TriangleCount()) {
		t.Errorf("triangle count field = %d, want %d", count, m.TriangleCount())
	}
}

func TestNewEngine(t *testing.T) {
	if _, err := newEngine("sdf", 0); err != nil {
		t.Errorf("sdf engine: %v", err)
	}
	if _, err := newEngine("bogus", 0); err == nil {
		t.Error("unknown engine name accepted")
	}
}
