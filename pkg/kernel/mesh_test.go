package kernel

import (
	"math"
	"testing"
)

func unitBox() *Mesh {
	return Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
}

func TestBox(t *testing.T) {
	m := unitBox()
	if got := m.VertexCount(); got != 8 {
		t.Errorf("VertexCount() = %d, want 8", got)
	}
	if got := m.TriangleCount(); got != 12 {
		t.Errorf("TriangleCount() = %d, want 12", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if !m.IsWatertight() {
		t.Error("box mesh not watertight")
	}
	if got, want := m.Volume(), 1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Volume() = %g, want %g", got, want)
	}
}

func TestBoundingBox(t *testing.T) {
	m := Box([3]float64{-1, -2, -3}, [3]float64{4, 5, 6})
	min, max := m.BoundingBox()
	if min != [3]float64{-1, -2, -3} {
		t.Errorf("min = %v", min)
	}
	if max != [3]float64{4, 5, 6} {
		t.Errorf("max = %v", max)
	}
}

func TestVolumeScales(t *testing.T) {
	m := Box([3]float64{0, 0, 0}, [3]float64{2, 3, 4})
	if got, want := m.Volume(), 24.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Volume() = %g, want %g", got, want)
	}
}

func TestSplitComponents(t *testing.T) {
	a := Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	b := Box([3]float64{5, 5, 5}, [3]float64{6, 6, 6})
	merged := Merge(a, b)
	merged.Name = "pair"

	pieces := merged.SplitComponents()
	if len(pieces) != 2 {
		t.Fatalf("SplitComponents() = %d pieces, want 2", len(pieces))
	}
	for i, p := range pieces {
		if p.Name != "pair" {
			t.Errorf("piece %d name = %q, want %q", i, p.Name, "pair")
		}
		if got := p.TriangleCount(); got != 12 {
			t.Errorf("piece %d has %d triangles, want 12", i, got)
		}
		if !p.IsWatertight() {
			t.Errorf("piece %d not watertight", i)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("piece %d Validate() = %v", i, err)
		}
	}
	// Total volume must be preserved across the split.
	var total float64
	for _, p := range pieces {
		total += p.Volume()
	}
	if math.Abs(total-2) > 1e-9 {
		t.Errorf("total volume = %g, want 2", total)
	}
}

func TestSplitComponentsSingle(t *testing.T) {
	pieces := unitBox().SplitComponents()
	if len(pieces) != 1 {
		t.Fatalf("SplitComponents() = %d pieces, want 1", len(pieces))
	}
	if got, want := pieces[0].Volume(), 1.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Volume() = %g, want %g", got, want)
	}
}

func TestSplitComponentsWeldsSoup(t *testing.T) {
	// Duplicate every vertex per triangle; welding must still see one shell.
	box := unitBox()
	soup := &Mesh{Name: box.Name}
	for i := 0; i < box.TriangleCount(); i++ {
		tri := box.Triangle(i)
		for _, v := range tri {
			soup.Indices = append(soup.Indices, uint32(soup.VertexCount()))
			soup.Vertices = append(soup.Vertices, v.X, v.Y, v.Z)
		}
	}
	if got := len(soup.SplitComponents()); got != 1 {
		t.Errorf("soup split into %d components, want 1", got)
	}
	if !soup.IsWatertight() {
		t.Error("welded soup not watertight")
	}
}

func TestIsWatertight(t *testing.T) {
	open := unitBox()
	open.Indices = open.Indices[:len(open.Indices)-3] // drop one triangle
	degenerate := &Mesh{
		Vertices: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 0, 1},
	}

	tests := []struct {
		name string
		m    *Mesh
		want bool
	}{
		{"closed box", unitBox(), true},
		{"missing face", open, false},
		{"degenerate edge", degenerate, false},
		{"empty", &Mesh{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsWatertight(); got != tt.want {
				t.Errorf("IsWatertight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       *Mesh
		wantErr bool
	}{
		{"box", unitBox(), false},
		{"empty", &Mesh{}, false},
		{"ragged vertices", &Mesh{Vertices: []float64{0, 0}}, true},
		{"ragged indices", &Mesh{Vertices: []float64{0, 0, 0}, Indices: []uint32{0, 0}}, true},
		{"index out of range", &Mesh{Vertices: []float64{0, 0, 0}, Indices: []uint32{0, 0, 7}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a := unitBox()
	a.Name = "a"
	b := Box([3]float64{2, 0, 0}, [3]float64{3, 1, 1})
	b.Name = "b"

	m := Merge(a, b)
	if got := m.VertexCount(); got != 16 {
		t.Errorf("VertexCount() = %d, want 16", got)
	}
	if got := m.TriangleCount(); got != 24 {
		t.Errorf("TriangleCount() = %d, want 24", got)
	}
	if m.Name != "a" {
		t.Errorf("Name = %q, want %q", m.Name, "a")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	// Indices of the second mesh must be rebased past the first.
	for _, idx := range m.Indices[len(a.Indices):] {
		if idx < 8 {
			t.Fatalf("second mesh index %d not rebased", idx)
		}
	}
}

func TestClone(t *testing.T) {
	m := unitBox()
	m.Name = "orig"
	c := m.Clone()
	c.Vertices[0] = 99
	c.Name = "copy"
	if m.Vertices[0] == 99 {
		t.Error("Clone shares vertex storage with the original")
	}
	if m.Name != "orig" {
		t.Error("Clone mutated the original name")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpUnion, "union"},
		{OpDifference, "difference"},
		{OpIntersection, "intersection"},
		{Op(9), "Op(9)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", int(tt.op), got, tt.want)
		}
	}
}
