package region

import (
	"math"
	"testing"

	"honnef.co/go/curve"
)

func TestFirstCrossing(t *testing.T) {
	square := Ring{curve.Pt(0, 0), curve.Pt(2, 0), curve.Pt(2, 2), curve.Pt(0, 2)}
	if _, _, _, ok := firstCrossing(square); ok {
		t.Error("simple square reported a crossing")
	}

	bowTie := Ring{curve.Pt(0, 0), curve.Pt(2, 0), curve.Pt(0, 1), curve.Pt(2, 1)}
	i, j, at, ok := firstCrossing(bowTie)
	if !ok {
		t.Fatal("bow-tie crossing not found")
	}
	if i != 1 || j != 3 {
		t.Errorf("crossing edges = (%d, %d), want (1, 3)", i, j)
	}
	if math.Abs(at.X-1) > 1e-9 || math.Abs(at.Y-0.5) > 1e-9 {
		t.Errorf("crossing at %v, want (1, 0.5)", at)
	}
}

func TestSplitLoopsBowTie(t *testing.T) {
	bowTie := Ring{curve.Pt(0, 0), curve.Pt(2, 0), curve.Pt(0, 1), curve.Pt(2, 1)}
	loops := splitLoops(bowTie, 0)
	if len(loops) != 2 {
		t.Fatalf("splitLoops produced %d loops, want 2", len(loops))
	}
	for k, lp := range loops {
		if !lp.isSimple() {
			t.Errorf("loop %d still self-intersects", k)
		}
		if got, want := lp.Area(), 0.5; math.Abs(got-want) > 1e-9 {
			t.Errorf("loop %d area = %g, want %g", k, got, want)
		}
	}
}

func TestSplitLoopsSimpleRingUnchanged(t *testing.T) {
	square := Ring{curve.Pt(0, 0), curve.Pt(2, 0), curve.Pt(2, 2), curve.Pt(0, 2)}
	loops := splitLoops(square, 0)
	if len(loops) != 1 {
		t.Fatalf("splitLoops produced %d loops, want 1", len(loops))
	}
	if got, want := loops[0].Area(), 4.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("loop area = %g, want %g", got, want)
	}
}

func TestEdgesCross(t *testing.T) {
	a := Ring{curve.Pt(0, 0), curve.Pt(2, 0), curve.Pt(2, 2), curve.Pt(0, 2)}
	tests := []struct {
		name string
		b    Ring
		want bool
	}{
		{"crossing", Ring{curve.Pt(1, 1), curve.Pt(3, 1), curve.Pt(3, 3), curve.Pt(1, 3)}, true},
		{"disjoint", Ring{curve.Pt(5, 5), curve.Pt(6, 5), curve.Pt(6, 6), curve.Pt(5, 6)}, false},
		{"contained", Ring{curve.Pt(0.5, 0.5), curve.Pt(1.5, 0.5), curve.Pt(1.5, 1.5), curve.Pt(0.5, 1.5)}, false},
		{"shared corner", Ring{curve.Pt(2, 2), curve.Pt(3, 2), curve.Pt(3, 3), curve.Pt(2, 3)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := edgesCross(a, tt.b); got != tt.want {
				t.Errorf("edgesCross() = %v, want %v", got, tt.want)
			}
		})
	}
}
