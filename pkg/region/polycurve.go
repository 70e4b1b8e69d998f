package region

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags the source a PolyCurve was extracted from. The carve pipeline
// treats all kinds the same way; the tag exists for logging and for host
// layers that apply different validation to grease pencil strokes.
type Kind int

const (
	KindCurve Kind = iota
	KindGreasePencil
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindCurve:
		return "curve"
	case KindGreasePencil:
		return "grease-pencil"
	default:
		return "other"
	}
}

// PolyCurve is an ordered sequence of world-space points sampled from a
// curve, a grease pencil stroke, or a mesh edge chain. It may be open or
// closed; Cyclic marks sources whose host representation is explicitly
// cyclic even when the endpoint is not repeated.
type PolyCurve struct {
	Points []r3.Vec
	Kind   Kind
	Cyclic bool
}

// Distinct reports the number of distinct consecutive points. Curves with
// fewer than two cannot contribute a stencil and are rejected before
// projection.
func (pc PolyCurve) Distinct() int {
	n := 0
	for i, p := range pc.Points {
		if i == 0 || r3.Norm(r3.Sub(p, pc.Points[i-1])) > coincidentEps {
			n++
		}
	}
	return n
}
