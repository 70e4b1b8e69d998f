package region

import (
	"honnef.co/go/curve"
)

// paramEps treats crossings at (or numerically indistinguishable from)
// shared vertices of adjacent edges as non-crossings.
const paramEps = 1e-9

// maxSplitDepth bounds the recursive loop splitting. Curves that
// self-intersect more than a handful of times are outside the reliability
// envelope of this repair; past the bound the loop is returned as-is and
// downstream validation decides its fate.
const maxSplitDepth = 32

// firstCrossing finds the first pair of non-adjacent edges of the ring
// that cross, returning the edge indices and the crossing point.
func firstCrossing(ring Ring) (i, j int, at curve.Point, ok bool) {
	n := len(ring)
	for i = 0; i < n; i++ {
		ei := curve.Line{P0: ring[i], P1: ring[(i+1)%n]}
		for j = i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue // adjacent edges share a vertex, not a crossing
			}
			ej := curve.Line{P0: ring[j], P1: ring[(j+1)%n]}
			hits, count := ei.IntersectLine(ej)
			if count == 0 {
				continue
			}
			t := hits[0].SegmentT // parameter on ei
			u := hits[0].LineT    // parameter on ej
			if t < paramEps || t > 1-paramEps || u < paramEps || u > 1-paramEps {
				// Touching at a shared vertex is not a crossing.
				continue
			}
			return i, j, ei.Eval(t), true
		}
	}
	return 0, 0, curve.Point{}, false
}

// edgesCross reports whether any edge of ring a properly crosses any edge
// of ring b.
func edgesCross(a, b Ring) bool {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		ea := curve.Line{P0: a[i], P1: a[(i+1)%na]}
		for j := 0; j < nb; j++ {
			eb := curve.Line{P0: b[j], P1: b[(j+1)%nb]}
			hits, count := ea.IntersectLine(eb)
			if count == 0 {
				continue
			}
			t, u := hits[0].SegmentT, hits[0].LineT
			if t > paramEps && t < 1-paramEps && u > paramEps && u < 1-paramEps {
				return true
			}
		}
	}
	return false
}

// splitLoops decomposes a closed polyline into simple loops by cutting at
// self-intersection points. A crossing between edges i and j splits the
// ring into the loop that skips the span (i..j] and the loop made of that
// span, both anchored at the crossing point; each part is then split
// further until no crossings remain. A single self-intersection is
// resolved exactly; curves with several crossings are decomposed on a
// best-effort basis.
func splitLoops(ring Ring, depth int) []Ring {
	if len(ring) < 3 || depth >= maxSplitDepth {
		return []Ring{ring}
	}

	i, j, at, ok := firstCrossing(ring)
	if !ok {
		return []Ring{ring}
	}

	// Edges i: ring[i]→ring[i+1] and j: ring[j]→ring[j+1] cross at `at`.
	// Loop A keeps the head and tail of the ring, loop B the middle span.
	var loopA, loopB Ring
	loopA = append(loopA, ring[:i+1]...)
	loopA = append(loopA, at)
	loopA = append(loopA, ring[j+1:]...)

	loopB = append(loopB, at)
	loopB = append(loopB, ring[i+1:j+1]...)

	out := splitLoops(dedupeRing(loopA), depth+1)
	out = append(out, splitLoops(dedupeRing(loopB), depth+1)...)
	return out
}
