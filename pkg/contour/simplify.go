package contour

// Simplify reduces a closed contour with the Douglas-Peucker algorithm. The
// first vertex is used as both anchors of the initial chord and the ring is
// re-closed afterwards. A tolerance of zero or less returns an unchanged copy.
func Simplify(c Contour, tol float64) Contour {
	if tol <= 0 || len(c) < 3 {
		return c.Clone()
	}
	ring := make(Contour, 0, len(c)+1)
	ring = append(ring, c...)
	ring = append(ring, c[0])

	out := SimplifyOpen(ring, tol)
	return out[:len(out)-1]
}

// SimplifyOpen reduces an open polyline with Douglas-Peucker. Both endpoints
// are always kept.
func SimplifyOpen(c Contour, tol float64) Contour {
	if tol <= 0 || len(c) < 3 {
		return c.Clone()
	}
	keep := make([]bool, len(c))
	keep[0], keep[len(c)-1] = true, true
	douglasPeucker(c, 0, len(c)-1, tol, keep)

	out := make(Contour, 0, len(c))
	for i, p := range c {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func douglasPeucker(c Contour, first, last int, tol float64, keep []bool) {
	if last-first < 2 {
		return
	}
	maxDist, index := 0.0, -1
	for i := first + 1; i < last; i++ {
		if d := segmentDistance(c[i], c[first], c[last]); d > maxDist {
			maxDist, index = d, i
		}
	}
	if index < 0 || maxDist <= tol {
		return
	}
	keep[index] = true
	douglasPeucker(c, first, index, tol, keep)
	douglasPeucker(c, index, last, tol, keep)
}

// segmentDistance returns the distance from p to segment ab. A degenerate
// segment measures the distance to a.
func segmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon*Epsilon {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return p.Dist(a.Add(ab.Scale(t)))
}
