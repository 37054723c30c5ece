package contour

// Offset moves every edge of c by d along its outward normal. Positive d grows
// the contour, negative d shrinks it, independent of winding. Each vertex is
// placed on the averaged normal of its two edges, scaled by 1/cos of half the
// angle between them, so that both offset edges stay parallel to the
// originals. Where that scale blows up (a near-reversal) the incoming edge
// normal is used instead. Contours with fewer than three distinct points are
// returned unchanged.
func Offset(c Contour, d float64) Contour {
	pts := Dedup(c)
	if len(pts) < 3 || d == 0 {
		return c.Clone()
	}

	// Outward normal of edge (dx, dy) is (dy, -dx) for CCW winding.
	sign := 1.0
	if IsClockwise(pts) {
		sign = -1
	}

	n := len(pts)
	normals := make([]Point, n) // normals[i] belongs to edge pts[i] -> pts[i+1]
	for i := range pts {
		e := pts[(i+1)%n].Sub(pts[i])
		l := e.Len()
		if l < Epsilon {
			continue
		}
		normals[i] = Point{e.Y * sign / l, -e.X * sign / l}
	}

	out := make(Contour, n)
	for i, p := range pts {
		n1 := normals[(i-1+n)%n]
		n2 := normals[i]
		out[i] = p.Add(miter(n1, n2).Scale(d))
	}
	return out
}

// miter returns the offset direction for a vertex between edges with unit
// normals n1 and n2, already scaled for the corner.
func miter(n1, n2 Point) Point {
	sum := n1.Add(n2)
	l := sum.Len()
	if l < Epsilon {
		return n1
	}
	m := sum.Scale(1 / l)
	cosHalf := m.Dot(n1)
	if cosHalf < Epsilon {
		return n1
	}
	return m.Scale(1 / cosHalf)
}
