// Package contour provides pure operations on closed 2D polygons: orientation,
// area, centroid, miter offsetting and Douglas-Peucker simplification.
//
// X increases to the right and Y increases up, so a positive signed area
// means counter-clockwise. A Contour is implicitly closed: the last point
// connects back to the first.
package contour

import (
	"math"
	"slices"
)

// Epsilon is the tolerance used to detect degenerate geometry.
const Epsilon = 1e-9

// Point is a 2D coordinate in millimeters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns a + b.
func (a Point) Add(b Point) Point { return Point{a.X + b.X, a.Y + b.Y} }

// Sub returns a - b.
func (a Point) Sub(b Point) Point { return Point{a.X - b.X, a.Y - b.Y} }

// Scale returns a * s.
func (a Point) Scale(s float64) Point { return Point{a.X * s, a.Y * s} }

// Dot returns the dot product of a and b.
func (a Point) Dot(b Point) float64 { return a.X*b.X + a.Y*b.Y }

// Len returns the Euclidean length of a.
func (a Point) Len() float64 { return math.Hypot(a.X, a.Y) }

// Dist returns the distance between a and b.
func (a Point) Dist(b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// Rotate returns a rotated by theta radians about the origin.
func (a Point) Rotate(theta float64) Point {
	s, c := math.Sincos(theta)
	return Point{a.X*c - a.Y*s, a.X*s + a.Y*c}
}

// Contour is an implicitly closed polygon.
type Contour []Point

// Clone returns a copy of c.
func (c Contour) Clone() Contour {
	return slices.Clone(c)
}

// Translate returns c shifted by d.
func (c Contour) Translate(d Point) Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[i] = p.Add(d)
	}
	return out
}

// SignedArea returns the shoelace area of c. Negative means clockwise.
func SignedArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var sum float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Area returns the absolute enclosed area of c.
func Area(c Contour) float64 {
	return math.Abs(SignedArea(c))
}

// IsClockwise reports whether c winds clockwise.
func IsClockwise(c Contour) bool {
	return SignedArea(c) < 0
}

// Reverse returns c with the opposite winding, keeping the first vertex.
func Reverse(c Contour) Contour {
	if len(c) == 0 {
		return Contour{}
	}
	out := make(Contour, 0, len(c))
	out = append(out, c[0])
	for i := len(c) - 1; i > 0; i-- {
		out = append(out, c[i])
	}
	return out
}

// Orient returns c wound clockwise when cw is true, counter-clockwise
// otherwise.
func Orient(c Contour, cw bool) Contour {
	if IsClockwise(c) != cw {
		return Reverse(c)
	}
	return c.Clone()
}

// Centroid returns the area centroid of c. When the area is numerically zero
// the arithmetic mean of the vertices is returned.
func Centroid(c Contour) Point {
	if len(c) == 0 {
		return Point{}
	}
	a := SignedArea(c)
	if math.Abs(a) < Epsilon {
		return mean(c)
	}
	var cx, cy float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		cross := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	return Point{cx / (6 * a), cy / (6 * a)}
}

func mean(c Contour) Point {
	var sx, sy float64
	for _, p := range c {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(c))
	return Point{sx / n, sy / n}
}

// Perimeter returns the closed length of c.
func Perimeter(c Contour) float64 {
	if len(c) < 2 {
		return 0
	}
	var sum float64
	for i, p := range c {
		sum += p.Dist(c[(i+1)%len(c)])
	}
	return sum
}

// Dedup removes consecutive duplicate points, including a trailing point
// equal to the first.
func Dedup(c Contour) Contour {
	out := make(Contour, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && p.Dist(out[len(out)-1]) < Epsilon {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Dist(out[len(out)-1]) < Epsilon {
		out = out[:len(out)-1]
	}
	return out
}

// NearestVertex returns the index of the vertex of c closest to p, or -1 for
// an empty contour.
func NearestVertex(c Contour, p Point) int {
	best, bestDist := -1, math.Inf(1)
	for i, q := range c {
		if d := q.Dist(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Rotate returns c cyclically shifted so that it starts at index start.
func Rotate(c Contour, start int) Contour {
	if len(c) == 0 {
		return Contour{}
	}
	start = ((start % len(c)) + len(c)) % len(c)
	out := make(Contour, 0, len(c))
	out = append(out, c[start:]...)
	return append(out, c[:start]...)
}

// Contains reports whether p lies inside c using the even-odd rule.
func Contains(c Contour, p Point) bool {
	inside := false
	for i, j := 0, len(c)-1; i < len(c); j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
