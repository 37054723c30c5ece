package slicer

import (
	"math"

	"github.com/chazu/millpath/pkg/contour"
)

const (
	// MinSegments is the fewest points a tessellated circle may have.
	MinSegments = 16
	// MaxSegments bounds the point count of very large circles.
	MaxSegments = 4096

	// degenerate radii produce no contour
	minRadius = 1e-9
)

// Segments returns the number of points used to approximate a circle of
// radius r at the given resolution (points per millimeter of circumference).
func Segments(r, resolution float64) int {
	n := int(math.Ceil(2 * math.Pi * r * resolution))
	switch {
	case n < MinSegments:
		return MinSegments
	case n > MaxSegments:
		return MaxSegments
	}
	return n
}

// Circle tessellates a circle of radius r around center into a polygon wound
// clockwise when cw is set. Every vertex lies exactly on the circle. It
// returns nil for degenerate radii.
func Circle(center contour.Point, r, resolution float64, cw bool) contour.Contour {
	if r <= minRadius || math.IsNaN(r) {
		return nil
	}
	n := Segments(r, resolution)
	dir := 1.0
	if cw {
		dir = -1
	}
	c := make(contour.Contour, n)
	for i := range c {
		s, co := math.Sincos(dir * 2 * math.Pi * float64(i) / float64(n))
		c[i] = contour.Point{X: center.X + r*co, Y: center.Y + r*s}
	}
	return c
}

// Rectangle returns the counter-clockwise footprint of a w×d rectangle
// centered at center and rotated by deg degrees.
func Rectangle(center contour.Point, w, d, deg float64) contour.Contour {
	hw, hd := w/2, d/2
	c := contour.Contour{{X: -hw, Y: -hd}, {X: hw, Y: -hd}, {X: hw, Y: hd}, {X: -hw, Y: hd}}
	theta := deg * math.Pi / 180
	for i, p := range c {
		if theta != 0 {
			p = p.Rotate(theta)
		}
		c[i] = p.Add(center)
	}
	return c
}
