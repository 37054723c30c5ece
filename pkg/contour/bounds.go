package contour

import "math"

// Bounds2 is an axis-aligned 2D rectangle. EmptyBounds is the identity for
// Union.
type Bounds2 struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// EmptyBounds returns a bounds that contains nothing and unions as identity.
func EmptyBounds() Bounds2 {
	return Bounds2{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether b contains no points.
func (b Bounds2) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Width returns the X extent, or 0 when empty.
func (b Bounds2) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxX - b.MinX
}

// Height returns the Y extent, or 0 when empty.
func (b Bounds2) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.MaxY - b.MinY
}

// Center returns the midpoint of b.
func (b Bounds2) Center() Point {
	return Point{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Union returns the smallest bounds containing b and o.
func (b Bounds2) Union(o Bounds2) Bounds2 {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Bounds2{
		MinX: math.Min(b.MinX, o.MinX), MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX), MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Extend returns b grown to include p.
func (b Bounds2) Extend(p Point) Bounds2 {
	return b.Union(Bounds2{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y})
}

// Expand returns b grown by d on every side.
func (b Bounds2) Expand(d float64) Bounds2 {
	if b.IsEmpty() {
		return b
	}
	return Bounds2{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Intersects reports whether b and o overlap (touching counts).
func (b Bounds2) Intersects(o Bounds2) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// ContainsPoint reports whether p lies inside b or on its edge.
func (b Bounds2) ContainsPoint(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// ContainsBounds reports whether o lies entirely inside b.
func (b Bounds2) ContainsBounds(o Bounds2) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return o.MinX >= b.MinX && o.MaxX <= b.MaxX && o.MinY >= b.MinY && o.MaxY <= b.MaxY
}

// Bounds returns the bounding rectangle of c.
func Bounds(c Contour) Bounds2 {
	b := EmptyBounds()
	for _, p := range c {
		b = b.Extend(p)
	}
	return b
}

// OrZero returns b, or the zero rectangle when b is empty. Empty bounds hold
// infinities, which do not survive JSON encoding.
func (b Bounds2) OrZero() Bounds2 {
	if b.IsEmpty() {
		return Bounds2{}
	}
	return b
}
