// Package slicer computes planar cross-sections of component descriptors.
//
// Each primitive is cut in closed form: a box yields its footprint, round
// primitives yield tessellated circles whose radius follows from the
// distance between the cutting plane and the primitive's center. Outer
// contours are wound counter-clockwise and islands clockwise.
package slicer

import (
	"fmt"
	"math"

	"github.com/chazu/millpath/pkg/component"
	"github.com/chazu/millpath/pkg/contour"
)

// DefaultResolution is the circle tessellation density in points per
// millimeter of circumference.
const DefaultResolution = 1.0

// planes within eps of a face still cut the face
const eps = 1e-9

// Slice is the cross-section of a component at one height. Islands are holes
// that belong to some enclosing contour in the same slice; the pairing is not
// recorded.
type Slice struct {
	Z        float64           `json:"z"`
	Contours []contour.Contour `json:"contours"`
	Islands  []contour.Contour `json:"islands"`
	Area     float64           `json:"area"` // outer area minus island area
	Bounds   contour.Bounds2   `json:"bounds"`
}

// IsEmpty reports whether the slice has no outer contour.
func (s Slice) IsEmpty() bool {
	return len(s.Contours) == 0
}

func emptySlice(z float64) Slice {
	return Slice{Z: z, Contours: []contour.Contour{}, Islands: []contour.Contour{}}
}

// newSlice builds a leaf slice and derives its area and bounds.
func newSlice(z float64, outer, islands []contour.Contour) Slice {
	s := emptySlice(z)
	b := contour.EmptyBounds()
	for _, c := range outer {
		if len(c) == 0 {
			continue
		}
		s.Contours = append(s.Contours, c)
		s.Area += contour.Area(c)
		b = b.Union(contour.Bounds(c))
	}
	for _, c := range islands {
		if len(c) == 0 {
			continue
		}
		s.Islands = append(s.Islands, c)
		s.Area -= contour.Area(c)
	}
	s.Bounds = b.OrZero()
	return s
}

// Slicer cuts descriptors with a fixed tessellation resolution.
type Slicer struct {
	Resolution float64
}

// New returns a slicer; a non-positive resolution selects DefaultResolution.
func New(resolution float64) *Slicer {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Slicer{Resolution: resolution}
}

// SliceAll cuts d at every level. The returned slices line up with levels,
// including empty ones.
func (s *Slicer) SliceAll(d *component.Descriptor, levels []float64) ([]Slice, []string) {
	slices := make([]Slice, 0, len(levels))
	var warnings []string
	for _, z := range levels {
		sl, w := s.Slice(d, z)
		slices = append(slices, sl)
		warnings = append(warnings, w...)
	}
	return slices, warnings
}

// Slice returns the cross-section of d at height z. Unsupported components
// are skipped with a warning.
func (s *Slicer) Slice(d *component.Descriptor, z float64) (Slice, []string) {
	if d == nil {
		return emptySlice(z), nil
	}

	if d.Kind() == component.KindGroup {
		parts := make([]Slice, 0, len(d.Children))
		var warnings []string
		for _, c := range d.Children {
			sl, w := s.Slice(c, z)
			parts = append(parts, sl)
			warnings = append(warnings, w...)
		}
		return Combine(z, parts), warnings
	}

	center := contour.Point{X: d.Position.X, Y: d.Position.Y}
	dz := z - d.Position.Z
	circle := func(r float64) []contour.Contour {
		if c := Circle(center, r, s.Resolution, false); c != nil {
			return []contour.Contour{c}
		}
		return nil
	}

	switch sh := d.Shape.(type) {
	case component.Box:
		if math.Abs(dz) > sh.Height/2+eps {
			return emptySlice(z), nil
		}
		rect := Rectangle(center, sh.Width, sh.Depth, d.RotationZ())
		return newSlice(z, []contour.Contour{rect}, nil), nil

	case component.Sphere:
		return newSlice(z, circle(sphereRadius(sh.Radius, dz)), nil), nil

	case component.Hemisphere:
		if sh.Direction == component.DirDown && dz > eps || sh.Direction == component.DirUp && dz < -eps {
			return emptySlice(z), nil
		}
		return newSlice(z, circle(sphereRadius(sh.Radius, dz)), nil), nil

	case component.Cylinder:
		if math.Abs(dz) > sh.Height/2+eps {
			return emptySlice(z), nil
		}
		return newSlice(z, circle(sh.Radius), nil), nil

	case component.Cone:
		return newSlice(z, circle(coneRadius(sh, dz)), nil), nil

	case component.Torus:
		outer, inner := torusRadii(sh, dz)
		if outer <= 0 {
			return emptySlice(z), nil
		}
		var islands []contour.Contour
		if inner > minRadius {
			islands = append(islands, Circle(center, inner, s.Resolution, true))
		}
		return newSlice(z, circle(outer), islands), nil

	case component.Capsule:
		if sh.Axis != component.AxisZ {
			return emptySlice(z), []string{
				fmt.Sprintf("capsule %s along %s axis is not supported; skipped", d.Label(), sh.Axis),
			}
		}
		return newSlice(z, circle(capsuleRadius(sh, dz)), nil), nil

	case component.Mesh:
		return emptySlice(z), []string{
			fmt.Sprintf("mesh component %s cannot be sliced; skipped", d.Label()),
		}
	}

	return emptySlice(z), []string{fmt.Sprintf("component %s has no shape; skipped", d.Label())}
}

// sphereRadius returns the section radius of a sphere cut dz from its center,
// or 0 outside it.
func sphereRadius(r, dz float64) float64 {
	if math.Abs(dz) >= r {
		return 0
	}
	return math.Sqrt(r*r - dz*dz)
}

// coneRadius interpolates linearly from the full radius at the base to zero at
// the apex.
func coneRadius(c component.Cone, dz float64) float64 {
	half := c.Height / 2
	if math.Abs(dz) > half+eps {
		return 0
	}
	fromBase := dz + half // base at the bottom, apex up
	if c.Direction == component.DirDown {
		fromBase = half - dz
	}
	t := math.Min(math.Max(fromBase/c.Height, 0), 1)
	return c.Radius * (1 - t)
}

// torusRadii returns the outer contour and inner island radii of a torus cut
// dz above its center plane. Both are 0 outside the tube.
func torusRadii(t component.Torus, dz float64) (outer, inner float64) {
	if math.Abs(dz) >= t.TubeRadius {
		return 0, 0
	}
	off := math.Sqrt(t.TubeRadius*t.TubeRadius - dz*dz)
	return t.Radius + off, t.Radius - off
}

// capsuleRadius selects between the lower cap, the cylindrical body and the
// upper cap.
func capsuleRadius(c component.Capsule, dz float64) float64 {
	body := c.BodyHalfLength()
	switch {
	case math.Abs(dz) <= body:
		return c.Radius
	case dz > body:
		return sphereRadius(c.Radius, dz-body)
	default:
		return sphereRadius(c.Radius, dz+body)
	}
}
