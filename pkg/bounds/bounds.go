// Package bounds computes axis-aligned bounding boxes, volumes and surface
// areas of component descriptors in closed form.
package bounds

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/millpath/pkg/component"
)

// ErrUnsupported is returned for components whose extent cannot be derived
// analytically (meshes).
var ErrUnsupported = errors.New("unsupported component")

// BoundingBox is an axis-aligned box with derived measures. It is computed
// fresh on every call and never mutated afterwards.
type BoundingBox struct {
	Min         component.Vec3 `json:"min"`
	Max         component.Vec3 `json:"max"`
	Size        component.Vec3 `json:"size"`
	Center      component.Vec3 `json:"center"`
	Volume      float64        `json:"volume"`
	SurfaceArea float64        `json:"surfaceArea"`
}

// New returns the box spanning lo and hi with Size and Center filled in.
// Volume and SurfaceArea are those of the box itself.
func New(lo, hi component.Vec3) BoundingBox {
	b := BoundingBox{Min: lo, Max: hi}
	b.Size = hi.Sub(lo)
	b.Center = component.Vec3{
		X: (lo.X + hi.X) / 2,
		Y: (lo.Y + hi.Y) / 2,
		Z: (lo.Z + hi.Z) / 2,
	}
	b.Volume = b.Size.X * b.Size.Y * b.Size.Z
	b.SurfaceArea = 2 * (b.Size.X*b.Size.Y + b.Size.Y*b.Size.Z + b.Size.X*b.Size.Z)
	return b
}

// Union returns the smallest box containing b and o. Volume and area are those
// of the union box treated as a solid.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return New(
		component.Vec3{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		component.Vec3{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	)
}

// Contains reports whether o lies inside b, allowing tol of slack.
func (b BoundingBox) Contains(o BoundingBox, tol float64) bool {
	return o.Min.X >= b.Min.X-tol && o.Min.Y >= b.Min.Y-tol && o.Min.Z >= b.Min.Z-tol &&
		o.Max.X <= b.Max.X+tol && o.Max.Y <= b.Max.Y+tol && o.Max.Z <= b.Max.Z+tol
}

// Height returns the Z extent.
func (b BoundingBox) Height() float64 {
	return b.Max.Z - b.Min.Z
}

// Compute returns the bounding box of d. Groups union their children's boxes
// and report the union box's own volume and area; this overestimates the
// material of sparse assemblies. Unsupported children of a group are left out.
func Compute(d *component.Descriptor) (BoundingBox, error) {
	if d == nil {
		return BoundingBox{}, fmt.Errorf("%w: nil descriptor", component.ErrInvalid)
	}
	if d.Kind() == component.KindGroup {
		if len(d.Children) == 0 {
			return BoundingBox{}, fmt.Errorf("%w: group %s has no children", component.ErrInvalid, d.Label())
		}
		var (
			out   BoundingBox
			found bool
		)
		for _, c := range d.Children {
			cb, err := Compute(c)
			if errors.Is(err, ErrUnsupported) {
				continue
			}
			if err != nil {
				return BoundingBox{}, err
			}
			if !found {
				out, found = cb, true
				continue
			}
			out = out.Union(cb)
		}
		if !found {
			return BoundingBox{}, fmt.Errorf("%w: group %s has no supported children", ErrUnsupported, d.Label())
		}
		return out, nil
	}
	return leaf(d)
}

func leaf(d *component.Descriptor) (BoundingBox, error) {
	p := d.Position
	span := func(hx, hy, zlo, zhi float64) BoundingBox {
		return New(
			component.Vec3{X: p.X - hx, Y: p.Y - hy, Z: p.Z + zlo},
			component.Vec3{X: p.X + hx, Y: p.Y + hy, Z: p.Z + zhi},
		)
	}

	var b BoundingBox
	switch s := d.Shape.(type) {
	case component.Box:
		hx, hy := RotatedHalfExtents(s.Width/2, s.Depth/2, d.RotationZ())
		b = span(hx, hy, -s.Height/2, s.Height/2)
		b.Volume = s.Width * s.Height * s.Depth
		b.SurfaceArea = 2 * (s.Width*s.Height + s.Height*s.Depth + s.Width*s.Depth)

	case component.Sphere:
		r := s.Radius
		b = span(r, r, -r, r)
		b.Volume = 4.0 / 3.0 * math.Pi * r * r * r
		b.SurfaceArea = 4 * math.Pi * r * r

	case component.Cylinder:
		r, h := s.Radius, s.Height
		b = span(r, r, -h/2, h/2)
		b.Volume = math.Pi * r * r * h
		b.SurfaceArea = 2*math.Pi*r*r + 2*math.Pi*r*h

	case component.Cone:
		r, h := s.Radius, s.Height
		b = span(r, r, -h/2, h/2)
		b.Volume = math.Pi * r * r * h / 3
		b.SurfaceArea = math.Pi*r*r + math.Pi*r*math.Hypot(r, h)

	case component.Torus:
		R, r := s.Radius, s.TubeRadius
		b = span(R+r, R+r, -r, r)
		b.Volume = 2 * math.Pi * math.Pi * R * r * r
		b.SurfaceArea = 4 * math.Pi * math.Pi * R * r

	case component.Hemisphere:
		r := s.Radius
		if s.Direction == component.DirDown {
			b = span(r, r, -r, 0)
		} else {
			b = span(r, r, 0, r)
		}
		b.Volume = 2.0 / 3.0 * math.Pi * r * r * r
		b.SurfaceArea = 3 * math.Pi * r * r

	case component.Capsule:
		r := s.Radius
		half := s.BodyHalfLength() + r
		switch s.Axis {
		case component.AxisX:
			b = span(half, r, -r, r)
		case component.AxisY:
			b = span(r, half, -r, r)
		default:
			b = span(r, r, -half, half)
		}
		body := 2 * s.BodyHalfLength()
		b.Volume = math.Pi*r*r*body + 4.0/3.0*math.Pi*r*r*r
		b.SurfaceArea = 2*math.Pi*r*body + 4*math.Pi*r*r

	case component.Mesh:
		return BoundingBox{}, fmt.Errorf("%w: mesh component %s", ErrUnsupported, d.Label())

	default:
		return BoundingBox{}, fmt.Errorf("%w: component %s has no shape", component.ErrInvalid, d.Label())
	}
	return b, nil
}

// RotatedHalfExtents returns the half extents of a w×d rectangle (given as
// half sizes) after rotating it by deg degrees about Z.
func RotatedHalfExtents(hw, hd, deg float64) (float64, float64) {
	if deg == 0 {
		return hw, hd
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	s, c = math.Abs(s), math.Abs(c)
	return hw*c + hd*s, hw*s + hd*c
}
