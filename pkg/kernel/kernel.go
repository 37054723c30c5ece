// Package kernel defines the solid modeling backend used to cross-check
// analytic bounds and to produce preview meshes. Solids are built centered on
// the origin with Z up; Build places them at their descriptor positions.
package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/millpath/pkg/component"
)

// ErrNoSolid is returned when a descriptor tree contains no primitive the
// kernel can model.
var ErrNoSolid = errors.New("no modelable solid")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel models the component primitives.
type Kernel interface {
	// Primitives, centered on the origin.
	Box(width, depth, height float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Cone(height, radius float64, apexUp bool) (Solid, error)
	Torus(radius, tubeRadius float64) (Solid, error)
	Hemisphere(radius float64, domeUp bool) (Solid, error)
	Capsule(height, radius float64) (Solid, error)

	Union(solids ...Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Primitive builds the solid for a single leaf descriptor at its world
// position. Only the Z rotation is applied, matching the slicer.
func Primitive(k Kernel, d *component.Descriptor) (Solid, error) {
	var (
		s   Solid
		err error
	)
	switch sh := d.Shape.(type) {
	case component.Box:
		s, err = k.Box(sh.Width, sh.Depth, sh.Height)
	case component.Sphere:
		s, err = k.Sphere(sh.Radius)
	case component.Cylinder:
		s, err = k.Cylinder(sh.Height, sh.Radius)
	case component.Cone:
		s, err = k.Cone(sh.Height, sh.Radius, sh.Direction == component.DirUp)
	case component.Torus:
		s, err = k.Torus(sh.Radius, sh.TubeRadius)
	case component.Hemisphere:
		s, err = k.Hemisphere(sh.Radius, sh.Direction == component.DirUp)
	case component.Capsule:
		s, err = k.Capsule(sh.Height, sh.Radius)
		if err == nil {
			switch sh.Axis {
			case component.AxisX:
				s = k.Rotate(s, 0, 90, 0)
			case component.AxisY:
				s = k.Rotate(s, 90, 0, 0)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s is a %s", ErrNoSolid, d.Label(), d.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("kernel: %s: %w", d.Label(), err)
	}

	if rz := d.RotationZ(); rz != 0 {
		s = k.Rotate(s, 0, 0, rz)
	}
	p := d.Position
	if !p.IsZero() {
		s = k.Translate(s, p.X, p.Y, p.Z)
	}
	return s, nil
}

// Build returns the union of every modelable leaf under d. Leaves the kernel
// cannot model are skipped; ErrNoSolid is returned when none remain.
func Build(k Kernel, d *component.Descriptor) (Solid, error) {
	var solids []Solid
	for _, leaf := range d.Leaves() {
		s, err := Primitive(k, leaf)
		if errors.Is(err, ErrNoSolid) {
			continue
		}
		if err != nil {
			return nil, err
		}
		solids = append(solids, s)
	}
	if len(solids) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoSolid, d.Label())
	}
	if len(solids) == 1 {
		return solids[0], nil
	}
	return k.Union(solids...), nil
}
