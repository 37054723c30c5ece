package component

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalid is returned when a descriptor violates a construction invariant.
var ErrInvalid = errors.New("invalid component")

// Descriptor is one node of the component tree. Position is the world-space
// center of the primitive. Descriptors are built by the caller and treated as
// immutable for the duration of a pipeline run.
type Descriptor struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Position Vec3          `json:"position"`
	Rotation *Vec3         `json:"rotation,omitempty"` // Euler angles in degrees
	Shape    Shape         `json:"-"`
	Children []*Descriptor `json:"children,omitempty"`
}

// Kind returns the kind of the descriptor's shape.
func (d *Descriptor) Kind() Kind {
	if d.Shape == nil {
		return KindMesh
	}
	return d.Shape.Kind()
}

// IsLeaf reports whether the descriptor is a primitive rather than a group.
func (d *Descriptor) IsLeaf() bool {
	return d.Kind() != KindGroup
}

// Label returns a human-readable name for diagnostics: the name if set,
// otherwise a shortened ID.
func (d *Descriptor) Label() string {
	if d.Name != "" {
		return d.Name
	}
	if len(d.ID) > 8 {
		return d.ID[:8]
	}
	if d.ID == "" {
		return d.Kind().String()
	}
	return d.ID
}

// RotationZ returns the rotation about Z in degrees, or 0.
func (d *Descriptor) RotationZ() float64 {
	if d.Rotation == nil {
		return 0
	}
	return d.Rotation.Z
}

// IsTilted reports whether the descriptor is rotated about X or Y.
func (d *Descriptor) IsTilted() bool {
	return d.Rotation != nil && (d.Rotation.X != 0 || d.Rotation.Y != 0)
}

// Walk visits d and its descendants depth-first. Returning false from fn
// stops descent into that node's children.
func (d *Descriptor) Walk(fn func(n *Descriptor, depth int) bool) {
	var visit func(n *Descriptor, depth int)
	visit = func(n *Descriptor, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(d, 0)
}

// Leaves returns all primitive descendants of d (or d itself if it is a leaf).
func (d *Descriptor) Leaves() []*Descriptor {
	var leaves []*Descriptor
	d.Walk(func(n *Descriptor, _ int) bool {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// Count returns the number of nodes in the tree rooted at d.
func (d *Descriptor) Count() int {
	n := 0
	d.Walk(func(*Descriptor, int) bool {
		n++
		return true
	})
	return n
}

// Clone returns a deep copy of the tree rooted at d. IDs are copied as is.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	if d.Rotation != nil {
		r := *d.Rotation
		c.Rotation = &r
	}
	if d.Children != nil {
		c.Children = make([]*Descriptor, len(d.Children))
		for i, ch := range d.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Instance returns a copy of d moved by offset, with a fresh ID on every
// node, so the same part can appear more than once in a tree.
func (d *Descriptor) Instance(offset Vec3) *Descriptor {
	c := d.Clone()
	c.Walk(func(n *Descriptor, _ int) bool {
		n.ID = NewID()
		n.Position = n.Position.Add(offset)
		return true
	})
	return c
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func positive(kind Kind, field string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s %s is %.4f, must be positive", ErrInvalid, kind, field, v)
	}
	return nil
}

func newLeaf(id string, pos Vec3, s Shape) *Descriptor {
	if id == "" {
		id = NewID()
	}
	return &Descriptor{ID: id, Position: pos, Shape: s}
}

// NewBox returns a box descriptor centered at pos.
func NewBox(id string, pos Vec3, width, height, depth float64) (*Descriptor, error) {
	for _, c := range []struct {
		field string
		v     float64
	}{{"width", width}, {"height", height}, {"depth", depth}} {
		if err := positive(KindBox, c.field, c.v); err != nil {
			return nil, err
		}
	}
	return newLeaf(id, pos, Box{Width: width, Height: height, Depth: depth}), nil
}

// NewSphere returns a sphere descriptor centered at pos.
func NewSphere(id string, pos Vec3, radius float64) (*Descriptor, error) {
	if err := positive(KindSphere, "radius", radius); err != nil {
		return nil, err
	}
	return newLeaf(id, pos, Sphere{Radius: radius}), nil
}

// NewCylinder returns a Z-aligned cylinder descriptor centered at pos.
func NewCylinder(id string, pos Vec3, radius, height float64) (*Descriptor, error) {
	if err := positive(KindCylinder, "radius", radius); err != nil {
		return nil, err
	}
	if err := positive(KindCylinder, "height", height); err != nil {
		return nil, err
	}
	return newLeaf(id, pos, Cylinder{Radius: radius, Height: height}), nil
}

// NewCone returns a Z-aligned cone descriptor centered at pos.
func NewCone(id string, pos Vec3, radius, height float64, dir Direction) (*Descriptor, error) {
	if err := positive(KindCone, "radius", radius); err != nil {
		return nil, err
	}
	if err := positive(KindCone, "height", height); err != nil {
		return nil, err
	}
	return newLeaf(id, pos, Cone{Radius: radius, Height: height, Direction: dir}), nil
}

// NewTorus returns a horizontal torus descriptor centered at pos.
func NewTorus(id string, pos Vec3, radius, tubeRadius float64) (*Descriptor, error) {
	if err := positive(KindTorus, "radius", radius); err != nil {
		return nil, err
	}
	if err := positive(KindTorus, "tube radius", tubeRadius); err != nil {
		return nil, err
	}
	return newLeaf(id, pos, Torus{Radius: radius, TubeRadius: tubeRadius}), nil
}

// NewHemisphere returns a hemisphere whose flat face passes through pos.
func NewHemisphere(id string, pos Vec3, radius float64, dir Direction) (*Descriptor, error) {
	if err := positive(KindHemisphere, "radius", radius); err != nil {
		return nil, err
	}
	return newLeaf(id, pos, Hemisphere{Radius: radius, Direction: dir}), nil
}

// NewCapsule returns a capsule descriptor centered at pos.
func NewCapsule(id string, pos Vec3, radius, height float64, axis Axis) (*Descriptor, error) {
	if err := positive(KindCapsule, "radius", radius); err != nil {
		return nil, err
	}
	if err := positive(KindCapsule, "height", height); err != nil {
		return nil, err
	}
	return newLeaf(id, pos, Capsule{Radius: radius, Height: height, Axis: axis}), nil
}

// NewGroup returns a composite descriptor. A group must have at least one
// child.
func NewGroup(id, name string, children ...*Descriptor) (*Descriptor, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: group %q has no children", ErrInvalid, name)
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("%w: group %q child %d is nil", ErrInvalid, name, i)
		}
	}
	if id == "" {
		id = NewID()
	}
	return &Descriptor{ID: id, Name: name, Shape: Group{}, Children: children}, nil
}

// MustBuild panics if err is non-nil. Intended for tests and fixed fixtures.
func MustBuild(d *Descriptor, err error) *Descriptor {
	if err != nil {
		panic(fmt.Sprintf("component: %v", err))
	}
	return d
}
