package component

import "fmt"

// Vec3 is a 3D vector in millimeters.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// ---------------------------------------------------------------------------
// Kinds
// ---------------------------------------------------------------------------

// Kind distinguishes between primitive shapes.
type Kind int

const (
	KindBox        Kind = iota // rectangular solid
	KindSphere                 // full sphere
	KindCylinder               // Z-aligned cylinder
	KindCone                   // Z-aligned cone
	KindTorus                  // torus lying in the XY plane
	KindHemisphere             // half sphere, flat face horizontal
	KindCapsule                // cylinder with hemispherical caps
	KindGroup                  // composite assembly
	KindMesh                   // triangle mesh (never sliced)
)

var kindNames = map[Kind]string{
	KindBox:        "box",
	KindSphere:     "sphere",
	KindCylinder:   "cylinder",
	KindCone:       "cone",
	KindTorus:      "torus",
	KindHemisphere: "hemisphere",
	KindCapsule:    "capsule",
	KindGroup:      "group",
	KindMesh:       "mesh",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind converts a type name as used by the editor into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown component type %q", ErrInvalid, s)
}

// Direction orients hemispheres and cones along Z.
type Direction int

const (
	DirUp   Direction = iota // dome or apex toward +Z
	DirDown                  // dome or apex toward -Z
)

func (d Direction) String() string {
	if d == DirDown {
		return "down"
	}
	return "up"
}

// ParseDirection accepts "up", "down" or "" (up).
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	}
	return 0, fmt.Errorf("%w: invalid direction %q, expected up or down", ErrInvalid, s)
}

// Axis is a principal axis.
type Axis int

const (
	AxisZ Axis = iota // default: vertical
	AxisX
	AxisY
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// ParseAxis accepts "x", "y", "z" or "" (z).
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "", "z":
		return AxisZ, nil
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	}
	return 0, fmt.Errorf("%w: invalid axis %q, expected x, y, or z", ErrInvalid, s)
}

// ---------------------------------------------------------------------------
// Shapes
// ---------------------------------------------------------------------------

// Shape is the kind-specific parameter set of a descriptor. The set of
// implementations is closed to this package.
type Shape interface {
	Kind() Kind
	shape() // marker method restricting implementations to this package
}

// Box is a rectangular solid. Width runs along X, Depth along Y and Height
// along Z.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

func (Box) Kind() Kind { return KindBox }
func (Box) shape()     {}

// Sphere is a full sphere centered on the descriptor position.
type Sphere struct {
	Radius float64 `json:"radius"`
}

func (Sphere) Kind() Kind { return KindSphere }
func (Sphere) shape()     {}

// Cylinder is a Z-aligned cylinder; Height is the full vertical extent.
type Cylinder struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

func (Cylinder) Kind() Kind { return KindCylinder }
func (Cylinder) shape()     {}

// Cone is a Z-aligned cone. Radius is the base radius; the apex points
// along Direction.
type Cone struct {
	Radius    float64   `json:"radius"`
	Height    float64   `json:"height"`
	Direction Direction `json:"direction"`
}

func (Cone) Kind() Kind { return KindCone }
func (Cone) shape()     {}

// Torus lies in the horizontal plane through the descriptor position.
// Radius is the distance from the center to the tube center line.
type Torus struct {
	Radius     float64 `json:"radius"`
	TubeRadius float64 `json:"tubeRadius"`
}

func (Torus) Kind() Kind { return KindTorus }
func (Torus) shape()     {}

// Hemisphere is half a sphere whose flat face lies in the horizontal plane
// through the descriptor position. The dome points along Direction.
type Hemisphere struct {
	Radius    float64   `json:"radius"`
	Direction Direction `json:"direction"`
}

func (Hemisphere) Kind() Kind { return KindHemisphere }
func (Hemisphere) shape()     {}

// Capsule is a cylinder with hemispherical caps. Height is the total length
// including both caps.
type Capsule struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
	Axis   Axis    `json:"axis"`
}

func (Capsule) Kind() Kind { return KindCapsule }
func (Capsule) shape()     {}

// BodyHalfLength returns half the length of the cylindrical section.
func (c Capsule) BodyHalfLength() float64 {
	h := c.Height/2 - c.Radius
	if h < 0 {
		return 0
	}
	return h
}

// Group is a composite of child descriptors.
type Group struct {
	Description string `json:"description,omitempty"`
}

func (Group) Kind() Kind { return KindGroup }
func (Group) shape()     {}

// Mesh stands in for mesh-based components coming from the editor. The
// pipeline does not slice meshes.
type Mesh struct {
	Source string `json:"source,omitempty"`
}

func (Mesh) Kind() Kind { return KindMesh }
func (Mesh) shape()     {}
