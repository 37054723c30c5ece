// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/millpath/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest axis.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// WithCells returns a copy of k that meshes with n marching cubes cells.
// Values below 8 are raised to 8.
func (k *SdfxKernel) WithCells(n int) *SdfxKernel {
	if n < 8 {
		n = 8
	}
	return &SdfxKernel{cells: n}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3, err error) (kernel.Solid, error) {
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{s: s}, nil
}

// Box creates a box centered on the origin. Width runs along X, depth along
// Y and height along Z.
func (k *SdfxKernel) Box(width, depth, height float64) (kernel.Solid, error) {
	return wrap(sdf.Box3D(v3.Vec{X: width, Y: depth, Z: height}, 0))
}

func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	return wrap(sdf.Sphere3D(radius))
}

func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	return wrap(sdf.Cylinder3D(height, radius, 0))
}

// Cone creates a Z-aligned cone centered on the origin. With apexUp the base
// sits at -height/2.
func (k *SdfxKernel) Cone(height, radius float64, apexUp bool) (kernel.Solid, error) {
	if apexUp {
		return wrap(sdf.Cone3D(height, radius, 0, 0))
	}
	return wrap(sdf.Cone3D(height, 0, radius, 0))
}

// Torus revolves a circle of tubeRadius, radius away from the Z axis.
func (k *SdfxKernel) Torus(radius, tubeRadius float64) (kernel.Solid, error) {
	tube, err := sdf.Circle2D(tubeRadius)
	if err != nil {
		return nil, err
	}
	tube = sdf.Transform2D(tube, sdf.Translate2d(v2.Vec{X: radius}))
	return wrap(sdf.Revolve3D(tube))
}

// Hemisphere keeps the half of a sphere above (domeUp) or below the XY plane.
func (k *SdfxKernel) Hemisphere(radius float64, domeUp bool) (kernel.Solid, error) {
	ball, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, err
	}
	half, err := sdf.Box3D(v3.Vec{X: 2 * radius, Y: 2 * radius, Z: radius}, 0)
	if err != nil {
		return nil, err
	}
	dz := radius / 2
	if !domeUp {
		dz = -dz
	}
	half = sdf.Transform3D(half, sdf.Translate3d(v3.Vec{Z: dz}))
	return &sdfxSolid{s: sdf.Intersect3D(ball, half)}, nil
}

// Capsule creates a Z-aligned capsule whose total length, caps included, is
// height. It is a cylinder rounded by its full radius.
func (k *SdfxKernel) Capsule(height, radius float64) (kernel.Solid, error) {
	if height <= 2*radius {
		return k.Sphere(radius)
	}
	return wrap(sdf.Cylinder3D(height, radius, radius))
}

// Union returns the union of the solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	s := make([]sdf.SDF3, len(solids))
	for i, x := range solids {
		s[i] = unwrap(x)
	}
	return &sdfxSolid{s: sdf.Union3D(s...)}
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return &sdfxSolid{s: sdf.Transform3D(unwrap(s), m)}
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return &sdfxSolid{s: sdf.Transform3D(unwrap(s), m)}
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	cells := k.cells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
