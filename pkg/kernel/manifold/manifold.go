//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Its exact booleans
// give tighter bounds than the sdfx marching cubes, at the cost of a C
// dependency.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/millpath/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Segments is the number of facets used for round primitives.
const Segments = 64

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

func unwrap(s kernel.Solid) *C.ManifoldManifold {
	return s.(*manifoldSolid).ptr
}

// Box creates an axis-aligned box centered at the origin.
func (k *ManifoldKernel) Box(width, depth, height float64) (kernel.Solid, error) {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(width), C.double(depth), C.double(height),
		C.int(1), // center=true
	)
	return newSolid(ptr), nil
}

func (k *ManifoldKernel) Sphere(radius float64) (kernel.Solid, error) {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_sphere(alloc, C.double(radius), C.int(Segments))), nil
}

// frustum is a Z-aligned cylinder or cone centered at the origin.
func frustum(height, low, high float64) *manifoldSolid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(low),
		C.double(high),
		C.int(Segments),
		C.int(1), // center=true
	)
	return newSolid(ptr)
}

func (k *ManifoldKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	return frustum(height, radius, radius), nil
}

func (k *ManifoldKernel) Cone(height, radius float64, apexUp bool) (kernel.Solid, error) {
	if apexUp {
		return frustum(height, radius, 0), nil
	}
	return frustum(height, 0, radius), nil
}

// Torus is not modeled; the cross-section revolve API differs between
// manifoldc releases.
func (k *ManifoldKernel) Torus(radius, tubeRadius float64) (kernel.Solid, error) {
	return nil, fmt.Errorf("%w: manifold kernel has no torus", kernel.ErrNoSolid)
}

// Hemisphere keeps the half of a sphere above (domeUp) or below the XY plane.
func (k *ManifoldKernel) Hemisphere(radius float64, domeUp bool) (kernel.Solid, error) {
	ball, _ := k.Sphere(radius)
	half, _ := k.Box(2*radius, 2*radius, radius)
	dz := radius / 2
	if !domeUp {
		dz = -dz
	}
	half = k.Translate(half, 0, 0, dz)

	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_intersection(alloc, unwrap(ball), unwrap(half))), nil
}

// Capsule is a Z-aligned cylinder of total length height with spherical
// ends.
func (k *ManifoldKernel) Capsule(height, radius float64) (kernel.Solid, error) {
	if height <= 2*radius {
		return k.Sphere(radius)
	}
	body := height - 2*radius
	cyl, _ := k.Cylinder(body, radius)
	top, _ := k.Sphere(radius)
	bottom, _ := k.Sphere(radius)
	return k.Union(cyl, k.Translate(top, 0, 0, body/2), k.Translate(bottom, 0, 0, -body/2)), nil
}

// Union returns the boolean union of the solids, folding left to right.
func (k *ManifoldKernel) Union(solids ...kernel.Solid) kernel.Solid {
	if len(solids) == 0 {
		return nil
	}
	acc := solids[0]
	for _, s := range solids[1:] {
		alloc := C.manifold_alloc_manifold()
		acc = newSolid(C.manifold_union(alloc, unwrap(acc), unwrap(s)))
	}
	return acc
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, unwrap(s),
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z axes.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, unwrap(s),
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// ToMesh copies the solid's MeshGL into a kernel mesh. MeshGL interleaves
// numProp floats per vertex with the position first and, when present, the
// normal next.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), unwrap(s))
	defer C.manifold_delete_meshgl(gl)

	nv := int(C.manifold_meshgl_num_vert(gl))
	nt := int(C.manifold_meshgl_num_tri(gl))
	if nv == 0 || nt == 0 {
		return &kernel.Mesh{}, nil
	}
	stride := int(C.manifold_meshgl_num_prop(gl))
	if stride < 3 {
		return nil, fmt.Errorf("manifold: %d properties per vertex, need at least 3", stride)
	}

	props := make([]float32, nv*stride)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, nv*3),
		Indices:  make([]uint32, nt*3),
	}
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&m.Indices[0])), gl)

	if stride < 6 {
		for v := 0; v < nv; v++ {
			m.Vertices = append(m.Vertices, props[v*stride:v*stride+3]...)
		}
		m.SmoothNormals()
		return m, nil
	}
	m.Normals = make([]float32, 0, nv*3)
	for v := 0; v < nv; v++ {
		p := props[v*stride:]
		m.Vertices = append(m.Vertices, p[0:3]...)
		m.Normals = append(m.Normals, p[3:6]...)
	}
	return m, nil
}
