// Package tessellate walks a component tree and produces triangle meshes
// using a geometry kernel. One mesh is produced per leaf primitive.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/millpath/pkg/component"
	"github.com/chazu/millpath/pkg/kernel"
)

// Result holds the meshes of one tessellation run.
type Result struct {
	Meshes   []*kernel.Mesh
	Warnings []string // leaves that could not be modeled
}

// Triangles returns the total triangle count over all meshes.
func (r Result) Triangles() int {
	n := 0
	for _, m := range r.Meshes {
		n += m.TriangleCount()
	}
	return n
}

// Tessellate meshes every leaf of d with k. Positions in the tree are world
// coordinates, so no transform accumulates through groups. Leaves the kernel
// cannot model are reported as warnings; any other kernel failure aborts the
// run. The tessellator never mutates the tree.
func Tessellate(d *component.Descriptor, k kernel.Kernel) (Result, error) {
	res := Result{Meshes: []*kernel.Mesh{}}
	if d == nil {
		return res, nil
	}

	for _, leaf := range d.Leaves() {
		mesh, err := leafMesh(k, leaf)
		if errors.Is(err, kernel.ErrNoSolid) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s has no preview mesh; skipped", leaf.Label()))
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("tessellate: %w", err)
		}
		res.Meshes = append(res.Meshes, mesh)
	}
	return res, nil
}

// leafMesh builds and meshes a single primitive.
func leafMesh(k kernel.Kernel, leaf *component.Descriptor) (*kernel.Mesh, error) {
	solid, err := kernel.Primitive(k, leaf)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for %s: %w", leaf.Label(), err)
	}
	mesh.Part = leaf.Label()
	return mesh, nil
}
