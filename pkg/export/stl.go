package export

import (
	"fmt"
	"io"
	"math"

	"github.com/hschendel/stl"

	"github.com/chazu/millpath/pkg/kernel"
)

// STLName is the solid name written into STL files.
const STLName = "millpath"

// WriteSTL merges meshes into one binary STL solid. Face normals are
// recomputed from the winding of each triangle.
func WriteSTL(w io.Writer, meshes []*kernel.Mesh) error {
	solid := &stl.Solid{Name: STLName}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			var t stl.Triangle
			for j := 0; j < 3; j++ {
				t.Vertices[j] = stl.Vec3(m.Vertex(m.Indices[i+j]))
			}
			t.Normal = faceNormal(t.Vertices)
			solid.Triangles = append(solid.Triangles, t)
		}
	}
	if len(solid.Triangles) == 0 {
		return fmt.Errorf("%w: no mesh triangles", ErrNothingToExport)
	}
	if err := solid.WriteAll(w); err != nil {
		return fmt.Errorf("write stl: %w", err)
	}
	return nil
}

func faceNormal(v [3]stl.Vec3) stl.Vec3 {
	var a, b [3]float64
	for k := 0; k < 3; k++ {
		a[k] = float64(v[1][k] - v[0][k])
		b[k] = float64(v[2][k] - v[0][k])
	}
	n := [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return stl.Vec3{}
	}
	return stl.Vec3{float32(n[0] / l), float32(n[1] / l), float32(n[2] / l)}
}
