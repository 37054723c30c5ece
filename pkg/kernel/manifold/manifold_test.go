//go:build manifold

package manifold

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/millpath/pkg/component"
	"github.com/chazu/millpath/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func mustSolid(t *testing.T, s kernel.Solid, err error) kernel.Solid {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("nil solid")
	}
	return s
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, want %f", i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, want %f", i, max[i], wantMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := mustNew(t)
	s := mustSolid(t, k.Box(10, 20, 30))
	// Box is centered, so bounds should be symmetric.
	checkBounds(t, s, [3]float64{-5, -10, -15}, [3]float64{5, 10, 15}, 1e-6)
}

func TestCylinder(t *testing.T) {
	k := mustNew(t)
	s := mustSolid(t, k.Cylinder(20, 5))
	min, max := s.BoundingBox()

	if math.Abs(min[2]+10) > 0.01 || math.Abs(max[2]-10) > 0.01 {
		t.Errorf("Cylinder Z = %f..%f, want -10..10", min[2], max[2])
	}
	// X/Y bounds should be within the radius (polygon inscribed in circle).
	for i := 0; i < 2; i++ {
		if min[i] > -4.9 || max[i] < 4.9 {
			t.Errorf("Cylinder axis %d = %f..%f, want about -5..5", i, min[i], max[i])
		}
	}
}

func TestHemisphere(t *testing.T) {
	k := mustNew(t)
	up := mustSolid(t, k.Hemisphere(10, true))
	min, max := up.BoundingBox()
	if math.Abs(min[2]) > 1e-6 || math.Abs(max[2]-10) > 0.05 {
		t.Errorf("dome up Z = %f..%f, want 0..10", min[2], max[2])
	}

	down := mustSolid(t, k.Hemisphere(10, false))
	min, max = down.BoundingBox()
	if math.Abs(min[2]+10) > 0.05 || math.Abs(max[2]) > 1e-6 {
		t.Errorf("dome down Z = %f..%f, want -10..0", min[2], max[2])
	}
}

func TestCapsule(t *testing.T) {
	k := mustNew(t)
	s := mustSolid(t, k.Capsule(40, 5))
	min, max := s.BoundingBox()
	if math.Abs(min[2]+20) > 0.05 || math.Abs(max[2]-20) > 0.05 {
		t.Errorf("Capsule Z = %f..%f, want -20..20", min[2], max[2])
	}
}

func TestTorusUnsupported(t *testing.T) {
	_, err := mustNew(t).Torus(10, 2)
	if !errors.Is(err, kernel.ErrNoSolid) {
		t.Errorf("Torus() error = %v, want ErrNoSolid", err)
	}
}

func TestTranslate(t *testing.T) {
	k := mustNew(t)
	box := mustSolid(t, k.Box(10, 10, 10))
	moved := k.Translate(box, 100, 200, 300)
	checkBounds(t, moved, [3]float64{95, 195, 295}, [3]float64{105, 205, 305}, 1e-6)
}

func TestBuild(t *testing.T) {
	k := mustNew(t)
	a := component.MustBuild(component.NewBox("a", component.Vec3{X: -10}, 4, 4, 4))
	b := component.MustBuild(component.NewBox("b", component.Vec3{X: 10}, 4, 4, 4))
	tree := component.MustBuild(component.NewGroup("", "pair", a, b))

	s, err := kernel.Build(k, tree)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	checkBounds(t, s, [3]float64{-12, -2, -2}, [3]float64{12, 2, 2}, 1e-6)
}

func TestToMesh(t *testing.T) {
	k := mustNew(t)
	box := mustSolid(t, k.Box(10, 10, 10))
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("ToMesh() returned empty mesh for a box")
	}

	// Manifold may split vertices along sharp edges, but a box has at
	// least 12 triangles.
	if mesh.TriangleCount() < 12 {
		t.Errorf("ToMesh() triangle count = %d, want >= 12", mesh.TriangleCount())
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("ToMesh() normals length = %d, vertices length = %d, want equal",
			len(mesh.Normals), len(mesh.Vertices))
	}
}
