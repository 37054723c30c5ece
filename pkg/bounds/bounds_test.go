package bounds

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/millpath/pkg/component"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxVec(a, b component.Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestComputeLeaves(t *testing.T) {
	at := component.Vec3{X: 10, Y: 20, Z: 30}
	tests := []struct {
		name     string
		d        *component.Descriptor
		min, max component.Vec3
		volume   float64
	}{
		{
			name:   "box",
			d:      component.MustBuild(component.NewBox("b", at, 4, 6, 8)),
			min:    component.Vec3{X: 8, Y: 16, Z: 27},
			max:    component.Vec3{X: 12, Y: 24, Z: 33},
			volume: 4 * 6 * 8,
		},
		{
			name:   "sphere",
			d:      component.MustBuild(component.NewSphere("s", at, 5)),
			min:    component.Vec3{X: 5, Y: 15, Z: 25},
			max:    component.Vec3{X: 15, Y: 25, Z: 35},
			volume: 4.0 / 3.0 * math.Pi * 125,
		},
		{
			name:   "cylinder",
			d:      component.MustBuild(component.NewCylinder("c", at, 3, 10)),
			min:    component.Vec3{X: 7, Y: 17, Z: 25},
			max:    component.Vec3{X: 13, Y: 23, Z: 35},
			volume: math.Pi * 9 * 10,
		},
		{
			name:   "cone",
			d:      component.MustBuild(component.NewCone("k", at, 3, 10, component.DirUp)),
			min:    component.Vec3{X: 7, Y: 17, Z: 25},
			max:    component.Vec3{X: 13, Y: 23, Z: 35},
			volume: math.Pi * 9 * 10 / 3,
		},
		{
			name:   "torus",
			d:      component.MustBuild(component.NewTorus("t", at, 10, 2)),
			min:    component.Vec3{X: -2, Y: 8, Z: 28},
			max:    component.Vec3{X: 22, Y: 32, Z: 32},
			volume: 2 * math.Pi * math.Pi * 10 * 4,
		},
		{
			name:   "hemisphere up",
			d:      component.MustBuild(component.NewHemisphere("h", at, 5, component.DirUp)),
			min:    component.Vec3{X: 5, Y: 15, Z: 30},
			max:    component.Vec3{X: 15, Y: 25, Z: 35},
			volume: 2.0 / 3.0 * math.Pi * 125,
		},
		{
			name:   "hemisphere down",
			d:      component.MustBuild(component.NewHemisphere("h", at, 5, component.DirDown)),
			min:    component.Vec3{X: 5, Y: 15, Z: 25},
			max:    component.Vec3{X: 15, Y: 25, Z: 30},
			volume: 2.0 / 3.0 * math.Pi * 125,
		},
		{
			name:   "capsule",
			d:      component.MustBuild(component.NewCapsule("p", at, 2, 12, component.AxisZ)),
			min:    component.Vec3{X: 8, Y: 18, Z: 24},
			max:    component.Vec3{X: 12, Y: 22, Z: 36},
			volume: math.Pi*4*8 + 4.0/3.0*math.Pi*8,
		},
		{
			name:   "capsule x",
			d:      component.MustBuild(component.NewCapsule("p", at, 2, 12, component.AxisX)),
			min:    component.Vec3{X: 4, Y: 18, Z: 28},
			max:    component.Vec3{X: 16, Y: 22, Z: 32},
			volume: math.Pi*4*8 + 4.0/3.0*math.Pi*8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Compute(tt.d)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if !approxVec(b.Min, tt.min) || !approxVec(b.Max, tt.max) {
				t.Errorf("Compute() = %+v..%+v, want %+v..%+v", b.Min, b.Max, tt.min, tt.max)
			}
			if !approx(b.Volume, tt.volume) {
				t.Errorf("Volume = %v, want %v", b.Volume, tt.volume)
			}
			if b.SurfaceArea <= 0 {
				t.Errorf("SurfaceArea = %v, want > 0", b.SurfaceArea)
			}
			if !approxVec(b.Size, b.Max.Sub(b.Min)) {
				t.Errorf("Size = %+v inconsistent with min/max", b.Size)
			}
		})
	}
}

func TestComputeRotatedBox(t *testing.T) {
	d := component.MustBuild(component.NewBox("b", component.Vec3{}, 10, 2, 10))
	d.Rotation = &component.Vec3{Z: 45}
	b, err := Compute(d)
	if err != nil {
		t.Fatal(err)
	}
	want := 10 * math.Sqrt2 / 2
	if !approx(b.Max.X, want) || !approx(b.Max.Y, want) {
		t.Errorf("rotated extent = %v,%v, want %v", b.Max.X, b.Max.Y, want)
	}
	if !approx(b.Volume, 200) {
		t.Errorf("Volume = %v, want true box volume 200", b.Volume)
	}
}

func TestComputeGroup(t *testing.T) {
	a := component.MustBuild(component.NewBox("a", component.Vec3{}, 2, 2, 2))
	s := component.MustBuild(component.NewSphere("s", component.Vec3{X: 10}, 1))
	g := component.MustBuild(component.NewGroup("g", "g", a, s))

	b, err := Compute(g)
	if err != nil {
		t.Fatal(err)
	}
	if !approxVec(b.Min, component.Vec3{X: -1, Y: -1, Z: -1}) || !approxVec(b.Max, component.Vec3{X: 11, Y: 1, Z: 1}) {
		t.Errorf("group bounds = %+v..%+v", b.Min, b.Max)
	}
	// Composite volume is the union box, not the sum of parts.
	if !approx(b.Volume, 12*2*2) {
		t.Errorf("Volume = %v, want 48", b.Volume)
	}
	if !approxVec(b.Center, component.Vec3{X: 5}) {
		t.Errorf("Center = %+v", b.Center)
	}
}

func TestComputeErrors(t *testing.T) {
	mesh := &component.Descriptor{ID: "m", Shape: component.Mesh{}}
	if _, err := Compute(mesh); !errors.Is(err, ErrUnsupported) {
		t.Errorf("mesh error = %v, want ErrUnsupported", err)
	}
	g := &component.Descriptor{ID: "g", Shape: component.Group{}, Children: []*component.Descriptor{mesh}}
	if _, err := Compute(g); !errors.Is(err, ErrUnsupported) {
		t.Errorf("group-with-mesh error = %v, want ErrUnsupported", err)
	}
	box := component.MustBuild(component.NewBox("b", component.Vec3{}, 2, 2, 2))
	mixed := &component.Descriptor{ID: "x", Shape: component.Group{}, Children: []*component.Descriptor{mesh, box}}
	if b, err := Compute(mixed); err != nil || !approx(b.Volume, 8) {
		t.Errorf("mixed group = %+v, %v; want the box alone", b, err)
	}
	if _, err := Compute(nil); !errors.Is(err, component.ErrInvalid) {
		t.Errorf("nil error = %v, want ErrInvalid", err)
	}
	empty := &component.Descriptor{ID: "e", Shape: component.Group{}}
	if _, err := Compute(empty); !errors.Is(err, component.ErrInvalid) {
		t.Errorf("empty group error = %v, want ErrInvalid", err)
	}
}

func TestContains(t *testing.T) {
	outer := New(component.Vec3{X: -1, Y: -1, Z: -1}, component.Vec3{X: 1, Y: 1, Z: 1})
	inner := New(component.Vec3{X: -1.0005}, component.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	if outer.Contains(inner, 0) {
		t.Error("Contains with zero tolerance should fail")
	}
	if !outer.Contains(inner, 0.001) {
		t.Error("Contains with tolerance should pass")
	}
}
