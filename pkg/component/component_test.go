package component

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func buildAssembly(t *testing.T) *Descriptor {
	t.Helper()
	base := MustBuild(NewBox("base", Vec3{}, 100, 20, 60))
	post := MustBuild(NewCylinder("post", Vec3{Z: 30}, 10, 40))
	knob := MustBuild(NewSphere("knob", Vec3{Z: 55}, 8))
	top, err := NewGroup("top", "top", post, knob)
	if err != nil {
		t.Fatalf("NewGroup() error: %v", err)
	}
	root, err := NewGroup("root", "assembly", base, top)
	if err != nil {
		t.Fatalf("NewGroup() error: %v", err)
	}
	return root
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func TestConstructorsRejectNonPositive(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Descriptor, error)
	}{
		{"box zero width", func() (*Descriptor, error) { return NewBox("", Vec3{}, 0, 1, 1) }},
		{"box negative depth", func() (*Descriptor, error) { return NewBox("", Vec3{}, 1, 1, -2) }},
		{"sphere", func() (*Descriptor, error) { return NewSphere("", Vec3{}, 0) }},
		{"cylinder height", func() (*Descriptor, error) { return NewCylinder("", Vec3{}, 1, 0) }},
		{"cone radius", func() (*Descriptor, error) { return NewCone("", Vec3{}, -1, 5, DirUp) }},
		{"torus tube", func() (*Descriptor, error) { return NewTorus("", Vec3{}, 10, 0) }},
		{"hemisphere", func() (*Descriptor, error) { return NewHemisphere("", Vec3{}, 0, DirDown) }},
		{"capsule", func() (*Descriptor, error) { return NewCapsule("", Vec3{}, 2, 0, AxisZ) }},
		{"empty group", func() (*Descriptor, error) { return NewGroup("", "g") }},
		{"nil child", func() (*Descriptor, error) { return NewGroup("", "g", nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.fn()
			if err == nil {
				t.Fatalf("expected error, got descriptor %+v", d)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestConstructorFillsID(t *testing.T) {
	d := MustBuild(NewSphere("", Vec3{}, 5))
	if d.ID == "" {
		t.Fatal("expected generated ID")
	}
	other := MustBuild(NewSphere("", Vec3{}, 5))
	if d.ID == other.ID {
		t.Errorf("generated IDs collide: %s", d.ID)
	}
}

func TestCapsuleBodyHalfLength(t *testing.T) {
	tests := []struct {
		radius, height, want float64
	}{
		{5, 30, 10},
		{5, 10, 0},
		{5, 4, 0},
	}
	for _, tt := range tests {
		c := Capsule{Radius: tt.radius, Height: tt.height}
		if got := c.BodyHalfLength(); got != tt.want {
			t.Errorf("BodyHalfLength(r=%v, h=%v) = %v, want %v", tt.radius, tt.height, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Tree helpers
// ---------------------------------------------------------------------------

func TestLeavesAndCount(t *testing.T) {
	root := buildAssembly(t)
	if got := root.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
	leaves := root.Leaves()
	if len(leaves) != 3 {
		t.Fatalf("Leaves() returned %d, want 3", len(leaves))
	}
	want := []string{"base", "post", "knob"}
	for i, l := range leaves {
		if l.ID != want[i] {
			t.Errorf("leaf %d = %s, want %s", i, l.ID, want[i])
		}
	}
}

func TestWalkStopsDescent(t *testing.T) {
	root := buildAssembly(t)
	var visited []string
	root.Walk(func(n *Descriptor, depth int) bool {
		visited = append(visited, n.ID)
		return n.ID != "top"
	})
	if strings.Join(visited, ",") != "root,base,top" {
		t.Errorf("visited = %v", visited)
	}
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", name, got, err, k)
		}
	}
	if _, err := ParseKind("pyramid"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseKind(pyramid) error = %v, want ErrInvalid", err)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidateValidTree(t *testing.T) {
	r := Validate(buildAssembly(t))
	if !r.OK() {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidateNil(t *testing.T) {
	r := Validate(nil)
	if r.OK() {
		t.Fatal("expected error for nil tree")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Run("empty group", func(t *testing.T) {
		g := &Descriptor{ID: "g", Shape: Group{}}
		if r := Validate(g); !hasError(r.Errors, "no children") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
	t.Run("leaf with children", func(t *testing.T) {
		s := MustBuild(NewSphere("s", Vec3{}, 1))
		b := &Descriptor{ID: "b", Shape: Box{Width: 1, Height: 1, Depth: 1}, Children: []*Descriptor{s}}
		if r := Validate(b); !hasError(r.Errors, "cannot have children") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
	t.Run("zero radius", func(t *testing.T) {
		d := &Descriptor{ID: "s", Shape: Sphere{}}
		if r := Validate(d); !hasError(r.Errors, "radius") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
	t.Run("duplicate id", func(t *testing.T) {
		a := MustBuild(NewSphere("same", Vec3{}, 1))
		b := MustBuild(NewSphere("same", Vec3{X: 5}, 1))
		g := MustBuild(NewGroup("g", "g", a, b))
		if r := Validate(g); !hasError(r.Errors, "duplicate id") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
	t.Run("shared node", func(t *testing.T) {
		a := MustBuild(NewSphere("a", Vec3{}, 1))
		g := MustBuild(NewGroup("g", "g", a, a))
		if r := Validate(g); !hasError(r.Errors, "more than once") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
	t.Run("missing shape", func(t *testing.T) {
		if r := Validate(&Descriptor{ID: "x"}); !hasError(r.Errors, "no shape") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
}

func TestValidateWarnings(t *testing.T) {
	capsule := MustBuild(NewCapsule("c", Vec3{}, 2, 10, AxisX))
	tilted := MustBuild(NewBox("b", Vec3{}, 10, 10, 10))
	tilted.Rotation = &Vec3{X: 30}
	mesh := &Descriptor{ID: "m", Shape: Mesh{Source: "part.stl"}}
	torus := MustBuild(NewTorus("t", Vec3{}, 5, 8))
	root := MustBuild(NewGroup("root", "root", capsule, tilted, mesh, torus))

	r := Validate(root)
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	for _, substr := range []string{"capsule along x", "rotation about X/Y", "mesh components", "tube radius"} {
		if !hasWarning(r.Warnings, substr) {
			t.Errorf("missing warning containing %q in %v", substr, r.Warnings)
		}
	}
	if got := len(r.WarningStrings()); got != len(r.Warnings) {
		t.Errorf("WarningStrings() len = %d, want %d", got, len(r.Warnings))
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	src := `{
		"id": "asm",
		"name": "assembly",
		"type": "group",
		"position": {"x": 0, "y": 0, "z": 0},
		"children": [
			{"id": "b", "type": "box", "position": {"x": 1, "y": 2, "z": 3},
			 "params": {"width": 10, "height": 20, "depth": 30}},
			{"type": "hemisphere", "position": {"x": 0, "y": 0, "z": 0},
			 "params": {"radius": 4, "direction": "down"}},
			{"type": "capsule", "position": {"x": 0, "y": 0, "z": 0},
			 "rotation": {"x": 0, "y": 0, "z": 45},
			 "params": {"radius": 2, "height": 12, "axis": "y"}}
		]
	}`
	d, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if d.Kind() != KindGroup || len(d.Children) != 3 {
		t.Fatalf("root = %v with %d children", d.Kind(), len(d.Children))
	}

	box, ok := d.Children[0].Shape.(Box)
	if !ok {
		t.Fatalf("child 0 shape = %T, want Box", d.Children[0].Shape)
	}
	if box.Width != 10 || box.Height != 20 || box.Depth != 30 {
		t.Errorf("box = %+v", box)
	}
	if d.Children[0].Position != (Vec3{1, 2, 3}) {
		t.Errorf("box position = %+v", d.Children[0].Position)
	}

	hemi := d.Children[1]
	if hemi.ID == "" {
		t.Error("expected generated ID for hemisphere")
	}
	if h := hemi.Shape.(Hemisphere); h.Direction != DirDown {
		t.Errorf("hemisphere direction = %v, want down", h.Direction)
	}

	capsule := d.Children[2]
	if c := capsule.Shape.(Capsule); c.Axis != AxisY {
		t.Errorf("capsule axis = %v, want y", c.Axis)
	}
	if capsule.RotationZ() != 45 {
		t.Errorf("RotationZ() = %v, want 45", capsule.RotationZ())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"malformed", `{"type": `},
		{"unknown type", `{"type": "pyramid"}`},
		{"bad direction", `{"type": "cone", "params": {"radius": 1, "height": 1, "direction": "sideways"}}`},
		{"bad axis", `{"type": "capsule", "params": {"radius": 1, "height": 4, "axis": "w"}}`},
		{"bad child", `{"type": "group", "children": [{"type": "blob"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeDecodeTree(t *testing.T) {
	root := buildAssembly(t)
	cone := MustBuild(NewCone("cone", Vec3{X: 40}, 5, 10, DirDown))
	root.Children = append(root.Children, cone)

	data, err := Encode(root)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Count() != root.Count() {
		t.Errorf("decoded %d nodes, want %d", got.Count(), root.Count())
	}
	last := got.Children[len(got.Children)-1]
	if c, ok := last.Shape.(Cone); !ok || c.Direction != DirDown || c.Radius != 5 {
		t.Errorf("cone = %#v", last.Shape)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := buildAssembly(t)
	root.Children[0].Rotation = &Vec3{Z: 45}

	c := root.Clone()
	c.Children[0].Position.X = 999
	c.Children[0].Rotation.Z = 10
	c.Children = c.Children[:1]

	if root.Children[0].Position.X == 999 || root.Children[0].Rotation.Z != 45 {
		t.Error("clone shares state with the original")
	}
	if root.Count() == c.Count() {
		t.Error("trimming the clone's children changed the original")
	}
	if c.ID != root.ID {
		t.Errorf("clone ID = %q, want %q", c.ID, root.ID)
	}
}

func TestInstance(t *testing.T) {
	root := buildAssembly(t)
	inst := root.Instance(Vec3{X: 10, Z: -5})

	if inst.Count() != root.Count() {
		t.Fatalf("instance has %d nodes, want %d", inst.Count(), root.Count())
	}
	orig := root.Leaves()
	for i, l := range inst.Leaves() {
		if l.ID == orig[i].ID {
			t.Errorf("leaf %d kept ID %q", i, l.ID)
		}
		want := orig[i].Position.Add(Vec3{X: 10, Z: -5})
		if l.Position != want {
			t.Errorf("leaf %d at %v, want %v", i, l.Position, want)
		}
	}

	both := MustBuild(NewGroup("", "pair", root, inst))
	if r := Validate(both); !r.OK() {
		t.Errorf("tree with an instance should validate: %v", r.Errors)
	}
}
