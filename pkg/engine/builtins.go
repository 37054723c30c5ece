package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/millpath/pkg/component"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpComponent wraps a descriptor so it can be returned from a primitive
// builtin and consumed by group, defpart and place.
type sexpComponent struct {
	d *component.Descriptor
}

func (c *sexpComponent) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", c.d.Kind(), c.d.Label())
}
func (c *sexpComponent) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a component.Vec3.
type sexpVec3 struct {
	vec component.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A keyword
// at the end with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// unknown returns the keywords not in allowed, sorted.
func (a kwArgs) unknown(allowed ...string) []string {
	var out []string
	for k := range a.kw {
		found := false
		for _, al := range allowed {
			if k == al {
				found = true
				break
			}
		}
		if !found {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// number reads a required numeric keyword.
func (a kwArgs) number(fn, key string) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return 0, fmt.Errorf("%s: missing :%s", fn, key)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (component.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return component.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toComponents flattens a component, or a list or array of components.
func toComponents(s zygo.Sexp) ([]*component.Descriptor, error) {
	switch v := s.(type) {
	case *sexpComponent:
		return []*component.Descriptor{v.d}, nil
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		return flattenComponents(items)
	case *zygo.SexpArray:
		return flattenComponents(v.Val)
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected component, got %T (%s)", s, s.SexpString(nil))
}

func flattenComponents(items []zygo.Sexp) ([]*component.Descriptor, error) {
	var out []*component.Descriptor
	for _, it := range items {
		ds, err := toComponents(it)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder collects the state of one evaluation.
type builder struct {
	parts    map[string]*component.Descriptor
	root     *component.Descriptor // set by assembly
	warnings []EvalWarning
}

func newBuilder() *builder {
	return &builder{parts: make(map[string]*component.Descriptor)}
}

func (b *builder) warn(format string, args ...any) {
	b.warnings = append(b.warnings, EvalWarning{Message: fmt.Sprintf(format, args...)})
}

// common keywords accepted by every primitive.
var commonKW = []string{"at", "id", "name", "rotate"}

// primitive wraps a shape constructor into a builtin. build receives the
// parsed arguments and the position and returns the new descriptor.
func (b *builder) primitive(fn string, keys []string, build func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error)) zygo.ZlispUserFunction {
	allowed := append(append([]string{}, commonKW...), keys...)
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for _, k := range pa.unknown(allowed...) {
			b.warn("%s: unknown keyword :%s ignored", fn, k)
		}

		var (
			pos component.Vec3
			id  string
			err error
		)
		if v, ok := pa.kw["at"]; ok {
			if pos, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: at: %w", fn, err)
			}
		}
		if v, ok := pa.kw["id"]; ok {
			if id, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: id: %w", fn, err)
			}
		}

		d, err := build(pa, id, pos)
		if err != nil {
			return zygo.SexpNull, err
		}

		if v, ok := pa.kw["name"]; ok {
			if d.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", fn, err)
			}
		}
		if v, ok := pa.kw["rotate"]; ok {
			rot, err := toRotation(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: rotate: %w", fn, err)
			}
			d.Rotation = &rot
		}
		return &sexpComponent{d: d}, nil
	}
}

// toRotation accepts a single number (degrees about Z) or a vec3 of Euler
// angles.
func toRotation(s zygo.Sexp) (component.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return component.Vec3{Z: f}, nil
	}
	return toVec3(s)
}

func direction(fn string, pa kwArgs) (component.Direction, error) {
	v, ok := pa.kw["direction"]
	if !ok {
		return component.DirUp, nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return 0, fmt.Errorf("%s: direction: %w", fn, err)
	}
	d, err := component.ParseDirection(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	return d, nil
}

// registerBuiltins installs the part DSL into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: component.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (box :width 100 :height 20 :depth 50 :at (vec3 0 0 10) :rotate 30)
	env.AddFunction("box", b.primitive("box", []string{"width", "height", "depth"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			w, err := pa.number("box", "width")
			if err != nil {
				return nil, err
			}
			h, err := pa.number("box", "height")
			if err != nil {
				return nil, err
			}
			d, err := pa.number("box", "depth")
			if err != nil {
				return nil, err
			}
			return component.NewBox(id, pos, w, h, d)
		}))

	// (sphere :radius 25)
	env.AddFunction("sphere", b.primitive("sphere", []string{"radius"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			r, err := pa.number("sphere", "radius")
			if err != nil {
				return nil, err
			}
			return component.NewSphere(id, pos, r)
		}))

	// (cylinder :radius 10 :height 40)
	env.AddFunction("cylinder", b.primitive("cylinder", []string{"radius", "height"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			r, err := pa.number("cylinder", "radius")
			if err != nil {
				return nil, err
			}
			h, err := pa.number("cylinder", "height")
			if err != nil {
				return nil, err
			}
			return component.NewCylinder(id, pos, r, h)
		}))

	// (cone :radius 10 :height 30 :direction :down)
	env.AddFunction("cone", b.primitive("cone", []string{"radius", "height", "direction"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			r, err := pa.number("cone", "radius")
			if err != nil {
				return nil, err
			}
			h, err := pa.number("cone", "height")
			if err != nil {
				return nil, err
			}
			dir, err := direction("cone", pa)
			if err != nil {
				return nil, err
			}
			return component.NewCone(id, pos, r, h, dir)
		}))

	// (torus :radius 30 :tube 5)
	env.AddFunction("torus", b.primitive("torus", []string{"radius", "tube"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			r, err := pa.number("torus", "radius")
			if err != nil {
				return nil, err
			}
			tube, err := pa.number("torus", "tube")
			if err != nil {
				return nil, err
			}
			return component.NewTorus(id, pos, r, tube)
		}))

	// (hemisphere :radius 20 :direction :up)
	env.AddFunction("hemisphere", b.primitive("hemisphere", []string{"radius", "direction"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			r, err := pa.number("hemisphere", "radius")
			if err != nil {
				return nil, err
			}
			dir, err := direction("hemisphere", pa)
			if err != nil {
				return nil, err
			}
			return component.NewHemisphere(id, pos, r, dir)
		}))

	// (capsule :radius 5 :height 40 :axis :z)
	env.AddFunction("capsule", b.primitive("capsule", []string{"radius", "height", "axis"},
		func(pa kwArgs, id string, pos component.Vec3) (*component.Descriptor, error) {
			r, err := pa.number("capsule", "radius")
			if err != nil {
				return nil, err
			}
			h, err := pa.number("capsule", "height")
			if err != nil {
				return nil, err
			}
			axis := component.AxisZ
			if v, ok := pa.kw["axis"]; ok {
				s, err := toKeywordString(v)
				if err != nil {
					return nil, fmt.Errorf("capsule: axis: %w", err)
				}
				if axis, err = component.ParseAxis(s); err != nil {
					return nil, fmt.Errorf("capsule: %w", err)
				}
			}
			return component.NewCapsule(id, pos, r, h, axis)
		}))

	// (group "name" child ...) where a child may also be a list of components.
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := newGroup("group", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpComponent{d: d}, nil
	})

	// (assembly "name" child ...) is a group that becomes the program's part.
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := newGroup("assembly", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if b.root != nil {
			b.warn("assembly %q replaces earlier assembly %q", d.Label(), b.root.Label())
		}
		b.root = d
		return &sexpComponent{d: d}, nil
	})

	// (defpart "name" (box ...))
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		body, ok := args[1].(*sexpComponent)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected component expression, got %T", args[1])
		}
		if _, dup := b.parts[partName]; dup {
			b.warn("defpart %q redefined", partName)
		}
		if body.d.Name == "" {
			body.d.Name = partName
		}
		b.parts[partName] = body.d
		return body, nil
	})

	// (part "name") returns a fresh instance of a defined part.
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		d, ok := b.parts[partName]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpComponent{d: d.Instance(component.Vec3{})}, nil
	})

	// (place (part "leg") :at (vec3 0 0 19)) moves a copy of a component.
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for _, k := range pa.unknown("at") {
			b.warn("place: unknown keyword :%s ignored", k)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires one component as first argument")
		}
		c, ok := pa.positional[0].(*sexpComponent)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("place: expected component, got %T", pa.positional[0])
		}
		var off component.Vec3
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			off = vec
		}
		return &sexpComponent{d: c.d.Instance(off)}, nil
	})
}

// newGroup builds a group from a name followed by components.
func newGroup(fn string, args []zygo.Sexp) (*component.Descriptor, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%s requires a name argument", fn)
	}
	groupName, err := toString(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: name: %w", fn, err)
	}
	children, err := flattenComponents(args[1:])
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", fn, groupName, err)
	}
	return component.NewGroup("", groupName, children...)
}
