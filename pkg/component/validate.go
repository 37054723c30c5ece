package component

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks the
// pipeline or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks processing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ID       string             // which descriptor has the problem
	Label    string             // human-readable descriptor label
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] component %s: %s", e.Severity, e.Label, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// WarningStrings returns the warnings formatted for a result banner.
func (r ValidationResult) WarningStrings() []string {
	out := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.Error())
	}
	return out
}

// Validate checks the whole tree rooted at d. It is read-only.
//
// Errors: nil root, nil or repeated nodes (cycles), groups without children,
// leaves with children, non-positive size parameters, duplicate IDs.
// Warnings: mesh components, non-Z capsules and X/Y rotations, all of which
// the slicer skips or treats as axis-aligned, and self-intersecting tori.
func Validate(d *Descriptor) ValidationResult {
	var r ValidationResult
	if d == nil {
		r.Errors = append(r.Errors, ValidationError{Message: "component tree is empty", Severity: SeverityError})
		return r
	}

	seenNodes := make(map[*Descriptor]bool)
	seenIDs := make(map[string]bool)

	addErr := func(n *Descriptor, format string, args ...any) {
		r.Errors = append(r.Errors, ValidationError{
			ID: n.ID, Label: n.Label(), Message: fmt.Sprintf(format, args...), Severity: SeverityError,
		})
	}
	addWarn := func(n *Descriptor, format string, args ...any) {
		r.Warnings = append(r.Warnings, ValidationError{
			ID: n.ID, Label: n.Label(), Message: fmt.Sprintf(format, args...), Severity: SeverityWarning,
		})
	}

	var visit func(n *Descriptor)
	visit = func(n *Descriptor) {
		if seenNodes[n] {
			addErr(n, "descriptor appears more than once in the tree")
			return
		}
		seenNodes[n] = true

		if n.ID != "" {
			if seenIDs[n.ID] {
				addErr(n, "duplicate id %q", n.ID)
			}
			seenIDs[n.ID] = true
		}

		if n.Shape == nil {
			addErr(n, "descriptor has no shape")
			return
		}

		validateShape(n, addErr, addWarn)

		if n.Kind() == KindGroup {
			if len(n.Children) == 0 {
				addErr(n, "group has no children")
			}
		} else if len(n.Children) > 0 {
			addErr(n, "%s cannot have children", n.Kind())
		}

		for i, c := range n.Children {
			if c == nil {
				addErr(n, "child %d is nil", i)
				continue
			}
			visit(c)
		}
	}
	visit(d)

	return r
}

type reportFunc func(n *Descriptor, format string, args ...any)

func validateShape(n *Descriptor, addErr, addWarn reportFunc) {
	check := func(field string, v float64) {
		if v <= 0 {
			addErr(n, "%s %s is %.4f, must be positive", n.Kind(), field, v)
		}
	}

	switch s := n.Shape.(type) {
	case Box:
		check("width", s.Width)
		check("height", s.Height)
		check("depth", s.Depth)
	case Sphere:
		check("radius", s.Radius)
	case Cylinder:
		check("radius", s.Radius)
		check("height", s.Height)
	case Cone:
		check("radius", s.Radius)
		check("height", s.Height)
	case Torus:
		check("radius", s.Radius)
		check("tube radius", s.TubeRadius)
		if s.TubeRadius > s.Radius {
			addWarn(n, "tube radius %.2f exceeds torus radius %.2f; the hole closes near the center plane", s.TubeRadius, s.Radius)
		}
	case Hemisphere:
		check("radius", s.Radius)
	case Capsule:
		check("radius", s.Radius)
		check("height", s.Height)
		if s.Axis != AxisZ {
			addWarn(n, "capsule along %s axis is not supported and will be skipped", s.Axis)
		}
	case Mesh:
		addWarn(n, "mesh components are not supported and will be skipped")
	}

	if n.IsLeaf() && n.IsTilted() {
		addWarn(n, "rotation about X/Y is ignored; sliced as axis-aligned")
	}
}
