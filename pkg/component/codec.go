package component

import (
	"encoding/json"
	"fmt"
)

// wireDescriptor is the editor's JSON form of a descriptor.
type wireDescriptor struct {
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name,omitempty"`
	Type     string            `json:"type"`
	Position Vec3              `json:"position"`
	Rotation *Vec3             `json:"rotation,omitempty"`
	Params   json.RawMessage   `json:"params,omitempty"`
	Children []*wireDescriptor `json:"children,omitempty"`
}

// wireParams is the union of all kind-specific parameters. Unused fields are
// ignored for a given kind.
type wireParams struct {
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Depth       float64 `json:"depth,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	TubeRadius  float64 `json:"tubeRadius,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Axis        string  `json:"axis,omitempty"`
	Description string  `json:"description,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// Decode parses a descriptor tree from its JSON form. Missing IDs are filled
// with fresh UUIDs. The result is not validated; call Validate.
func Decode(data []byte) (*Descriptor, error) {
	var w wireDescriptor
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode component: %w", err)
	}
	return fromWire(&w, "root")
}

func fromWire(w *wireDescriptor, path string) (*Descriptor, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: %s is null", ErrInvalid, path)
	}
	kind, err := ParseKind(w.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var p wireParams
	if len(w.Params) > 0 {
		if err := json.Unmarshal(w.Params, &p); err != nil {
			return nil, fmt.Errorf("%s: params: %w", path, err)
		}
	}

	shape, err := shapeFromParams(kind, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	d := &Descriptor{
		ID:       w.ID,
		Name:     w.Name,
		Position: w.Position,
		Rotation: w.Rotation,
		Shape:    shape,
	}
	if d.ID == "" {
		d.ID = NewID()
	}
	for i, cw := range w.Children {
		c, err := fromWire(cw, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		d.Children = append(d.Children, c)
	}
	return d, nil
}

func shapeFromParams(kind Kind, p wireParams) (Shape, error) {
	switch kind {
	case KindBox:
		return Box{Width: p.Width, Height: p.Height, Depth: p.Depth}, nil
	case KindSphere:
		return Sphere{Radius: p.Radius}, nil
	case KindCylinder:
		return Cylinder{Radius: p.Radius, Height: p.Height}, nil
	case KindCone:
		dir, err := ParseDirection(p.Direction)
		if err != nil {
			return nil, err
		}
		return Cone{Radius: p.Radius, Height: p.Height, Direction: dir}, nil
	case KindTorus:
		return Torus{Radius: p.Radius, TubeRadius: p.TubeRadius}, nil
	case KindHemisphere:
		dir, err := ParseDirection(p.Direction)
		if err != nil {
			return nil, err
		}
		return Hemisphere{Radius: p.Radius, Direction: dir}, nil
	case KindCapsule:
		axis, err := ParseAxis(p.Axis)
		if err != nil {
			return nil, err
		}
		return Capsule{Radius: p.Radius, Height: p.Height, Axis: axis}, nil
	case KindGroup:
		return Group{Description: p.Description}, nil
	case KindMesh:
		return Mesh{Source: p.Source}, nil
	}
	return nil, fmt.Errorf("%w: unhandled kind %s", ErrInvalid, kind)
}

// Encode renders the descriptor tree in its JSON form.
func Encode(d *Descriptor) ([]byte, error) {
	return json.MarshalIndent(toWire(d), "", "  ")
}

func toWire(d *Descriptor) *wireDescriptor {
	w := &wireDescriptor{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Kind().String(),
		Position: d.Position,
		Rotation: d.Rotation,
	}

	var p wireParams
	switch s := d.Shape.(type) {
	case Box:
		p = wireParams{Width: s.Width, Height: s.Height, Depth: s.Depth}
	case Sphere:
		p = wireParams{Radius: s.Radius}
	case Cylinder:
		p = wireParams{Radius: s.Radius, Height: s.Height}
	case Cone:
		p = wireParams{Radius: s.Radius, Height: s.Height, Direction: s.Direction.String()}
	case Torus:
		p = wireParams{Radius: s.Radius, TubeRadius: s.TubeRadius}
	case Hemisphere:
		p = wireParams{Radius: s.Radius, Direction: s.Direction.String()}
	case Capsule:
		p = wireParams{Radius: s.Radius, Height: s.Height, Axis: s.Axis.String()}
	case Group:
		p = wireParams{Description: s.Description}
	case Mesh:
		p = wireParams{Source: s.Source}
	}
	// Marshalling a struct of plain fields cannot fail.
	w.Params, _ = json.Marshal(p)

	for _, c := range d.Children {
		w.Children = append(w.Children, toWire(c))
	}
	return w
}

// MarshalJSON implements json.Marshaler using the editor's wire form.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(d))
}

// UnmarshalJSON implements json.Unmarshaler using the editor's wire form.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	parsed, err := Decode(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}
