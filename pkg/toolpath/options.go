package toolpath

import "fmt"

// Operation selects what is cut at each level.
type Operation string

const (
	OpProfile Operation = "profile" // follow each contour once
	OpPocket  Operation = "pocket"  // clear the inside of each contour
)

// CutDirection selects climb or conventional milling.
type CutDirection string

const (
	Climb        CutDirection = "climb"
	Conventional CutDirection = "conventional"
)

// Side selects where the tool runs relative to an outer contour.
type Side string

const (
	SideInside  Side = "inside"
	SideOutside Side = "outside"
	SideOn      Side = "on"
)

// Entry selects how the tool enters material.
type Entry string

const (
	EntryPlunge Entry = "plunge"
	EntryRamp   Entry = "ramp"
)

// Options parameterize a Generator. Heights are absolute Z values.
type Options struct {
	ToolDiameter float64
	FeedRate     float64
	PlungeRate   float64
	StepDown     float64
	StepOver     float64 // absolute, in mm
	Operation    Operation
	Direction    CutDirection
	Side         Side
	Entry        Entry
	SafeZ        float64 // retract height between contours
	ClearanceZ   float64 // height for the first and last moves
}

// ToolRadius returns half the tool diameter.
func (o Options) ToolRadius() float64 {
	return o.ToolDiameter / 2
}

// Validate checks the options a generator cannot work without.
func (o Options) Validate() error {
	switch {
	case o.ToolDiameter <= 0:
		return fmt.Errorf("tool diameter must be positive, got %.4f", o.ToolDiameter)
	case o.FeedRate <= 0:
		return fmt.Errorf("feed rate must be positive, got %.4f", o.FeedRate)
	case o.PlungeRate <= 0:
		return fmt.Errorf("plunge rate must be positive, got %.4f", o.PlungeRate)
	case o.Operation == OpPocket && o.StepOver <= 0:
		return fmt.Errorf("pocketing needs a positive step-over, got %.4f", o.StepOver)
	}
	return nil
}

// clockwise reports the winding that produces the configured cut direction.
// Climb milling runs clockwise around material on the outside of the path
// (outer profiles, islands) and counter-clockwise inside a pocket.
func (o Options) clockwise(inside bool) bool {
	cw := !inside
	if o.Direction == Conventional {
		cw = !cw
	}
	return cw
}
