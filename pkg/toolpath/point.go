// Package toolpath turns slices into an ordered sequence of machine moves.
package toolpath

import "fmt"

// Motion is the interpolation mode of a move.
type Motion string

const (
	Rapid  Motion = "rapid"  // G0, positioning at machine speed
	Linear Motion = "linear" // G1, controlled feed
)

// MoveKind labels what a move is for. It does not affect the emitted code.
type MoveKind string

const (
	KindTravel  MoveKind = "travel"
	KindPlunge  MoveKind = "plunge"
	KindRamp    MoveKind = "ramp"
	KindCut     MoveKind = "cut"
	KindRetract MoveKind = "retract"
)

// Point is one move target. Feed is in mm/min; zero means the configured
// cutting feed.
type Point struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Z      float64  `json:"z"`
	Motion Motion   `json:"motion"`
	Feed   float64  `json:"feed,omitempty"`
	Kind   MoveKind `json:"kind"`
}

func (p Point) String() string {
	return fmt.Sprintf("%s %s (%.3f, %.3f, %.3f) F%.0f", p.Motion, p.Kind, p.X, p.Y, p.Z, p.Feed)
}
