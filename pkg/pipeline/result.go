package pipeline

import (
	"github.com/chazu/millpath/pkg/bounds"
	"github.com/chazu/millpath/pkg/kernel"
	"github.com/chazu/millpath/pkg/slicer"
	"github.com/chazu/millpath/pkg/toolpath"
)

// Result is everything one run produces. Slices are never nil so the result
// encodes to JSON arrays for the UI. A failed run carries an empty toolpath,
// empty G-code, a zero bounding box and at least one entry in Errors.
type Result struct {
	Toolpath []toolpath.Point   `json:"toolpath"`
	Gcode    string             `json:"gcode"`
	Levels   []float64          `json:"levels"`
	Slices   []slicer.Slice     `json:"slices"`
	Bounds   bounds.BoundingBox `json:"bounds"`
	Contours int                `json:"contours"` // contours actually cut
	Stats    toolpath.Stats     `json:"stats"`
	Meshes   []*kernel.Mesh     `json:"meshes"`
	Warnings []string           `json:"warnings"`
	Errors   []string           `json:"errors"`
}

// OK reports whether the run finished without errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func emptyResult() Result {
	return Result{
		Toolpath: []toolpath.Point{},
		Levels:   []float64{},
		Slices:   []slicer.Slice{},
		Meshes:   []*kernel.Mesh{},
		Warnings: []string{},
		Errors:   []string{},
	}
}

// failed returns an empty result carrying errs and any warnings gathered so
// far.
func failed(warnings []string, errs ...string) Result {
	r := emptyResult()
	r.Warnings = append(r.Warnings, warnings...)
	r.Errors = append(r.Errors, errs...)
	return r
}
