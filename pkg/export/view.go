// Package export renders pipeline results to files: SVG and PNG previews of
// the slices and toolpath, a DXF stack of slice outlines and an STL of the
// preview meshes.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/chazu/millpath/pkg/contour"
	"github.com/chazu/millpath/pkg/pipeline"
	"github.com/chazu/millpath/pkg/toolpath"
)

// ErrNothingToExport is returned when a result has no geometry for the
// requested format.
var ErrNothingToExport = errors.New("nothing to export")

// margin around the drawing, as a fraction of its larger side
const marginRatio = 0.05

// view maps XY millimeters onto a top-down canvas with Y pointing up.
type view struct {
	bounds contour.Bounds2
	scale  float64 // canvas units per millimeter
	margin float64 // canvas units
	width  float64
	height float64
}

// newView fits everything in res into a canvas whose longer side is size
// units long.
func newView(res pipeline.Result, size float64) (view, error) {
	b := contour.EmptyBounds()
	for _, s := range res.Slices {
		if !s.IsEmpty() {
			b = b.Union(s.Bounds)
		}
	}
	for _, p := range res.Toolpath {
		b = b.Extend(contour.Point{X: p.X, Y: p.Y})
	}
	if b.IsEmpty() {
		return view{}, fmt.Errorf("%w: no slices or toolpath", ErrNothingToExport)
	}

	side := max(b.Width(), b.Height(), 1e-6)
	v := view{bounds: b, scale: size * (1 - 2*marginRatio) / side, margin: size * marginRatio}
	v.width = b.Width()*v.scale + 2*v.margin
	v.height = b.Height()*v.scale + 2*v.margin
	return v, nil
}

// xy converts a millimeter point to canvas coordinates.
func (v view) xy(x, y float64) (float64, float64) {
	return v.margin + (x-v.bounds.MinX)*v.scale,
		v.margin + (v.bounds.MaxY-y)*v.scale
}

// coords returns the canvas coordinates of c as separate X and Y slices.
func (v view) coords(c contour.Contour) (xs, ys []float64) {
	xs = make([]float64, len(c))
	ys = make([]float64, len(c))
	for i, p := range c {
		xs[i], ys[i] = v.xy(p.X, p.Y)
	}
	return xs, ys
}

// levelColor shades level i of n from light blue at the top to dark blue at
// the bottom.
func levelColor(i, n int) color.RGBA {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	lerp := func(a, b float64) uint8 { return uint8(a + (b-a)*t) }
	return color.RGBA{R: lerp(160, 10), G: lerp(200, 40), B: lerp(255, 140), A: 255}
}

var (
	cutColor   = color.RGBA{R: 220, G: 40, B: 30, A: 255}
	rapidColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// run is a stretch of consecutive toolpath points sharing a motion mode.
type run struct {
	motion toolpath.Motion
	points []toolpath.Point
}

// runs splits points into motion runs. Each run starts at the last point of
// the previous one so the drawn polylines connect.
func runs(points []toolpath.Point) []run {
	var out []run
	for i, p := range points {
		if len(out) == 0 || out[len(out)-1].motion != p.Motion {
			r := run{motion: p.Motion}
			if i > 0 {
				r.points = append(r.points, points[i-1])
			}
			out = append(out, r)
		}
		last := &out[len(out)-1]
		last.points = append(last.points, p)
	}
	return out
}

// errWriter remembers the first write error so drawing code that ignores
// errors can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
