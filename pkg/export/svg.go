package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"

	"github.com/chazu/millpath/pkg/pipeline"
	"github.com/chazu/millpath/pkg/toolpath"
)

// SVGSize is the longer side of the SVG canvas in user units.
const SVGSize = 800.0

// WriteSVG draws a top view of res: one group per slice, outer contours
// solid and islands dashed, then the toolpath with cuts in red and rapids in
// grey.
func WriteSVG(w io.Writer, res pipeline.Result) error {
	v, err := newView(res, SVGSize)
	if err != nil {
		return err
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(v.width, v.height)
	canvas.Title(fmt.Sprintf("%d slices, %d toolpath points", len(res.Slices), len(res.Toolpath)))
	canvas.Rect(0, 0, v.width, v.height, "fill:white")

	canvas.Gid("slices")
	for i, s := range res.Slices {
		if s.IsEmpty() {
			continue
		}
		stroke := hex(levelColor(i, len(res.Slices)))
		canvas.Gid(fmt.Sprintf("z%d", i))
		canvas.Desc(fmt.Sprintf("z=%g area=%.3f", s.Z, s.Area))
		for _, c := range s.Contours {
			xs, ys := v.coords(c)
			canvas.Polygon(xs, ys, "fill:none;stroke:"+stroke+";stroke-width:1")
		}
		for _, c := range s.Islands {
			xs, ys := v.coords(c)
			canvas.Polygon(xs, ys, "fill:none;stroke:"+stroke+";stroke-width:1;stroke-dasharray:4,2")
		}
		canvas.Gend()
	}
	canvas.Gend()

	canvas.Gid("toolpath")
	for _, r := range runs(res.Toolpath) {
		if len(r.points) < 2 {
			continue
		}
		xs := make([]float64, len(r.points))
		ys := make([]float64, len(r.points))
		for i, p := range r.points {
			xs[i], ys[i] = v.xy(p.X, p.Y)
		}
		style := "fill:none;stroke:" + hex(cutColor) + ";stroke-width:0.8"
		if r.motion == toolpath.Rapid {
			style = "fill:none;stroke:" + hex(rapidColor) + ";stroke-width:0.5;stroke-dasharray:2,2"
		}
		canvas.Polyline(xs, ys, style)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}
