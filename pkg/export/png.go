package export

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/chazu/millpath/pkg/contour"
	"github.com/chazu/millpath/pkg/pipeline"
	"github.com/chazu/millpath/pkg/toolpath"
)

// DefaultPNGSize is the longer side of the PNG preview in pixels.
const DefaultPNGSize = 1024

// WritePNG rasterizes the same top view as WriteSVG into a PNG whose longer
// side is size pixels. A non-positive size selects DefaultPNGSize.
func WritePNG(w io.Writer, res pipeline.Result, size int) error {
	if size <= 0 {
		size = DefaultPNGSize
	}
	v, err := newView(res, float64(size))
	if err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, int(math.Round(v.width)), int(math.Round(v.height))))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetLineWidth(1)

	for i, s := range res.Slices {
		gc.SetStrokeColor(levelColor(i, len(res.Slices)))
		for _, c := range s.Contours {
			strokeContour(gc, v, c)
		}
		for _, c := range s.Islands {
			strokeContour(gc, v, c)
		}
	}

	for _, r := range runs(res.Toolpath) {
		if len(r.points) < 2 {
			continue
		}
		if r.motion == toolpath.Rapid {
			gc.SetStrokeColor(rapidColor)
			gc.SetLineWidth(0.5)
		} else {
			gc.SetStrokeColor(cutColor)
			gc.SetLineWidth(1.5)
		}
		gc.BeginPath()
		for i, p := range r.points {
			x, y := v.xy(p.X, p.Y)
			if i == 0 {
				gc.MoveTo(x, y)
			} else {
				gc.LineTo(x, y)
			}
		}
		gc.Stroke()
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func strokeContour(gc *draw2dimg.GraphicContext, v view, c contour.Contour) {
	if len(c) < 2 {
		return
	}
	gc.BeginPath()
	for i, p := range c {
		x, y := v.xy(p.X, p.Y)
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
	gc.Close()
	gc.Stroke()
}
