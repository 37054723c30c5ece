package export

import (
	"fmt"

	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/chazu/millpath/pkg/contour"
	"github.com/chazu/millpath/pkg/slicer"
)

// LayerName returns the DXF layer that holds slice i.
func LayerName(i int) string {
	return fmt.Sprintf("SLICE_%03d", i)
}

// WriteDXF saves the slice stack to path. Every non-empty slice gets its own
// layer; contours are drawn as closed runs of 3D lines at the slice height,
// so the file opens as a wireframe of the part.
func WriteDXF(path string, slices []slicer.Slice) error {
	d := dxf.NewDrawing()

	written := 0
	for i, s := range slices {
		if s.IsEmpty() {
			continue
		}
		if _, err := d.AddLayer(LayerName(i), dxfcolor.ColorNumber(1+i%7), dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("dxf layer %d: %w", i, err)
		}
		for _, c := range s.Contours {
			if err := closedLines(d, c, s.Z); err != nil {
				return fmt.Errorf("dxf slice %d: %w", i, err)
			}
		}
		for _, c := range s.Islands {
			if err := closedLines(d, c, s.Z); err != nil {
				return fmt.Errorf("dxf slice %d: %w", i, err)
			}
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("%w: every slice is empty", ErrNothingToExport)
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf: %w", err)
	}
	return nil
}

func closedLines(d *drawing.Drawing, c contour.Contour, z float64) error {
	for i, a := range c {
		b := c[(i+1)%len(c)]
		if _, err := d.Line(a.X, a.Y, z, b.X, b.Y, z); err != nil {
			return err
		}
	}
	return nil
}
