package slicer

import (
	"github.com/samber/lo"

	"github.com/chazu/millpath/pkg/contour"
)

// Combine merges per-child slices taken at the same height. Contour and island
// lists are concatenated, areas summed and bounds unioned. Overlapping
// children are not joined into one outline and their shared area is counted
// twice; a true polygon union would need boolean geometry.
func Combine(z float64, parts []Slice) Slice {
	out := Slice{
		Z: z,
		Contours: lo.FlatMap(parts, func(s Slice, _ int) []contour.Contour {
			return s.Contours
		}),
		Islands: lo.FlatMap(parts, func(s Slice, _ int) []contour.Contour {
			return s.Islands
		}),
		Area: lo.SumBy(parts, func(s Slice) float64 {
			return s.Area
		}),
	}

	b := contour.EmptyBounds()
	for _, p := range parts {
		if !p.IsEmpty() {
			b = b.Union(p.Bounds)
		}
	}
	out.Bounds = b.OrZero()
	return out
}
