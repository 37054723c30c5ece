package toolpath

import (
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/millpath/pkg/contour"
)

// region is an outer contour together with the islands it encloses.
type region struct {
	outer   contour.Contour
	islands []contour.Contour
}

// indexedOuter adapts an outer contour for the R-tree.
type indexedOuter struct {
	index int
	area  float64
	rect  rtreego.Rect
}

func (o *indexedOuter) Bounds() rtreego.Rect { return o.rect }

func rectOf(b contour.Bounds2) rtreego.Rect {
	// NewRectFromPoints only fails on a dimension mismatch.
	r, _ := rtreego.NewRectFromPoints(rtreego.Point{b.MinX, b.MinY}, rtreego.Point{b.MaxX, b.MaxY})
	return r
}

// nest pairs every island with the smallest outer contour that contains it.
// Islands without an enclosing outer are returned separately. Only one level
// of nesting is resolved: an island inside an island still pairs with the
// outer contour around both.
func nest(outers, islands []contour.Contour) (regions []region, orphans []contour.Contour) {
	regions = make([]region, len(outers))
	tree := rtreego.NewTree(2, 25, 50)
	for i, c := range outers {
		regions[i].outer = c
		if len(c) < 3 {
			continue
		}
		tree.Insert(&indexedOuter{index: i, area: contour.Area(c), rect: rectOf(contour.Bounds(c))})
	}

	for _, isl := range islands {
		if len(isl) == 0 {
			continue
		}
		probe := isl[0]
		best := -1
		bestArea := 0.0
		for _, s := range tree.SearchIntersect(rtreego.Point{probe.X, probe.Y}.ToRect(contour.Epsilon)) {
			cand := s.(*indexedOuter)
			if !contour.Contains(outers[cand.index], probe) {
				continue
			}
			if best < 0 || cand.area < bestArea {
				best, bestArea = cand.index, cand.area
			}
		}
		if best < 0 {
			orphans = append(orphans, isl)
			continue
		}
		regions[best].islands = append(regions[best].islands, isl)
	}
	return regions, orphans
}
