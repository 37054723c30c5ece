package toolpath

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/millpath/pkg/contour"
	"github.com/chazu/millpath/pkg/slicer"
)

// Result is the generated motion sequence.
type Result struct {
	Points   []Point
	Contours int // contours actually cut
	Warnings []string
}

// Generator walks slices top to bottom and cuts every contour. The only state
// carried between contours is the tool position, which is used to choose the
// next entry point.
type Generator struct {
	opts Options

	pos      contour.Point
	points   []Point
	contours int
	warnings []string
}

// NewGenerator validates opts and returns a generator.
func NewGenerator(opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.ClearanceZ < opts.SafeZ {
		opts.ClearanceZ = opts.SafeZ
	}
	return &Generator{opts: opts}, nil
}

// Generate produces the full toolpath for slices, which must be ordered from
// the highest Z down. Per slice, each outer contour is followed by the
// islands it encloses; the next region is the one whose nearest vertex is
// closest to the tool.
func (g *Generator) Generate(slices []slicer.Slice) Result {
	g.pos = contour.Point{}
	g.points = []Point{}
	g.contours = 0
	g.warnings = nil

	for _, sl := range slices {
		if sl.IsEmpty() {
			if len(sl.Islands) > 0 {
				g.warn("z=%.3f: %d islands without an outer contour; skipped", sl.Z, len(sl.Islands))
			}
			continue
		}

		regions, orphans := nest(sl.Contours, sl.Islands)
		for len(regions) > 0 {
			i := g.nearestRegion(regions)
			r := regions[i]
			regions = append(regions[:i], regions[i+1:]...)

			g.cutOuter(sl.Z, r)
			for _, isl := range g.byDistance(r.islands) {
				g.cutIsland(sl.Z, isl)
			}
		}
		if len(orphans) > 0 {
			g.warn("z=%.3f: %d islands not enclosed by any contour; cut last", sl.Z, len(orphans))
			for _, isl := range g.byDistance(orphans) {
				g.cutIsland(sl.Z, isl)
			}
		}
	}

	if len(g.points) > 0 {
		g.add(Point{X: g.pos.X, Y: g.pos.Y, Z: g.opts.ClearanceZ, Motion: Rapid, Kind: KindRetract})
	}

	return Result{Points: g.points, Contours: g.contours, Warnings: g.warnings}
}

func (g *Generator) warn(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}

func (g *Generator) add(p Point) {
	g.points = append(g.points, p)
}

func (g *Generator) distanceTo(c contour.Contour) float64 {
	i := contour.NearestVertex(c, g.pos)
	if i < 0 {
		return math.Inf(1)
	}
	return c[i].Dist(g.pos)
}

func (g *Generator) nearestRegion(regions []region) int {
	return lo.MinBy(lo.Range(len(regions)), func(a, b int) bool {
		return g.distanceTo(regions[a].outer) < g.distanceTo(regions[b].outer)
	})
}

// byDistance orders contours greedily, each next one nearest to the end of the
// previous. The tool position is not moved.
func (g *Generator) byDistance(cs []contour.Contour) []contour.Contour {
	saved := g.pos
	defer func() { g.pos = saved }()

	remaining := append([]contour.Contour(nil), cs...)
	out := make([]contour.Contour, 0, len(cs))
	for len(remaining) > 0 {
		i := lo.MinBy(lo.Range(len(remaining)), func(a, b int) bool {
			return g.distanceTo(remaining[a]) < g.distanceTo(remaining[b])
		})
		c := remaining[i]
		out = append(out, c)
		if j := contour.NearestVertex(c, g.pos); j >= 0 {
			g.pos = c[j]
		}
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return out
}

// cutOuter cuts the boundary of a region and, when pocketing, the rings inside
// it.
func (g *Generator) cutOuter(z float64, r region) {
	inside := g.opts.Side == SideInside || g.opts.Operation == OpPocket
	var d float64
	switch {
	case inside:
		d = -g.opts.ToolRadius()
	case g.opts.Side == SideOutside:
		d = g.opts.ToolRadius()
	}

	path, ok := g.offset(r.outer, d)
	if !ok {
		g.warn("z=%.3f: contour collapses under a %.3f mm tool offset; skipped", z, math.Abs(d))
		return
	}
	g.cutContour(z, path, g.opts.clockwise(inside))

	if g.opts.Operation != OpPocket {
		return
	}

	keepOut := lo.Map(r.islands, func(isl contour.Contour, _ int) contour.Bounds2 {
		return contour.Bounds(isl).Expand(g.opts.ToolRadius())
	})
	for k := 1; ; k++ {
		ring, ok := g.offset(r.outer, d-float64(k)*g.opts.StepOver)
		if !ok {
			break
		}
		if !lo.EveryBy(keepOut, func(b contour.Bounds2) bool { return clearOf(ring, b) }) {
			break
		}
		g.cutContour(z, ring, g.opts.clockwise(true))
	}
}

// clearOf reports whether ring passes around box without touching it.
func clearOf(ring contour.Contour, box contour.Bounds2) bool {
	corners := []contour.Point{
		{X: box.MinX, Y: box.MinY}, {X: box.MaxX, Y: box.MinY},
		{X: box.MaxX, Y: box.MaxY}, {X: box.MinX, Y: box.MaxY},
	}
	for _, c := range corners {
		if !contour.Contains(ring, c) {
			return false
		}
	}
	return !lo.ContainsBy(ring, box.ContainsPoint)
}

// cutIsland cuts around a hole. Islands are always offset outward so the tool
// stays clear of them.
func (g *Generator) cutIsland(z float64, isl contour.Contour) {
	path, ok := g.offset(isl, g.opts.ToolRadius())
	if !ok {
		g.warn("z=%.3f: island contour is degenerate; skipped", z)
		return
	}
	g.cutContour(z, path, g.opts.clockwise(false))
}

// offset applies a signed offset and reports whether a usable contour is left.
// An inward offset has collapsed once the contour turns inside out or any
// edge runs backwards compared to its source edge.
func (g *Generator) offset(c contour.Contour, d float64) (contour.Contour, bool) {
	src := contour.Dedup(c)
	if len(src) < 3 || contour.Area(src) < contour.Epsilon {
		return nil, false
	}
	out := contour.Offset(src, d)
	if len(out) < 3 {
		return nil, false
	}
	if d < 0 && collapsed(src, out) {
		return nil, false
	}
	return out, true
}

func collapsed(src, out contour.Contour) bool {
	if contour.IsClockwise(out) != contour.IsClockwise(src) || contour.Area(out) < contour.Epsilon {
		return true
	}
	n := len(src)
	for i := range src {
		a := src[(i+1)%n].Sub(src[i])
		b := out[(i+1)%n].Sub(out[i])
		if a.Dot(b) <= 0 {
			return true
		}
	}
	return false
}

// cutContour emits the entry, the closed loop and the retract for one path.
func (g *Generator) cutContour(z float64, path contour.Contour, cw bool) {
	path = contour.Orient(path, cw)
	path = contour.Rotate(path, contour.NearestVertex(path, g.pos))
	entry := path[0]

	first := len(g.points) == 0
	if first {
		g.add(Point{X: entry.X, Y: entry.Y, Z: g.opts.ClearanceZ, Motion: Rapid, Kind: KindTravel})
	}
	if !first || g.opts.ClearanceZ > g.opts.SafeZ {
		g.add(Point{X: entry.X, Y: entry.Y, Z: g.opts.SafeZ, Motion: Rapid, Kind: KindTravel})
	}

	cut := func(p contour.Point) {
		g.add(Point{X: p.X, Y: p.Y, Z: z, Motion: Linear, Feed: g.opts.FeedRate, Kind: KindCut})
	}

	if g.opts.Entry == EntryRamp {
		// Descend along the first edge, then run the full loop so the
		// first edge is also cut at depth.
		rampTop := math.Min(z+math.Max(g.opts.StepDown, 0), g.opts.SafeZ)
		g.add(Point{X: entry.X, Y: entry.Y, Z: rampTop, Motion: Linear, Feed: g.opts.PlungeRate, Kind: KindPlunge})
		g.add(Point{X: path[1].X, Y: path[1].Y, Z: z, Motion: Linear, Feed: g.opts.PlungeRate, Kind: KindRamp})
		for _, p := range path[2:] {
			cut(p)
		}
		cut(path[0])
		cut(path[1])
		g.pos = path[1]
	} else {
		g.add(Point{X: entry.X, Y: entry.Y, Z: z, Motion: Linear, Feed: g.opts.PlungeRate, Kind: KindPlunge})
		for _, p := range path[1:] {
			cut(p)
		}
		cut(entry)
		g.pos = entry
	}

	g.add(Point{X: g.pos.X, Y: g.pos.Y, Z: g.opts.SafeZ, Motion: Rapid, Kind: KindRetract})
	g.contours++
}
