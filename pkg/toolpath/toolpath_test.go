package toolpath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/millpath/pkg/contour"
	"github.com/chazu/millpath/pkg/slicer"
)

func defaultTestOptions() Options {
	return Options{
		ToolDiameter: 2,
		FeedRate:     800,
		PlungeRate:   200,
		StepDown:     2,
		StepOver:     1.5,
		Operation:    OpProfile,
		Direction:    Climb,
		Side:         SideOutside,
		Entry:        EntryPlunge,
		SafeZ:        5,
		ClearanceZ:   10,
	}
}

func square(x, y, size float64) contour.Contour {
	return contour.Contour{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func slice(z float64, outers []contour.Contour, islands ...contour.Contour) slicer.Slice {
	if islands == nil {
		islands = []contour.Contour{}
	}
	return slicer.Slice{Z: z, Contours: outers, Islands: islands}
}

func generate(t *testing.T, opts Options, slices ...slicer.Slice) Result {
	t.Helper()
	g, err := NewGenerator(opts)
	require.NoError(t, err)
	res := g.Generate(slices)
	checkSequence(t, res.Points, opts)
	return res
}

// passes splits a toolpath into the cutting loops between plunge and retract.
func passes(points []Point) [][]Point {
	var out [][]Point
	var cur []Point
	for _, p := range points {
		switch p.Kind {
		case KindPlunge:
			cur = []Point{p}
		case KindRamp, KindCut:
			cur = append(cur, p)
		case KindRetract:
			if cur != nil {
				out = append(out, cur)
				cur = nil
			}
		}
	}
	return out
}

func loopOf(pass []Point) contour.Contour {
	var c contour.Contour
	for _, p := range pass {
		if p.Kind == KindCut {
			c = append(c, contour.Point{X: p.X, Y: p.Y})
		}
	}
	return c
}

// checkSequence asserts that every run into material starts with a rapid
// to safe height and a controlled plunge, and ends with a retract.
func checkSequence(t *testing.T, points []Point, opts Options) {
	t.Helper()
	inMaterial := false
	for i, p := range points {
		switch p.Kind {
		case KindPlunge:
			require.False(t, inMaterial, "plunge at %d while cutting", i)
			require.Greater(t, i, 0, "toolpath starts with a plunge")
			prev := points[i-1]
			assert.Equal(t, Rapid, prev.Motion, "move before plunge %d", i)
			assert.InDelta(t, opts.SafeZ, prev.Z, 1e-9, "move before plunge %d", i)
			assert.InDelta(t, prev.X, p.X, 1e-9)
			assert.InDelta(t, prev.Y, p.Y, 1e-9)
			assert.Equal(t, Linear, p.Motion)
			assert.Equal(t, opts.PlungeRate, p.Feed)
			inMaterial = true
		case KindCut, KindRamp:
			require.True(t, inMaterial, "cut at %d outside a plunge/retract pair", i)
			assert.Equal(t, Linear, p.Motion)
		case KindRetract:
			assert.Equal(t, Rapid, p.Motion)
			inMaterial = false
		case KindTravel:
			require.False(t, inMaterial, "travel at %d without retract", i)
			assert.Equal(t, Rapid, p.Motion)
		}
	}
	assert.False(t, inMaterial, "toolpath ends in material")
}

func TestGenerate_SingleSquareProfile(t *testing.T) {
	opts := defaultTestOptions()
	res := generate(t, opts, slice(-3, []contour.Contour{square(0, 0, 10)}))

	require.Len(t, res.Points, 9)
	assert.Equal(t, 1, res.Contours)
	assert.Empty(t, res.Warnings)

	first := res.Points[0]
	assert.Equal(t, KindTravel, first.Kind)
	assert.Equal(t, 10.0, first.Z, "first move goes to clearance height")

	last := res.Points[len(res.Points)-1]
	assert.Equal(t, KindRetract, last.Kind)
	assert.Equal(t, 10.0, last.Z)

	ps := passes(res.Points)
	require.Len(t, ps, 1)
	loop := loopOf(ps[0])
	// Outside offset by the tool radius: 12 x 12.
	assert.InDelta(t, 144, contour.Area(loop), 1e-9)
	assert.True(t, contour.IsClockwise(loop), "climb outside profile runs clockwise")
	for _, p := range ps[0] {
		assert.Equal(t, -3.0, p.Z)
	}
	// Entry is the vertex nearest the origin.
	assert.InDelta(t, -1, ps[0][0].X, 1e-9)
	assert.InDelta(t, -1, ps[0][0].Y, 1e-9)
}

func TestGenerate_SideAndDirection(t *testing.T) {
	tests := []struct {
		name      string
		side      Side
		direction CutDirection
		area      float64
		cw        bool
	}{
		{"outside climb", SideOutside, Climb, 144, true},
		{"outside conventional", SideOutside, Conventional, 144, false},
		{"inside climb", SideInside, Climb, 64, false},
		{"inside conventional", SideInside, Conventional, 64, true},
		{"on climb", SideOn, Climb, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultTestOptions()
			opts.Side = tt.side
			opts.Direction = tt.direction
			res := generate(t, opts, slice(0, []contour.Contour{square(0, 0, 10)}))
			ps := passes(res.Points)
			require.Len(t, ps, 1)
			loop := loopOf(ps[0])
			assert.InDelta(t, tt.area, contour.Area(loop), 1e-9)
			assert.Equal(t, tt.cw, contour.IsClockwise(loop))
		})
	}
}

func TestGenerate_CollapsedContourSkipped(t *testing.T) {
	opts := defaultTestOptions()
	opts.Side = SideInside
	opts.ToolDiameter = 6
	res := generate(t, opts, slice(0, []contour.Contour{square(0, 0, 4)}))
	assert.Empty(t, res.Points)
	assert.Equal(t, 0, res.Contours)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "collapses")
}

func TestGenerate_IslandsFollowOuterAndGrow(t *testing.T) {
	opts := defaultTestOptions()
	opts.Side = SideInside
	outer := slicer.Circle(contour.Point{}, 30, 1, false)
	island := slicer.Circle(contour.Point{}, 10, 1, true)
	res := generate(t, opts, slice(0, []contour.Contour{outer}, island))

	ps := passes(res.Points)
	require.Len(t, ps, 2)
	outerLoop, islandLoop := loopOf(ps[0]), loopOf(ps[1])
	assert.Greater(t, contour.Area(outerLoop), contour.Area(islandLoop), "outer contour is cut first")

	// The island grows by the tool radius even though the side is inside.
	for _, p := range islandLoop {
		assert.InDelta(t, 11, p.Len(), 0.02)
	}
	assert.True(t, contour.IsClockwise(islandLoop), "climb around an island runs clockwise")
}

func TestGenerate_IslandPairing(t *testing.T) {
	opts := defaultTestOptions()
	opts.Side = SideOn
	left := square(0, 0, 20)
	right := square(100, 0, 20)
	leftHole := square(5, 5, 4)
	rightHole := square(108, 8, 4)
	stray := square(300, 300, 2)

	res := generate(t, opts, slice(0, []contour.Contour{right, left}, rightHole, stray, leftHole))

	ps := passes(res.Points)
	require.Len(t, ps, 5)
	centroid := func(i int) contour.Point { return contour.Centroid(loopOf(ps[i])) }

	// Nearest region first: left square, then its hole, then right square and its hole.
	assert.InDelta(t, 10, centroid(0).X, 1e-9)
	assert.InDelta(t, 7, centroid(1).X, 1e-9)
	assert.InDelta(t, 110, centroid(2).X, 1e-9)
	assert.InDelta(t, 110, centroid(3).X, 1e-9)
	assert.InDelta(t, 301, centroid(4).X, 1e-9, "orphan island is cut last")

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "not enclosed")
}

func TestGenerate_NearestEntryAcrossLevels(t *testing.T) {
	opts := defaultTestOptions()
	opts.Side = SideOn
	sq := square(0, 0, 10)
	res := generate(t, opts, slice(0, []contour.Contour{sq}), slice(-2, []contour.Contour{sq}))

	ps := passes(res.Points)
	require.Len(t, ps, 2)
	// The second level starts where the first ended.
	assert.Equal(t, ps[0][len(ps[0])-1].X, ps[1][0].X)
	assert.Equal(t, ps[0][len(ps[0])-1].Y, ps[1][0].Y)
	assert.Equal(t, -2.0, ps[1][0].Z)
}

func TestGenerate_EmptySlices(t *testing.T) {
	res := generate(t, defaultTestOptions(), slice(0, []contour.Contour{}), slice(-1, nil))
	assert.Empty(t, res.Points)
	assert.NotNil(t, res.Points)
	assert.Equal(t, 0, res.Contours)
}

func TestGenerate_Ramp(t *testing.T) {
	opts := defaultTestOptions()
	opts.Entry = EntryRamp
	opts.Side = SideOn
	res := generate(t, opts, slice(-4, []contour.Contour{square(0, 0, 10)}))

	ps := passes(res.Points)
	require.Len(t, ps, 1)
	p := ps[0]
	require.Equal(t, KindPlunge, p[0].Kind)
	assert.Equal(t, -2.0, p[0].Z, "plunge stops one step-down above the level")
	require.Equal(t, KindRamp, p[1].Kind)
	assert.Equal(t, -4.0, p[1].Z)
	assert.Equal(t, opts.PlungeRate, p[1].Feed)

	// The ramp edge is cut again at full depth.
	last := p[len(p)-1]
	assert.Equal(t, p[1].X, last.X)
	assert.Equal(t, p[1].Y, last.Y)
	assert.Equal(t, KindCut, last.Kind)
}

func TestGenerate_Pocket(t *testing.T) {
	opts := defaultTestOptions()
	opts.Operation = OpPocket
	res := generate(t, opts, slice(0, []contour.Contour{square(0, 0, 20)}))

	// Boundary at 18 mm, then rings of 15, 12, 9, 6 and 3 mm.
	assert.Equal(t, 6, res.Contours)
	ps := passes(res.Points)
	require.Len(t, ps, 6)
	prev := math.Inf(1)
	for _, p := range ps {
		loop := loopOf(p)
		a := contour.Area(loop)
		assert.Less(t, a, prev, "rings shrink inward")
		assert.False(t, contour.IsClockwise(loop), "climb pocket runs counter-clockwise")
		prev = a
	}
}

func TestGenerate_PocketStopsAtIsland(t *testing.T) {
	opts := defaultTestOptions()
	opts.Operation = OpPocket
	island := contour.Reverse(square(8, 8, 4))
	res := generate(t, opts, slice(0, []contour.Contour{square(0, 0, 20)}, island))

	// Boundary, rings of 15, 12 and 9 mm, then the island. The 6 mm ring
	// (7..13) would touch the island's clearance box.
	assert.Equal(t, 5, res.Contours)
	ps := passes(res.Points)
	require.Len(t, ps, 5)
	assert.InDelta(t, 81, contour.Area(loopOf(ps[3])), 1e-9)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero tool", func(o *Options) { o.ToolDiameter = 0 }},
		{"negative feed", func(o *Options) { o.FeedRate = -1 }},
		{"zero plunge", func(o *Options) { o.PlungeRate = 0 }},
		{"pocket without step-over", func(o *Options) { o.Operation = OpPocket; o.StepOver = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultTestOptions()
			tt.modify(&opts)
			_, err := NewGenerator(opts)
			assert.Error(t, err)
		})
	}
}

func TestComputeStats(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Z: 10, Motion: Rapid, Kind: KindTravel},
		{X: 0, Y: 0, Z: 0, Motion: Rapid, Kind: KindTravel},
		{X: 0, Y: 0, Z: -5, Motion: Linear, Feed: 100, Kind: KindPlunge},
		{X: 300, Y: 0, Z: -5, Motion: Linear, Kind: KindCut},
		{X: 300, Y: 400, Z: -5, Motion: Linear, Feed: 800, Kind: KindCut},
		{X: 300, Y: 400, Z: 10, Motion: Rapid, Kind: KindRetract},
	}
	s := ComputeStats(points, 600)
	assert.Equal(t, 6, s.Points)
	assert.InDelta(t, 25, s.RapidDistance, 1e-9)
	assert.InDelta(t, 705, s.CutDistance, 1e-9)
	assert.InDelta(t, 730, s.TotalDistance, 1e-9)
	want := 25/RapidFeed + 5.0/100 + 300.0/600 + 400.0/800
	assert.InDelta(t, want, s.EstimatedMinutes, 1e-9)

	empty := ComputeStats(nil, 600)
	assert.Zero(t, empty.TotalDistance)
	assert.Zero(t, empty.EstimatedMinutes)
}
