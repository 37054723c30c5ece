package toolpath

import "math"

// RapidFeed is the assumed traverse speed for rapid moves, in mm/min.
const RapidFeed = 5000.0

// Stats summarizes a toolpath.
type Stats struct {
	Points           int     `json:"points"`
	RapidDistance    float64 `json:"rapidDistance"`
	CutDistance      float64 `json:"cutDistance"`
	TotalDistance    float64 `json:"totalDistance"`
	EstimatedMinutes float64 `json:"estimatedMinutes"`
}

// ComputeStats measures travel and estimates machining time. Rapid moves run
// at RapidFeed; linear moves at their own feed, or defaultFeed when unset.
// The first point is taken as the starting position.
func ComputeStats(points []Point, defaultFeed float64) Stats {
	s := Stats{Points: len(points)}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		d := math.Sqrt((b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y) + (b.Z-a.Z)*(b.Z-a.Z))
		if b.Motion == Rapid {
			s.RapidDistance += d
			s.EstimatedMinutes += d / RapidFeed
			continue
		}
		feed := b.Feed
		if feed <= 0 {
			feed = defaultFeed
		}
		s.CutDistance += d
		if feed > 0 {
			s.EstimatedMinutes += d / feed
		}
	}
	s.TotalDistance = s.RapidDistance + s.CutDistance
	return s
}
