// Package zlevel plans the Z heights at which a part is sliced.
package zlevel

import (
	"fmt"
	"math"

	"github.com/chazu/millpath/pkg/bounds"
)

// DefaultMaxLevels caps the number of levels a plan may contain.
const DefaultMaxLevels = 1000

const eps = 1e-6

// Options controls level placement.
type Options struct {
	Step          float64  // vertical distance between levels, must be > 0
	IncludeTop    bool     // emit a level exactly at the top
	IncludeBottom bool     // emit a level exactly at the bottom
	ZStart        *float64 // overrides the top of the box
	ZEnd          *float64 // overrides the bottom of the box
	MaxDepth      float64  // limits how far below the top to go; 0 = unlimited
	MaxLevels     int      // 0 = DefaultMaxLevels
}

// Plan is the ordered list of Z heights to slice, highest first.
type Plan struct {
	Levels    []float64
	Top       float64
	Bottom    float64
	Truncated bool
	Warnings  []string
}

// Compute plans levels for box. The result is strictly decreasing and never
// longer than MaxLevels; hitting the cap adds a warning instead of running
// on.
func Compute(box bounds.BoundingBox, opts Options) Plan {
	top, bottom := box.Max.Z, box.Min.Z
	if opts.ZStart != nil {
		top = *opts.ZStart
	}
	if opts.ZEnd != nil {
		bottom = *opts.ZEnd
	}
	if opts.MaxDepth > 0 && top-opts.MaxDepth > bottom {
		bottom = top - opts.MaxDepth
	}

	p := Plan{Levels: []float64{}, Top: top, Bottom: bottom}

	if opts.Step <= 0 || math.IsNaN(opts.Step) {
		p.Warnings = append(p.Warnings, fmt.Sprintf("step %.4f is not positive; no Z levels planned", opts.Step))
		return p
	}
	if bottom > top+eps {
		p.Warnings = append(p.Warnings, fmt.Sprintf("bottom %.3f lies above top %.3f; no Z levels planned", bottom, top))
		return p
	}

	maxLevels := opts.MaxLevels
	if maxLevels <= 0 {
		maxLevels = DefaultMaxLevels
	}

	i := 1
	if opts.IncludeTop {
		i = 0
	}
	for ; ; i++ {
		z := round(top - float64(i)*opts.Step)
		if z <= bottom+eps {
			break
		}
		if len(p.Levels) == maxLevels {
			p.truncate(maxLevels)
			return p
		}
		p.Levels = append(p.Levels, z)
	}

	if opts.IncludeBottom {
		last := math.Inf(1)
		if n := len(p.Levels); n > 0 {
			last = p.Levels[n-1]
		}
		if last-bottom > eps {
			if len(p.Levels) == maxLevels {
				p.truncate(maxLevels)
				return p
			}
			p.Levels = append(p.Levels, round(bottom))
		}
	}
	return p
}

func (p *Plan) truncate(n int) {
	p.Truncated = true
	p.Warnings = append(p.Warnings, fmt.Sprintf("Z level count capped at %d; part below %.3f is not sliced", n, p.Levels[n-1]))
}

// round trims floating point noise from accumulated steps.
func round(z float64) float64 {
	return math.Round(z*1e6) / 1e6
}
