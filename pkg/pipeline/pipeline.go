// Package pipeline runs a component tree through every stage, from bounds to
// G-code, and gathers the diagnostics into one Result.
package pipeline

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/samber/lo"

	"github.com/chazu/millpath/pkg/bounds"
	"github.com/chazu/millpath/pkg/component"
	"github.com/chazu/millpath/pkg/contour"
	"github.com/chazu/millpath/pkg/gcode"
	"github.com/chazu/millpath/pkg/kernel"
	"github.com/chazu/millpath/pkg/kernel/sdfx"
	"github.com/chazu/millpath/pkg/slicer"
	"github.com/chazu/millpath/pkg/tessellate"
	"github.com/chazu/millpath/pkg/toolpath"
	"github.com/chazu/millpath/pkg/zlevel"
)

// DefaultSimplifyTolerance is the Douglas-Peucker tolerance in millimeters.
const DefaultSimplifyTolerance = 0.01

// boundsTolerance is the slack allowed when the kernel box is compared with
// the analytic one.
const boundsTolerance = 1e-3

// Options tunes a run. Start from DefaultOptions; the zero value slices
// neither the top nor the bottom of the part.
type Options struct {
	Resolution        float64 // circle segments per mm of circumference; 0 = slicer default
	SimplifyTolerance float64 // 0 = DefaultSimplifyTolerance, negative disables
	IncludeTop        bool
	IncludeBottom     bool
	MaxLevels         int  // 0 = zlevel.DefaultMaxLevels
	VerifyBounds      bool // cross-check analytic bounds against the kernel
	PreviewMesh       bool // tessellate every leaf for display

	// Kernel backs VerifyBounds and PreviewMesh. Nil selects sdfx.
	Kernel kernel.Kernel
}

// DefaultOptions slices from the top face down to the bottom face.
func DefaultOptions() Options {
	return Options{
		Resolution:        slicer.DefaultResolution,
		SimplifyTolerance: DefaultSimplifyTolerance,
		IncludeTop:        true,
		IncludeBottom:     true,
	}
}

// Pipeline holds a validated configuration. It keeps no state between runs.
type Pipeline struct {
	cfg  gcode.Config
	opts Options
}

// New normalizes cfg and returns a pipeline. Configuration errors are
// reported here rather than on Run; they wrap gcode.ErrInvalidConfig.
func New(cfg gcode.Config, opts Options) (*Pipeline, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if opts.SimplifyTolerance == 0 {
		opts.SimplifyTolerance = DefaultSimplifyTolerance
	}
	if opts.Kernel == nil && (opts.VerifyBounds || opts.PreviewMesh) {
		opts.Kernel = sdfx.New()
	}
	return &Pipeline{cfg: cfg, opts: opts}, nil
}

// Config returns the normalized configuration.
func (p *Pipeline) Config() gcode.Config {
	return p.cfg
}

// Run takes d through every stage. It never panics: failures, including
// recovered panics, produce an empty result with Errors set.
func (p *Pipeline) Run(d *component.Descriptor) (res Result) {
	log := Logger()
	start := time.Now()

	var warnings []string
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic", "panic", r, "stack", string(debug.Stack()))
			res = failed(warnings, fmt.Sprintf("internal error: %v", r))
		}
		res.Warnings = lo.Uniq(res.Warnings)
	}()

	if d == nil {
		return failed(nil, "no component to machine")
	}

	v := component.Validate(d)
	warnings = append(warnings, v.WarningStrings()...)
	if !v.OK() {
		return failed(warnings, lo.Map(v.Errors, func(e component.ValidationError, _ int) string {
			return e.Error()
		})...)
	}

	box, err := bounds.Compute(d)
	if err != nil {
		return failed(warnings, fmt.Sprintf("bounds: %v", err))
	}
	log.Debug("bounds computed", "min", box.Min, "max", box.Max)

	if p.opts.VerifyBounds {
		warnings = append(warnings, p.verifyBounds(d, box)...)
	}

	plan := zlevel.Compute(box, zlevel.Options{
		Step:          p.cfg.StepDown,
		IncludeTop:    p.opts.IncludeTop,
		IncludeBottom: p.opts.IncludeBottom,
		MaxDepth:      p.cfg.TotalDepth,
		MaxLevels:     p.opts.MaxLevels,
	})
	warnings = append(warnings, plan.Warnings...)
	if len(plan.Levels) == 0 {
		return failed(warnings, fmt.Sprintf("no Z levels between %.3f and %.3f", plan.Top, plan.Bottom))
	}
	log.Debug("levels planned", "count", len(plan.Levels), "top", plan.Top, "bottom", plan.Bottom)

	slices, w := slicer.New(p.opts.Resolution).SliceAll(d, plan.Levels)
	warnings = append(warnings, w...)
	slices = lo.Map(slices, func(s slicer.Slice, _ int) slicer.Slice {
		return p.simplify(s)
	})
	log.Debug("sliced", "slices", len(slices))

	gen, err := toolpath.NewGenerator(p.cfg.ToolpathOptions(plan.Top))
	if err != nil {
		return failed(warnings, fmt.Sprintf("toolpath: %v", err))
	}
	tp := gen.Generate(slices)
	warnings = append(warnings, tp.Warnings...)
	if len(tp.Points) == 0 {
		warnings = append(warnings, "no contours to cut; toolpath is empty")
	}

	res = emptyResult()
	res.Toolpath = tp.Points
	res.Contours = tp.Contours
	res.Levels = plan.Levels
	res.Slices = slices
	res.Bounds = box
	res.Stats = toolpath.ComputeStats(tp.Points, p.cfg.FeedRate)
	res.Gcode = gcode.Generate(p.cfg, plan.Top+p.cfg.SafeHeight, tp.Points)

	if p.opts.PreviewMesh {
		mesh, err := tessellate.Tessellate(d, p.opts.Kernel)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("preview mesh: %v", err))
		} else {
			res.Meshes = mesh.Meshes
			warnings = append(warnings, mesh.Warnings...)
		}
	}

	res.Warnings = append(res.Warnings, warnings...)
	log.Info("pipeline run",
		slog.String("component", d.Label()),
		slog.Int("levels", len(res.Levels)),
		slog.Int("contours", res.Contours),
		slog.Int("points", len(res.Toolpath)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res
}

// simplify reduces every contour of s, keeping the original wherever the
// simplified one would drop below three points.
func (p *Pipeline) simplify(s slicer.Slice) slicer.Slice {
	tol := p.opts.SimplifyTolerance
	if tol <= 0 {
		return s
	}
	reduce := func(c contour.Contour, _ int) contour.Contour {
		if out := contour.Simplify(c, tol); len(out) >= 3 {
			return out
		}
		return c
	}
	s.Contours = lo.Map(s.Contours, reduce)
	s.Islands = lo.Map(s.Islands, reduce)
	return s
}

// verifyBounds compares the analytic box with the kernel's. Disagreement is a
// warning; the analytic box is still used.
func (p *Pipeline) verifyBounds(d *component.Descriptor, box bounds.BoundingBox) []string {
	solid, err := kernel.Build(p.opts.Kernel, d)
	if err != nil {
		return []string{fmt.Sprintf("bounds cross-check skipped: %v", err)}
	}
	lo3, hi3 := solid.BoundingBox()
	kb := bounds.New(
		component.Vec3{X: lo3[0], Y: lo3[1], Z: lo3[2]},
		component.Vec3{X: hi3[0], Y: hi3[1], Z: hi3[2]},
	)
	if !kb.Contains(box, boundsTolerance) {
		return []string{fmt.Sprintf("kernel bounds %v..%v do not contain computed bounds %v..%v",
			kb.Min, kb.Max, box.Min, box.Max)}
	}
	Logger().Debug("bounds verified", "kernelMin", kb.Min, "kernelMax", kb.Max)
	return nil
}
