package zlevel

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/millpath/pkg/bounds"
	"github.com/chazu/millpath/pkg/component"
)

func boxZ(lo, hi float64) bounds.BoundingBox {
	return bounds.New(component.Vec3{X: -1, Y: -1, Z: lo}, component.Vec3{X: 1, Y: 1, Z: hi})
}

func ptr(v float64) *float64 { return &v }

func assertDecreasing(t *testing.T, levels []float64) {
	t.Helper()
	for i := 1; i < len(levels); i++ {
		if levels[i] >= levels[i-1] {
			t.Fatalf("levels not strictly decreasing at %d: %v", i, levels)
		}
	}
}

func TestCubeLevels(t *testing.T) {
	p := Compute(boxZ(-50, 50), Options{Step: 10, IncludeTop: true, IncludeBottom: true})
	if len(p.Levels) != 11 {
		t.Fatalf("len(Levels) = %d, want 11: %v", len(p.Levels), p.Levels)
	}
	if p.Levels[0] != 50 || p.Levels[10] != -50 {
		t.Errorf("Levels = %v, want 50 ... -50", p.Levels)
	}
	assertDecreasing(t, p.Levels)
	if len(p.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", p.Warnings)
	}
}

func TestCylinderLevelCount(t *testing.T) {
	tests := []struct {
		height, step float64
	}{
		{20, 5}, {20, 3}, {7.5, 2.5}, {1, 0.3}, {100, 7}, {0.5, 1},
	}
	for _, tt := range tests {
		p := Compute(boxZ(0, tt.height), Options{Step: tt.step, IncludeTop: true, IncludeBottom: true})
		want := int(math.Ceil(tt.height/tt.step)) + 1
		if len(p.Levels) != want {
			t.Errorf("H=%v S=%v: %d levels, want %d (%v)", tt.height, tt.step, len(p.Levels), want, p.Levels)
		}
		assertDecreasing(t, p.Levels)
	}
}

func TestInclusionFlags(t *testing.T) {
	tests := []struct {
		name        string
		top, bottom bool
		want        []float64
	}{
		{"both", true, true, []float64{10, 5, 0}},
		{"top only", true, false, []float64{10, 5}},
		{"bottom only", false, true, []float64{5, 0}},
		{"neither", false, false, []float64{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compute(boxZ(0, 10), Options{Step: 5, IncludeTop: tt.top, IncludeBottom: tt.bottom})
			if len(p.Levels) != len(tt.want) {
				t.Fatalf("Levels = %v, want %v", p.Levels, tt.want)
			}
			for i := range tt.want {
				if p.Levels[i] != tt.want[i] {
					t.Errorf("Levels = %v, want %v", p.Levels, tt.want)
				}
			}
		})
	}
}

func TestOverridesAndDepthCap(t *testing.T) {
	box := boxZ(-20, 20)

	p := Compute(box, Options{Step: 5, IncludeTop: true, IncludeBottom: true, ZStart: ptr(10), ZEnd: ptr(0)})
	if got := p.Levels; len(got) != 3 || got[0] != 10 || got[2] != 0 {
		t.Errorf("override levels = %v, want [10 5 0]", got)
	}

	p = Compute(box, Options{Step: 4, IncludeTop: true, IncludeBottom: true, MaxDepth: 6})
	if got := p.Levels; len(got) != 3 || got[0] != 20 || got[2] != 14 {
		t.Errorf("depth-capped levels = %v, want [20 16 14]", got)
	}
	if p.Bottom != 14 {
		t.Errorf("Bottom = %v, want 14", p.Bottom)
	}

	p = Compute(box, Options{Step: 5, ZStart: ptr(0), ZEnd: ptr(10)})
	if len(p.Levels) != 0 || len(p.Warnings) == 0 {
		t.Errorf("inverted range: levels %v warnings %v", p.Levels, p.Warnings)
	}
}

func TestNonPositiveStep(t *testing.T) {
	for _, step := range []float64{0, -1} {
		p := Compute(boxZ(0, 10), Options{Step: step, IncludeTop: true, IncludeBottom: true})
		if len(p.Levels) != 0 {
			t.Errorf("step %v: Levels = %v, want none", step, p.Levels)
		}
		if len(p.Warnings) != 1 {
			t.Errorf("step %v: Warnings = %v, want one", step, p.Warnings)
		}
	}
}

func TestLevelCap(t *testing.T) {
	p := Compute(boxZ(0, 1e6), Options{Step: 0.001, IncludeTop: true, IncludeBottom: true})
	if len(p.Levels) != DefaultMaxLevels {
		t.Fatalf("len(Levels) = %d, want %d", len(p.Levels), DefaultMaxLevels)
	}
	if !p.Truncated {
		t.Error("Truncated = false")
	}
	if len(p.Warnings) != 1 || !strings.Contains(p.Warnings[0], "capped") {
		t.Errorf("Warnings = %v", p.Warnings)
	}

	p = Compute(boxZ(0, 100), Options{Step: 1, IncludeTop: true, IncludeBottom: true, MaxLevels: 10})
	if len(p.Levels) != 10 || !p.Truncated {
		t.Errorf("custom cap: %d levels, truncated=%v", len(p.Levels), p.Truncated)
	}
}

func TestFlatBox(t *testing.T) {
	p := Compute(boxZ(3, 3), Options{Step: 1, IncludeTop: true, IncludeBottom: true})
	if len(p.Levels) != 1 || p.Levels[0] != 3 {
		t.Errorf("Levels = %v, want [3]", p.Levels)
	}
}
