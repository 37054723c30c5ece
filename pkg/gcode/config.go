// Package gcode holds the machining configuration and serializes toolpaths
// into a generic ISO-style G-code dialect.
package gcode

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chazu/millpath/pkg/toolpath"
)

// ErrInvalidConfig is the cause of every configuration validation error.
var ErrInvalidConfig = errors.New("invalid gcode config")

// Config is the machining configuration. Lengths are in millimeters, feeds in
// mm/min. SafeHeight and ClearanceHeight are measured above the top of the
// part. StepOver is either an absolute distance ("2.5") or a percentage of
// the tool diameter ("40%"); Normalize resolves it into StepOverMM.
type Config struct {
	ToolDiameter    float64 `json:"toolDiameter" mapstructure:"tool_diameter" yaml:"tool_diameter"`
	SpindleSpeed    float64 `json:"spindleSpeed" mapstructure:"spindle_speed" yaml:"spindle_speed"`
	FeedRate        float64 `json:"feedRate" mapstructure:"feed_rate" yaml:"feed_rate"`
	PlungeRate      float64 `json:"plungeRate" mapstructure:"plunge_rate" yaml:"plunge_rate"`
	Operation       string  `json:"operation" mapstructure:"operation" yaml:"operation"`
	TotalDepth      float64 `json:"totalDepth" mapstructure:"total_depth" yaml:"total_depth"`
	StepDown        float64 `json:"stepDown" mapstructure:"step_down" yaml:"step_down"`
	StepOver        string  `json:"stepOver" mapstructure:"step_over" yaml:"step_over"`
	CutDirection    string  `json:"cutDirection" mapstructure:"cut_direction" yaml:"cut_direction"`
	OffsetSide      string  `json:"offsetSide" mapstructure:"offset_side" yaml:"offset_side"`
	EntryStrategy   string  `json:"entryStrategy" mapstructure:"entry_strategy" yaml:"entry_strategy"`
	ExitStrategy    string  `json:"exitStrategy" mapstructure:"exit_strategy" yaml:"exit_strategy"`
	SafeHeight      float64 `json:"safeHeight" mapstructure:"safe_height" yaml:"safe_height"`
	ClearanceHeight float64 `json:"clearanceHeight" mapstructure:"clearance_height" yaml:"clearance_height"`
	WorkOffset      string  `json:"workOffset" mapstructure:"work_offset" yaml:"work_offset"`
	Coolant         bool    `json:"coolant" mapstructure:"coolant" yaml:"coolant"`
	Mist            bool    `json:"mist" mapstructure:"mist" yaml:"mist"`
	LineNumbers     bool    `json:"lineNumbers" mapstructure:"line_numbers" yaml:"line_numbers"`
	Comments        bool    `json:"comments" mapstructure:"comments" yaml:"comments"`
	DecimalPlaces   int     `json:"decimalPlaces" mapstructure:"decimal_places" yaml:"decimal_places"`
	ProgramName     string  `json:"programName" mapstructure:"program_name" yaml:"program_name"`

	// StepOverMM is derived by Normalize.
	StepOverMM float64 `json:"stepOverMM" mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns a configuration for a 6 mm flat end mill in soft
// material.
func DefaultConfig() Config {
	return Config{
		ToolDiameter:    6,
		SpindleSpeed:    12000,
		FeedRate:        1000,
		PlungeRate:      300,
		Operation:       string(toolpath.OpProfile),
		StepDown:        1,
		StepOver:        "40%",
		CutDirection:    string(toolpath.Climb),
		OffsetSide:      string(toolpath.SideOutside),
		EntryStrategy:   string(toolpath.EntryPlunge),
		ExitStrategy:    "retract",
		SafeHeight:      5,
		ClearanceHeight: 10,
		WorkOffset:      "G54",
		Comments:        true,
		DecimalPlaces:   3,
		ProgramName:     "millpath",
	}
}

// Normalize validates c, fills empty choices with defaults and resolves the
// step-over. Every returned error has ErrInvalidConfig as its cause.
func (c *Config) Normalize() error {
	if c.ToolDiameter <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "tool diameter must be positive, got %g", c.ToolDiameter)
	}
	if c.StepDown <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "step-down must be positive, got %g", c.StepDown)
	}
	if c.FeedRate <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "feed rate must be positive, got %g", c.FeedRate)
	}
	if c.PlungeRate <= 0 {
		c.PlungeRate = c.FeedRate
	}
	if c.SpindleSpeed < 0 {
		return errors.Wrapf(ErrInvalidConfig, "spindle speed cannot be negative, got %g", c.SpindleSpeed)
	}
	if c.TotalDepth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "total depth cannot be negative, got %g", c.TotalDepth)
	}

	var err error
	if c.Operation, err = choice("operation", c.Operation, toolpath.OpProfile, toolpath.OpPocket); err != nil {
		return err
	}
	if c.CutDirection, err = choice("cut direction", c.CutDirection, toolpath.Climb, toolpath.Conventional); err != nil {
		return err
	}
	if c.OffsetSide, err = choice("offset side", c.OffsetSide, toolpath.SideOutside, toolpath.SideInside, toolpath.SideOn); err != nil {
		return err
	}
	if c.EntryStrategy, err = choice("entry strategy", c.EntryStrategy, toolpath.EntryPlunge, toolpath.EntryRamp); err != nil {
		return err
	}
	if c.ExitStrategy, err = choice("exit strategy", c.ExitStrategy, "retract"); err != nil {
		return err
	}

	if c.StepOverMM, err = ParseStepOver(c.StepOver, c.ToolDiameter); err != nil {
		return err
	}

	if c.ClearanceHeight < c.SafeHeight {
		c.ClearanceHeight = c.SafeHeight
	}
	if c.DecimalPlaces <= 0 {
		c.DecimalPlaces = 3
	}
	c.WorkOffset = strings.ToUpper(strings.TrimSpace(c.WorkOffset))
	return nil
}

// choice lower-cases v and checks it against the allowed values. An empty v
// selects the first allowed value.
func choice[T ~string](field, v string, allowed ...T) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return string(allowed[0]), nil
	}
	for _, a := range allowed {
		if v == string(a) {
			return v, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidConfig, "unknown %s %q", field, v)
}

// ParseStepOver resolves a step-over given as millimeters ("2.5") or as a
// percentage of the tool diameter ("40%"). An empty string means 40%.
func ParseStepOver(s string, toolDiameter float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "40%"
	}
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "step-over %q is not a number", s)
	}
	if pct {
		if v <= 0 || v > 100 {
			return 0, errors.Wrapf(ErrInvalidConfig, "step-over %q must be between 0%% and 100%%", s)
		}
		return toolDiameter * v / 100, nil
	}
	if v <= 0 {
		return 0, errors.Wrapf(ErrInvalidConfig, "step-over %q must be positive", s)
	}
	return v, nil
}

// ToolpathOptions converts a normalized config into generator options for a
// part whose top lies at topZ.
func (c Config) ToolpathOptions(topZ float64) toolpath.Options {
	return toolpath.Options{
		ToolDiameter: c.ToolDiameter,
		FeedRate:     c.FeedRate,
		PlungeRate:   c.PlungeRate,
		StepDown:     c.StepDown,
		StepOver:     c.StepOverMM,
		Operation:    toolpath.Operation(c.Operation),
		Direction:    toolpath.CutDirection(c.CutDirection),
		Side:         toolpath.Side(c.OffsetSide),
		Entry:        toolpath.Entry(c.EntryStrategy),
		SafeZ:        topZ + c.SafeHeight,
		ClearanceZ:   topZ + c.ClearanceHeight,
	}
}
