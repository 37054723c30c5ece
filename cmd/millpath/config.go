package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chazu/millpath/pkg/gcode"
)

// envPrefix namespaces environment overrides, e.g. MILLPATH_FEED_RATE.
const envPrefix = "MILLPATH"

// machineFlags maps command-line flags onto configuration keys.
var machineFlags = map[string]string{
	"tool-diameter": "tool_diameter",
	"spindle-speed": "spindle_speed",
	"feed-rate":     "feed_rate",
	"plunge-rate":   "plunge_rate",
	"operation":     "operation",
	"total-depth":   "total_depth",
	"step-down":     "step_down",
	"step-over":     "step_over",
	"direction":     "cut_direction",
	"side":          "offset_side",
	"safe-height":   "safe_height",
	"work-offset":   "work_offset",
	"line-numbers":  "line_numbers",
	"coolant":       "coolant",
}

// addMachineFlags registers the machining overrides on fs. Defaults come
// from gcode.DefaultConfig so the help text shows real values.
func addMachineFlags(fs *pflag.FlagSet) {
	d := gcode.DefaultConfig()
	fs.Float64("tool-diameter", d.ToolDiameter, "cutter diameter in mm")
	fs.Float64("spindle-speed", d.SpindleSpeed, "spindle speed in RPM, 0 to omit M3")
	fs.Float64("feed-rate", d.FeedRate, "cutting feed in mm/min")
	fs.Float64("plunge-rate", d.PlungeRate, "plunge feed in mm/min")
	fs.String("operation", d.Operation, "profile or pocket")
	fs.Float64("total-depth", d.TotalDepth, "maximum depth below the top in mm, 0 for the whole part")
	fs.Float64("step-down", d.StepDown, "depth per pass in mm")
	fs.String("step-over", d.StepOver, `pocket step-over in mm or as a percentage of the tool, e.g. "40%"`)
	fs.String("direction", d.CutDirection, "climb or conventional")
	fs.String("side", d.OffsetSide, "outside, inside or on")
	fs.Float64("safe-height", d.SafeHeight, "rapid height above the part top in mm")
	fs.String("work-offset", d.WorkOffset, "work coordinate system, e.g. G54")
	fs.Bool("line-numbers", d.LineNumbers, "number G-code lines")
	fs.Bool("coolant", d.Coolant, "turn flood coolant on with M8")
}

// loadConfig layers defaults, the optional config file, MILLPATH_*
// environment variables and explicitly set flags, in increasing priority.
func loadConfig(path string, fs *pflag.FlagSet) (gcode.Config, error) {
	v := viper.New()
	for key, val := range defaults(gcode.DefaultConfig()) {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return gcode.Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	for flag, key := range machineFlags {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return gcode.Config{}, errors.Wrapf(err, "bind flag --%s", flag)
		}
	}

	var cfg gcode.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return gcode.Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// defaults lists every configuration key so AutomaticEnv can find them.
func defaults(c gcode.Config) map[string]any {
	return map[string]any{
		"tool_diameter":    c.ToolDiameter,
		"spindle_speed":    c.SpindleSpeed,
		"feed_rate":        c.FeedRate,
		"plunge_rate":      c.PlungeRate,
		"operation":        c.Operation,
		"total_depth":      c.TotalDepth,
		"step_down":        c.StepDown,
		"step_over":        c.StepOver,
		"cut_direction":    c.CutDirection,
		"offset_side":      c.OffsetSide,
		"entry_strategy":   c.EntryStrategy,
		"exit_strategy":    c.ExitStrategy,
		"safe_height":      c.SafeHeight,
		"clearance_height": c.ClearanceHeight,
		"work_offset":      c.WorkOffset,
		"coolant":          c.Coolant,
		"mist":             c.Mist,
		"line_numbers":     c.LineNumbers,
		"comments":         c.Comments,
		"decimal_places":   c.DecimalPlaces,
		"program_name":     c.ProgramName,
	}
}
