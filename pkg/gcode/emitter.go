package gcode

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/millpath/pkg/toolpath"
)

// Emitter serializes toolpath points. Motion, axis and feed words are modal:
// a word is written only when its value differs from the last one written,
// and a line left without any coordinate is dropped.
type Emitter struct {
	cfg   Config
	safeZ float64

	lines  []string
	lineNo int

	motion  string
	x, y, z string
	feed    string
}

// NewEmitter returns an emitter for cfg. safeZ is the absolute height used by
// the header and footer retracts.
func NewEmitter(cfg Config, safeZ float64) *Emitter {
	if cfg.DecimalPlaces <= 0 {
		cfg.DecimalPlaces = 3
	}
	return &Emitter{cfg: cfg, safeZ: safeZ}
}

// Emit returns the complete program for points.
func (e *Emitter) Emit(points []toolpath.Point) string {
	var b strings.Builder
	// strings.Builder never fails.
	_ = e.Write(&b, points)
	return b.String()
}

// Write writes the complete program for points to w.
func (e *Emitter) Write(w io.Writer, points []toolpath.Point) error {
	e.reset()
	e.header(len(points))
	for _, p := range points {
		e.point(p)
	}
	e.footer()

	for _, l := range e.lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) reset() {
	e.lines = e.lines[:0]
	e.lineNo = 0
	e.motion, e.x, e.y, e.z, e.feed = "", "", "", "", ""
}

func (e *Emitter) comment(format string, args ...any) {
	if !e.cfg.Comments {
		return
	}
	e.lines = append(e.lines, "("+fmt.Sprintf(format, args...)+")")
}

func (e *Emitter) line(words ...string) {
	l := strings.Join(words, " ")
	if e.cfg.LineNumbers {
		e.lineNo += 10
		l = "N" + strconv.Itoa(e.lineNo) + " " + l
	}
	e.lines = append(e.lines, l)
}

func (e *Emitter) header(n int) {
	c := e.cfg
	name := c.ProgramName
	if name == "" {
		name = "millpath"
	}
	e.comment("%s", name)
	e.comment("tool %s mm, %s, %s side, %s", e.num(c.ToolDiameter), c.Operation, c.OffsetSide, c.CutDirection)
	e.comment("feed %s, plunge %s, step-down %s, %d moves", e.num(c.FeedRate), e.num(c.PlungeRate), e.num(c.StepDown), n)

	e.line("G90")
	e.line("G21")
	e.line("G17")
	if c.WorkOffset != "" {
		e.line(c.WorkOffset)
	}
	if c.SpindleSpeed > 0 {
		e.line("M3", "S"+e.num(c.SpindleSpeed))
	}
	if c.Coolant {
		e.line("M8")
	}
	if c.Mist {
		e.line("M7")
	}
	e.motion = "G0"
	e.z = e.num(e.safeZ)
	e.line("G0", "Z"+e.z)
}

func (e *Emitter) point(p toolpath.Point) {
	var words []string
	if x := e.num(p.X); x != e.x {
		words = append(words, "X"+x)
		e.x = x
	}
	if y := e.num(p.Y); y != e.y {
		words = append(words, "Y"+y)
		e.y = y
	}
	if z := e.num(p.Z); z != e.z {
		words = append(words, "Z"+z)
		e.z = z
	}
	if len(words) == 0 {
		return
	}

	motion := "G1"
	if p.Motion == toolpath.Rapid {
		motion = "G0"
	}
	if motion != e.motion {
		words = append([]string{motion}, words...)
		e.motion = motion
	}

	if motion == "G1" {
		feed := p.Feed
		if feed <= 0 {
			feed = e.cfg.FeedRate
		}
		if f := e.num(feed); f != e.feed {
			words = append(words, "F"+f)
			e.feed = f
		}
	}
	e.line(words...)
}

func (e *Emitter) footer() {
	e.comment("end")
	e.line("G0", "Z"+e.num(e.safeZ))
	if e.cfg.Coolant || e.cfg.Mist {
		e.line("M9")
	}
	e.line("M5")
	e.line("M30")
}

// num formats v with the configured precision, trimming trailing zeros.
func (e *Emitter) num(v float64) string {
	s := strconv.FormatFloat(v, 'f', e.cfg.DecimalPlaces, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Generate is shorthand for NewEmitter(cfg, safeZ).Emit(points).
func Generate(cfg Config, safeZ float64, points []toolpath.Point) string {
	return NewEmitter(cfg, safeZ).Emit(points)
}
