package main

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/chazu/millpath/pkg/bounds"
	"github.com/chazu/millpath/pkg/component"
	"github.com/chazu/millpath/pkg/engine"
	"github.com/chazu/millpath/pkg/gcode"
	"github.com/chazu/millpath/pkg/kernel"
	"github.com/chazu/millpath/pkg/kernel/sdfx"
	"github.com/chazu/millpath/pkg/pipeline"
	"github.com/chazu/millpath/pkg/slicer"
	"github.com/chazu/millpath/pkg/tessellate"
	"github.com/chazu/millpath/pkg/toolpath"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Part     string    `json:"part"`
	Color    string    `json:"color"`
}

// MessageData is a JSON-serializable error or warning for the frontend.
// Line is 0 when the message does not point into the editor source.
type MessageData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the preview returned while the user edits DSL source.
type EvalResult struct {
	Meshes   []MeshData    `json:"meshes"`
	Errors   []MessageData `json:"errors"`
	Warnings []MessageData `json:"warnings"`
}

// GenerateRequest asks for a toolpath. Exactly one of Source (part DSL) and
// Component (descriptor JSON) should be set; Source wins when both are.
type GenerateRequest struct {
	Source       string          `json:"source"`
	Component    json.RawMessage `json:"component"`
	Config       *gcode.Config   `json:"config"` // nil selects gcode.DefaultConfig
	VerifyBounds bool            `json:"verifyBounds"`
	PreviewMesh  bool            `json:"previewMesh"`
}

// GenerateResult is the JSON form of a pipeline run. Slices are never nil.
type GenerateResult struct {
	Gcode    string             `json:"gcode"`
	Toolpath []toolpath.Point   `json:"toolpath"`
	Levels   []float64          `json:"levels"`
	Slices   []slicer.Slice     `json:"slices"`
	Bounds   bounds.BoundingBox `json:"bounds"`
	Stats    toolpath.Stats     `json:"stats"`
	Meshes   []MeshData         `json:"meshes"`
	Errors   []MessageData      `json:"errors"`
	Warnings []MessageData      `json:"warnings"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// DefaultConfig returns the machining defaults for the settings panel.
func (a *App) DefaultConfig() gcode.Config {
	return gcode.DefaultConfig()
}

// Evaluate takes DSL source and returns one preview mesh per primitive.
// This is the binding the editor calls on every change.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []MessageData{},
		Warnings: []MessageData{},
	}

	root, ok := a.evaluate(source, &result.Errors, &result.Warnings)
	if !ok || root == nil {
		return result
	}

	if v := component.Validate(root); !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, MessageData{Message: e.Error()})
		}
		return result
	}

	tess, err := tessellate.Tessellate(root, a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, MessageData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	for _, w := range tess.Warnings {
		result.Warnings = append(result.Warnings, MessageData{Message: w})
	}
	result.Meshes = meshData(tess.Meshes)
	return result
}

// Generate runs the machining pipeline on a DSL program or a descriptor and
// returns the toolpath, its G-code and the intermediate slices.
func (a *App) Generate(req GenerateRequest) GenerateResult {
	result := GenerateResult{
		Toolpath: []toolpath.Point{},
		Levels:   []float64{},
		Slices:   []slicer.Slice{},
		Meshes:   []MeshData{},
		Errors:   []MessageData{},
		Warnings: []MessageData{},
	}

	var root *component.Descriptor
	switch {
	case strings.TrimSpace(req.Source) != "":
		d, ok := a.evaluate(req.Source, &result.Errors, &result.Warnings)
		if !ok {
			return result
		}
		root = d
	case len(req.Component) > 0 && string(req.Component) != "null":
		d, err := component.Decode(req.Component)
		if err != nil {
			result.Errors = append(result.Errors, MessageData{Message: err.Error()})
			return result
		}
		root = d
	}
	if root == nil {
		result.Errors = append(result.Errors, MessageData{Message: "nothing to machine: provide DSL source or a component"})
		return result
	}

	cfg := gcode.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	opts := pipeline.DefaultOptions()
	opts.VerifyBounds = req.VerifyBounds
	opts.PreviewMesh = req.PreviewMesh
	opts.Kernel = a.kernel

	p, err := pipeline.New(cfg, opts)
	if err != nil {
		result.Errors = append(result.Errors, MessageData{Message: err.Error()})
		return result
	}

	res := p.Run(root)
	for _, e := range res.Errors {
		log.Printf("Generate error: %s", e)
		result.Errors = append(result.Errors, MessageData{Message: e})
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, MessageData{Message: w})
	}
	if !res.OK() {
		return result
	}

	result.Gcode = res.Gcode
	result.Toolpath = res.Toolpath
	result.Levels = res.Levels
	result.Slices = res.Slices
	result.Bounds = res.Bounds
	result.Stats = res.Stats
	result.Meshes = meshData(res.Meshes)
	return result
}

// evaluate runs source through the engine, appending diagnostics to errs and
// warnings. It reports false when evaluation failed.
func (a *App) evaluate(source string, errs, warnings *[]MessageData) (*component.Descriptor, bool) {
	res, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		*errs = append(*errs, MessageData{Message: err.Error()})
		return nil, false
	}
	for _, w := range res.Warnings {
		*warnings = append(*warnings, MessageData{Line: w.Line, Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			*errs = append(*errs, MessageData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, false
	}
	return res.Root, true
}

// meshData converts kernel meshes to the frontend format, coloring parts
// from the palette in order.
func meshData(meshes []*kernel.Mesh) []MeshData {
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Part:     m.Part,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out
}
