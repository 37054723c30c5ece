package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/millpath/pkg/component"
	"github.com/chazu/millpath/pkg/engine"
	"github.com/chazu/millpath/pkg/export"
	"github.com/chazu/millpath/pkg/kernel"
	"github.com/chazu/millpath/pkg/kernel/manifold"
	"github.com/chazu/millpath/pkg/kernel/sdfx"
	"github.com/chazu/millpath/pkg/pipeline"
)

type generateOptions struct {
	input   string
	config  string
	out     string
	svg     string
	png     string
	pngSize int
	dxf     string
	stl     string
	verify  bool
	kernel  string
}

func newGenerateCmd() *cobra.Command {
	var o generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Slice a part and write its G-code",
		Long: `Generate reads a part, either a DSL program or descriptor JSON (.json),
slices it at every step-down and writes the G-code program.

Machining settings come from defaults, then --config, then MILLPATH_*
environment variables (MILLPATH_FEED_RATE=800), then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, o)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&o.input, "input", "i", "", "part file: DSL source, or descriptor JSON with a .json extension")
	fs.StringVarP(&o.config, "config", "c", "", "YAML, JSON or TOML machining config")
	fs.StringVarP(&o.out, "out", "o", "-", `G-code output file, "-" for stdout`)
	fs.StringVar(&o.svg, "svg", "", "write an SVG preview of slices and toolpath")
	fs.StringVar(&o.png, "png", "", "write a PNG preview of slices and toolpath")
	fs.IntVar(&o.pngSize, "png-size", export.DefaultPNGSize, "longer side of the PNG preview in pixels")
	fs.StringVar(&o.dxf, "dxf", "", "write the slice outlines as DXF, one layer per level")
	fs.StringVar(&o.stl, "stl", "", "write the tessellated part as binary STL")
	fs.BoolVar(&o.verify, "verify", false, "cross-check analytic bounds against the solid kernel")
	fs.StringVar(&o.kernel, "kernel", "sdfx", "solid kernel for --verify and --stl: sdfx or manifold")
	addMachineFlags(fs)
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runGenerate(cmd *cobra.Command, o generateOptions) error {
	cfg, err := loadConfig(o.config, cmd.Flags())
	if err != nil {
		return err
	}

	root, err := readPart(cmd.ErrOrStderr(), o.input)
	if err != nil {
		return err
	}

	k, err := newKernel(o.kernel)
	if err != nil {
		return err
	}
	opts := pipeline.DefaultOptions()
	opts.VerifyBounds = o.verify
	opts.PreviewMesh = o.stl != ""
	opts.Kernel = k
	p, err := pipeline.New(cfg, opts)
	if err != nil {
		return err
	}

	res := p.Run(root)
	for _, w := range res.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	if !res.OK() {
		return errors.Errorf("pipeline failed: %s", strings.Join(res.Errors, "; "))
	}

	if err := writeOutput(cmd.OutOrStdout(), o.out, func(w io.Writer) error {
		_, err := io.WriteString(w, res.Gcode)
		return err
	}); err != nil {
		return errors.Wrap(err, "write gcode")
	}

	exports := []struct {
		path  string
		write func(io.Writer) error
	}{
		{o.svg, func(w io.Writer) error { return export.WriteSVG(w, res) }},
		{o.png, func(w io.Writer) error { return export.WritePNG(w, res, o.pngSize) }},
		{o.stl, func(w io.Writer) error { return export.WriteSTL(w, res.Meshes) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := writeFile(e.path, e.write); err != nil {
			return errors.Wrapf(err, "export %s", e.path)
		}
	}
	if o.dxf != "" {
		if err := export.WriteDXF(o.dxf, res.Slices); err != nil {
			return errors.Wrapf(err, "export %s", o.dxf)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d levels, %d contours, %d moves, ~%.1f min\n",
		len(res.Levels), res.Contours, len(res.Toolpath), res.Stats.EstimatedMinutes)
	return nil
}

func newKernel(name string) (kernel.Kernel, error) {
	switch strings.ToLower(name) {
	case "", "sdfx":
		return sdfx.New(), nil
	case "manifold":
		return manifold.New()
	}
	return nil, errors.Errorf("unknown kernel %q, want sdfx or manifold", name)
}

// readPart loads a descriptor from JSON or evaluates a DSL program, printing
// DSL warnings to stderr.
func readPart(stderr io.Writer, path string) (*component.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err := component.Decode(data)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		return d, nil
	}

	res, err := engine.NewEngine().Evaluate(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "%s: warning: %s\n", path, w)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		return nil, errors.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	if res.Root == nil {
		return nil, errors.Errorf("%s: program does not produce a component", path)
	}
	return res.Root, nil
}

// writeOutput writes to stdout when path is "-" or empty, otherwise to path.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	return writeFile(path, write)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
