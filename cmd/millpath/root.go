package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/millpath/pkg/pipeline"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "millpath",
		Short:         "Generate CNC toolpaths and G-code from part descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if !verbose {
				return
			}
			pipeline.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.AddCommand(newGenerateCmd())
	return root
}
