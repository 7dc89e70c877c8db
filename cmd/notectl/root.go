package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/notes"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "notectl",
		Short: "Parse cardiology notes and manage trained header formats",
		Long:  "notectl parses free-text clinical notes into structured records,\nbuilds guideline plans from them and maintains the trained-format store.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				logger.Init("notectl")
				logger.Log.SetOutput(cmd.ErrOrStderr())
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(newParseCmd())
	root.AddCommand(newEvidenceCmd())
	root.AddCommand(newFormatsCmd())
	root.Version = version
	return root
}

func loadComponents(cmd *cobra.Command) (*notes.Components, error) {
	c, err := notes.LoadComponents(cmd.Context(), config.Load())
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	return c, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
