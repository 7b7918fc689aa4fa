package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	output  string
)

var rootCmd = &cobra.Command{
	Use:   "distill",
	Short: "Distill memory files into tiered identity axioms",
	Long: `distill turns accumulated memory text into a small set of identity axioms.

Each line of input becomes a signal. Signals are clustered into principles by
embedding similarity, the clustering is repeated with a tightening threshold
until it stops changing, and principles with enough evidence are promoted to
core, domain or emerging axioms.

Commands:
  run       Synthesize axioms from memory files
  version   Show version information`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log synthesis progress to stderr")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "markdown", "Output format (markdown, json)")
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
