package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MJE43/antwalk/internal/engine"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "antwalk",
		Short: "Estimate how long a random-walking ant takes to leave a region",
		Long: `antwalk runs many independent random walks from the origin, refines the
point where each walk crosses the region border and reports the mean
crossing time. Without a subcommand it runs the reference experiment.`,
		Version:       fmt.Sprintf("%s (engine %s)", version, engine.EngineVersion),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json)")

	bindRunFlags(rootCmd, flags)
	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newRegionsCmd())

	return rootCmd
}
