package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datagen",
		Short: "Sample data generator for hierarchical multi-agent cyber defense experiments",
		Long: `datagen writes the synthetic experiment tables behind the H-MAPPO
cyber defense evaluation: six CSV datasets drawn from one seeded random
stream, plus a JSON manifest describing them.

Running datagen with no subcommand is the same as 'datagen generate'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ~/.datagen/config.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace")
	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newVerifyCmd(),
		newBundleCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
