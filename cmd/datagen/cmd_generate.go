package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/nvandessel/defense-datagen/internal/config"
	"github.com/nvandessel/defense-datagen/internal/logging"
	"github.com/nvandessel/defense-datagen/internal/pipeline"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every dataset and the manifest",
		Long: `Generate the six experiment datasets and data_summary.json.

CSV tables are always written. --formats adds an Excel workbook (xlsx)
and per-dataset Arrow IPC files (arrow). --sqlite mirrors the run into a
SQLite results database.

Examples:
  datagen generate                              # Seed 42 into the current directory
  datagen generate --output-dir out --seed 7    # Different seed and directory
  datagen generate --formats csv,xlsx,arrow     # All file formats
  datagen generate --sqlite results.db          # Also store the run in SQLite`,
		RunE: runGenerate,
	}
	addGenerateFlags(cmd)
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-dir", "", "Output directory (default: output.dir from config)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default: generation.seed from config)")
	cmd.Flags().String("formats", "", "Comma-separated output formats: csv, xlsx, arrow")
	cmd.Flags().String("sqlite", "", "Also store the run in this SQLite database")
}

// loadConfig resolves configuration: defaults, config file, environment, then flags.
func loadConfig(cmd *cobra.Command) (*config.DatagenConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Output.Dir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("seed") {
		cfg.Generation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("formats") {
		v, _ := flags.GetString("formats")
		cfg.Output.Formats = config.ParseFormats(v)
	}
	if flags.Changed("sqlite") {
		cfg.Output.SQLitePath, _ = flags.GetString("sqlite")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	events := logging.NewEventLog(cfg.Output.Dir, cfg.Logging.Level)
	defer events.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var out io.Writer = cmd.OutOrStdout()
	if jsonOut {
		out = io.Discard
	}

	summary, err := pipeline.Run(ctx, pipeline.Options{
		Dir:           cfg.Output.Dir,
		Seed:          cfg.Generation.Seed,
		Formats:       cfg.Output.Formats,
		SQLitePath:    cfg.Output.SQLitePath,
		ReferenceTime: cfg.Generation.ReferenceTime,
		Out:           out,
		Logger:        logger,
		Events:        events,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
			"run_id":        summary.RunID,
			"dir":           summary.Dir,
			"seed":          cfg.Generation.Seed,
			"total_records": summary.TotalRecords,
			"files":         summary.Files,
		})
	}
	return nil
}
