package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nvandessel/defense-datagen/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show datagen configuration",
		Long: `View the resolved datagen configuration.

Configuration is read from ~/.datagen/config.yaml (or --config), then
DATAGEN_* environment variables.

Examples:
  datagen config list                  # Show all settings
  datagen config get generation.seed   # Get a specific setting`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
	)

	return cmd
}

// configKeys lists the dot-notation keys in display order.
var configKeys = []string{
	"output.dir",
	"output.formats",
	"output.sqlite_path",
	"generation.seed",
	"generation.reference_time",
	"logging.level",
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			fmt.Fprintln(out, "Configuration:")
			fmt.Fprintln(out)
			for _, key := range configKeys {
				value, _ := getConfigValue(cfg, key)
				fmt.Fprintf(out, "  %-26s %v\n", key+":", value)
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			out := cmd.OutOrStdout()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				}
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(out, "%s = %v\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.DatagenConfig, key string) (interface{}, bool) {
	switch key {
	case "output.dir":
		return cfg.Output.Dir, true
	case "output.formats":
		formats := make([]string, len(cfg.Output.Formats))
		for i, f := range cfg.Output.Formats {
			formats[i] = f.String()
		}
		return strings.Join(formats, ","), true
	case "output.sqlite_path":
		return valueOrDefault(cfg.Output.SQLitePath, "(not set)"), true
	case "generation.seed":
		return cfg.Generation.Seed, true
	case "generation.reference_time":
		if cfg.Generation.ReferenceTime.IsZero() {
			return "(now)", true
		}
		return cfg.Generation.ReferenceTime.Format(time.RFC3339), true
	case "logging.level":
		return valueOrDefault(cfg.Logging.Level, "info"), true
	default:
		return nil, false
	}
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
