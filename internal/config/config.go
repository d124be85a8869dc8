// Package config provides unified configuration loading for datagen.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/defense-datagen/internal/constants"
	"gopkg.in/yaml.v3"
)

// DatagenConfig contains all datagen configuration settings.
type DatagenConfig struct {
	// Output controls where and in which formats datasets are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Generation controls the random stream and timestamps.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Logging contains settings for diagnostic and run-event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// OutputConfig configures the files a run produces.
type OutputConfig struct {
	// Dir is the directory that receives every table and the manifest.
	Dir string `json:"dir" yaml:"dir"`

	// Formats lists the enabled output formats. CSV is always written;
	// "xlsx" and "arrow" add a workbook and per-dataset Arrow IPC files.
	Formats []constants.Format `json:"formats" yaml:"formats"`

	// SQLitePath, when set, mirrors every dataset into a SQLite database.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// GenerationConfig configures the shared random stream.
type GenerationConfig struct {
	// Seed seeds the single random stream. Defaults to 42.
	Seed uint64 `json:"seed" yaml:"seed"`

	// ReferenceTime anchors compliance timestamps and the manifest generation
	// date. Empty means the wall clock at run time.
	ReferenceTime time.Time `json:"reference_time,omitempty" yaml:"reference_time,omitempty"`
}

// LoggingConfig configures datagen's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the run event log at <output.dir>/events.jsonl.
	Level string `json:"level" yaml:"level"`
}

// HasFormat reports whether f is enabled. CSV is always enabled.
func (o OutputConfig) HasFormat(f constants.Format) bool {
	return f == constants.FormatCSV || slices.Contains(o.Formats, f)
}

// Default returns a DatagenConfig with sensible defaults.
func Default() *DatagenConfig {
	return &DatagenConfig{
		Output: OutputConfig{
			Dir:     ".",
			Formats: []constants.Format{constants.FormatCSV},
		},
		Generation: GenerationConfig{
			Seed: constants.DefaultSeed,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.datagen/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".datagen", "config.yaml"), nil
}

// Load loads configuration from path, or from the default location when path
// is empty, then applies environment variable overrides.
// Order: defaults -> config file -> environment variables.
// A missing default file is not an error; a missing explicit path is.
func Load(path string) (*DatagenConfig, error) {
	config := Default()

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*DatagenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Output.Dir = expandEnvVars(config.Output.Dir)
	config.Output.SQLitePath = expandEnvVars(config.Output.SQLitePath)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *DatagenConfig) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}

	for _, f := range c.Output.Formats {
		if !f.Valid() {
			return fmt.Errorf("invalid format: %s (valid: csv, xlsx, arrow)", f)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *DatagenConfig) error {
	if v := os.Getenv("DATAGEN_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("DATAGEN_FORMATS"); v != "" {
		config.Output.Formats = ParseFormats(v)
	}

	if v := os.Getenv("DATAGEN_SQLITE_PATH"); v != "" {
		config.Output.SQLitePath = v
	}

	if v := os.Getenv("DATAGEN_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DATAGEN_SEED %q: %w", v, err)
		}
		config.Generation.Seed = seed
	}

	if v := os.Getenv("DATAGEN_REFERENCE_TIME"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid DATAGEN_REFERENCE_TIME %q: %w", v, err)
		}
		config.Generation.ReferenceTime = ts
	}

	if v := os.Getenv("DATAGEN_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks.
func ParseFormats(s string) []constants.Format {
	var formats []constants.Format
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			formats = append(formats, constants.Format(part))
		}
	}
	return formats
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
