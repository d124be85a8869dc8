// Package pipeline runs the generation batch: build every dataset from one
// seeded stream, write each table, write the manifest, and report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/defense-datagen/internal/config"
	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/export"
	"github.com/nvandessel/defense-datagen/internal/logging"
	"github.com/nvandessel/defense-datagen/internal/manifest"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
	"github.com/nvandessel/defense-datagen/internal/randsrc"
	"github.com/nvandessel/defense-datagen/internal/store"
)

// Options configures one run.
type Options struct {
	// Dir receives every output file. Created if missing.
	Dir string

	// Seed seeds the single random stream.
	Seed uint64

	// Formats lists extra formats beyond CSV.
	Formats []constants.Format

	// SQLitePath mirrors the run into a SQLite store when set.
	SQLitePath string

	// ReferenceTime anchors compliance timestamps and the manifest date.
	// Zero means Now().
	ReferenceTime time.Time

	// Builders overrides the default six builders.
	Builders []dataset.Builder

	// Out receives progress lines. Nil discards them.
	Out io.Writer

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// Events records one event per artifact. Nil disables it.
	Events *logging.EventLog

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID        string
	Dir          string
	TotalRecords int
	Files        []string
	Manifest     *manifest.Manifest
	Datasets     []dataset.Dataset
}

// Run executes the pipeline. Any I/O failure stops the run and is returned;
// files already written are left in place.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = withDefaults(opts)
	out, logger := opts.Out, opts.Logger
	rule := strings.Repeat("=", constants.RuleWidth)
	output := config.OutputConfig{Dir: opts.Dir, Formats: opts.Formats, SQLitePath: opts.SQLitePath}

	ref := opts.ReferenceTime
	if ref.IsZero() {
		ref = opts.Now()
	}

	builders := opts.Builders
	if builders == nil {
		builders = dataset.Defaults(dataset.Options{ReferenceTime: ref})
	}

	if err := pathutil.EnsureDir(opts.Dir); err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "Generating Cyber Defense Sample Data...")
	fmt.Fprintln(out, rule)

	src := randsrc.New(opts.Seed)
	datasets, err := dataset.BuildAll(builders, src)
	if err != nil {
		return nil, fmt.Errorf("building datasets: %w", err)
	}
	for _, ds := range datasets {
		if err := dataset.CheckBounds(ds); err != nil {
			return nil, fmt.Errorf("building datasets: %w", err)
		}
	}

	m := manifest.New(builders, opts.Seed, ref)
	opts.Events.Log(logging.Event{Kind: logging.EventRunStarted, Detail: m.Info.RunID})
	logger.Debug("datasets built", "run_id", m.Info.RunID, "seed", src.Seed(), "datasets", len(datasets))

	summary := &Summary{RunID: m.Info.RunID, Dir: opts.Dir, Manifest: m, Datasets: datasets}

	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Log(ctx, logging.LevelTrace, "writing dataset", "dataset", ds.Name, "columns", strings.Join(ds.Columns(), ","))

		name := ds.Name + constants.CSVExt
		path := filepath.Join(opts.Dir, name)
		written, err := export.WriteCSV(path, ds)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		if !written {
			fmt.Fprintf(out, "No data to save for %s\n", path)
			logger.Warn("empty dataset skipped", "dataset", ds.Name)
			opts.Events.Log(logging.Event{Kind: logging.EventTableSkipped, Dataset: ds.Name, Path: path})
			continue
		}
		fmt.Fprintf(out, "Saved %d records to %s\n", ds.Len(), path)
		opts.Events.Log(logging.Event{Kind: logging.EventTableWritten, Dataset: ds.Name, Path: path, Records: ds.Len()})
		summary.Files = append(summary.Files, name)
		summary.TotalRecords += ds.Len()

		if output.HasFormat(constants.FormatArrow) {
			arrowName := ds.Name + constants.ArrowExt
			if _, err := export.WriteArrow(filepath.Join(opts.Dir, arrowName), ds); err != nil {
				return nil, fmt.Errorf("writing %s: %w", arrowName, err)
			}
			logger.Debug("arrow file written", "dataset", ds.Name)
			summary.Files = append(summary.Files, arrowName)
		}
	}

	if output.HasFormat(constants.FormatXLSX) {
		path := filepath.Join(opts.Dir, constants.WorkbookFile)
		written, err := export.WriteWorkbook(path, datasets)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", constants.WorkbookFile, err)
		}
		if written {
			fmt.Fprintf(out, "Workbook saved to %s\n", constants.WorkbookFile)
			summary.Files = append(summary.Files, constants.WorkbookFile)
		}
	}

	if err := manifest.Write(filepath.Join(opts.Dir, constants.ManifestFile), m); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Data summary saved to %s\n", constants.ManifestFile)
	opts.Events.Log(logging.Event{Kind: logging.EventManifest, Path: constants.ManifestFile, Records: m.TotalRecords()})
	summary.Files = append(summary.Files, constants.ManifestFile)

	if opts.SQLitePath != "" {
		if err := saveToStore(ctx, opts.SQLitePath, m, datasets); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "Results stored in %s\n", pathutil.RedactPath(opts.SQLitePath))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Data generation completed successfully!")
	fmt.Fprintf(out, "Generated %d total records\n", summary.TotalRecords)
	fmt.Fprintln(out, "Files created:")
	for _, f := range summary.Files {
		fmt.Fprintf(out, "  - %s\n", f)
	}

	opts.Events.Log(logging.Event{Kind: logging.EventRunFinished, Records: summary.TotalRecords, Detail: m.Info.RunID})
	return summary, nil
}

func saveToStore(ctx context.Context, path string, m *manifest.Manifest, datasets []dataset.Dataset) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("opening results store: %w", err)
	}
	defer s.Close()

	if err := s.SaveRun(ctx, m, datasets); err != nil {
		return fmt.Errorf("storing run: %w", err)
	}
	return nil
}

func withDefaults(opts Options) Options {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}
