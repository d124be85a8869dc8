package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/defense-datagen/internal/bundle"
	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/manifest"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
	"github.com/nvandessel/defense-datagen/internal/pipeline"
	"github.com/spf13/cobra"
)

// bundleDirName is the subdirectory of the output dir that holds bundles by default.
const bundleDirName = "bundles"

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Pack a finished run into one checksummed archive",
		Long: `Pack the tables, workbook, Arrow files, and manifest of a finished run
into a single gzip bundle with a SHA-256 checksum header.

Default location: <output dir>/bundles/datagen-bundle-YYYYMMDD-HHMMSS.gz
Keeps the most recent bundles according to --keep (default: 10).

Examples:
  datagen bundle                              # Bundle the run in output.dir
  datagen bundle --out run.gz                 # Bundle to a specific file
  datagen bundle list                         # List bundles
  datagen bundle verify <file>                # Verify bundle integrity
  datagen bundle extract <file> <dir>         # Unpack a bundle`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("out")
			keep, _ := cmd.Flags().GetInt("keep")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := cfg.Output.Dir

			m, err := manifest.Read(filepath.Join(dir, constants.ManifestFile))
			if err != nil {
				return fmt.Errorf("no finished run in %s: %w", pathutil.RedactPath(dir), err)
			}

			now := time.Now()
			pruneDir := ""
			if outputPath == "" {
				pruneDir = filepath.Join(dir, bundleDirName)
				if err := pathutil.EnsureDir(pruneDir); err != nil {
					return err
				}
				outputPath = bundle.GeneratePath(pruneDir, now)
			}

			files := pipeline.OutputFiles(dir, m)
			header, err := bundle.Write(outputPath, dir, files, m.Info.RunID, now)
			if err != nil {
				return fmt.Errorf("bundle failed: %w", err)
			}

			var removed []string
			if pruneDir != "" {
				removed, err = bundle.Prune(pruneDir, keep)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to prune bundles: %v\n", err)
				}
			}

			if jsonOut {
				info, _ := os.Stat(outputPath)
				var sizeBytes int64
				if info != nil {
					sizeBytes = info.Size()
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"path":       outputPath,
					"run_id":     header.RunID,
					"file_count": header.FileCount,
					"checksum":   header.Checksum,
					"size_bytes": sizeBytes,
					"pruned":     len(removed),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bundle created: %d files (run %s)\n", header.FileCount, header.RunID)
			fmt.Fprintf(out, "  Path: %s\n", outputPath)
			if len(removed) > 0 {
				fmt.Fprintf(out, "  Pruned %d old bundle(s)\n", len(removed))
			}
			return nil
		},
	}

	cmd.Flags().String("output-dir", "", "Directory holding the run (default: output.dir from config)")
	cmd.Flags().String("out", "", "Bundle file path (default: auto-generated in <output dir>/bundles/)")
	cmd.Flags().Int("keep", 10, "Number of bundles to keep in the default location (0 keeps all)")

	cmd.AddCommand(
		newBundleListCmd(),
		newBundleVerifyCmd(),
		newBundleExtractCmd(),
	)

	return cmd
}

func newBundleListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bundles in the default location",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			paths, err := bundle.List(filepath.Join(cfg.Output.Dir, bundleDirName))
			if err != nil {
				return err
			}

			if jsonOut {
				if paths == nil {
					paths = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"bundles": paths,
					"count":   len(paths),
				})
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, "No bundles found.")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}

	cmd.Flags().String("output-dir", "", "Directory holding the run (default: output.dir from config)")
	return cmd
}

func newBundleVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify bundle file integrity",
		Long: `Verify the integrity of a bundle by checking its SHA-256 checksum.

Examples:
  datagen bundle verify bundles/datagen-bundle-20260206-120000.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			header, err := bundle.Verify(filePath)
			if err != nil {
				if jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"file":    filePath,
						"valid":   false,
						"error":   err.Error(),
						"message": "Checksum verification FAILED",
					})
				}
				fmt.Fprintf(out, "FAILED: %v\n", err)
				fmt.Fprintf(out, "  File: %s\n", filePath)
				return fmt.Errorf("checksum verification failed")
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"file":       filePath,
					"version":    header.Version,
					"run_id":     header.RunID,
					"file_count": header.FileCount,
					"valid":      true,
					"message":    "Checksum OK",
				})
			}

			fmt.Fprintf(out, "OK: checksum verified\n")
			fmt.Fprintf(out, "  File: %s\n", filePath)
			fmt.Fprintf(out, "  Run: %s (%d files)\n", header.RunID, header.FileCount)
			return nil
		},
	}
}

func newBundleExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file> <dir>",
		Short: "Unpack a bundle into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			header, err := bundle.Extract(args[0], args[1])
			if err != nil {
				return fmt.Errorf("extract failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"dir":        args[1],
					"run_id":     header.RunID,
					"file_count": header.FileCount,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d files to %s\n", header.FileCount, args[1])
			return nil
		},
	}
}
