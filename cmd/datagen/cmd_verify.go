package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/defense-datagen/internal/pipeline"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a finished run against its manifest",
		Long: `Re-read a finished run and check every table against data_summary.json:
the file exists, its header matches the dataset's columns, its row count
equals the declared count, and bounded fields are within range. Arrow
files, the workbook, and the SQLite store are checked when present.

Examples:
  datagen verify                               # Verify the run in output.dir
  datagen verify --output-dir out              # Verify a specific directory
  datagen verify --sqlite results.db           # Also check the SQLite store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			report, verr := pipeline.Verify(ctx, pipeline.VerifyOptions{
				Dir:        cfg.Output.Dir,
				SQLitePath: cfg.Output.SQLitePath,
			})
			if report == nil {
				return fmt.Errorf("verify failed: %w", verr)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				result := map[string]interface{}{
					"valid":  verr == nil,
					"report": report,
				}
				if verr != nil {
					result["error"] = verr.Error()
				}
				if err := json.NewEncoder(out).Encode(result); err != nil {
					return err
				}
			} else {
				for _, c := range report.Datasets {
					status := "OK"
					if !c.OK {
						status = "FAILED"
					}
					fmt.Fprintf(out, "%-6s %-24s %5d/%d records\n", status, c.Name, c.Rows, c.Declared)
				}
				fmt.Fprintf(out, "Total: %d records in %d datasets (run %s)\n", report.TotalRecords, len(report.Datasets), report.RunID)
				if report.StoredRuns > 0 {
					fmt.Fprintf(out, "Store: %d run(s) in %s\n", report.StoredRuns, cfg.Output.SQLitePath)
				}
				if verr != nil {
					fmt.Fprintf(out, "\nProblems:\n%v\n", verr)
				}
			}

			if verr != nil {
				return fmt.Errorf("verification failed")
			}
			return nil
		},
	}

	cmd.Flags().String("output-dir", "", "Directory holding the run (default: output.dir from config)")
	cmd.Flags().String("sqlite", "", "SQLite results database to check")
	return cmd
}
