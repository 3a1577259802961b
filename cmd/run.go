package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runDryRun      bool
	runTrace       bool
	runTraceFormat string
	runFromDir     string
	runNow         string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Audit the last workday once and post the report",
	Long: `Audit the last workday once and post the report.

Exits non-zero if the report could not be delivered. A failed fetch for one
person is reported in the message and does not fail the run.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the report instead of posting it")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Print every entry's include/exclude decision")
	runCmd.Flags().StringVar(&runTraceFormat, "trace-format", "text", "Trace output format: text, csv")
	runCmd.Flags().StringVar(&runFromDir, "from-dir", "", "Read entries from snapshots written by 'wla fetch' instead of Clockify")
	runCmd.Flags().StringVar(&runNow, "now", "", "Pretend the current time is this RFC 3339 timestamp")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, loc, err := loadConfig()
	if err != nil {
		return err
	}
	now, err := parseNow(runNow)
	if err != nil {
		return err
	}

	res, _, err := audit(cmd.Context(), cfg, loc, auditOptions{
		now:     now,
		fromDir: runFromDir,
		dryRun:  runDryRun,
	})
	if res.RunID != "" && runTrace {
		out := cmd.OutOrStdout()
		if runTraceFormat == "csv" {
			printTraceCSV(out, res)
		} else {
			printTrace(out, res)
		}
	}
	if err != nil {
		return err
	}

	if runDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), res.Report)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Report sent successfully")
	return nil
}
