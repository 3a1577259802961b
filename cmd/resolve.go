package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worklog-audit/internal/holiday"
)

var resolveNow string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which day would be audited and the fetch window",
	Args:  cobra.NoArgs,
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveNow, "now", "", "Pretend the current time is this RFC 3339 timestamp")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, loc, err := loadConfig()
	if err != nil {
		return err
	}
	now, err := parseNow(resolveNow)
	if err != nil {
		return err
	}

	target := resolveTarget(cfg, loc, now)
	isHoliday := "no"
	if holiday.Default().IsHoliday(target.Date.String()) {
		isHoliday = "yes"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Timezone: %s\n", loc)
	fmt.Fprintf(out, "Today:    %s %s (going back %d day(s))\n", target.Weekday, target.Today.Display(), target.Lookback)
	fmt.Fprintf(out, "Target:   %s (%s)\n", target.Display, target.Date)
	fmt.Fprintf(out, "Holiday:  %s (skip_holidays=%v)\n", isHoliday, cfg.Audit.SkipHolidays)
	fmt.Fprintf(out, "Window:   %s → %s\n",
		target.Window.Start.UTC().Format(time.RFC3339), target.Window.End.UTC().Format(time.RFC3339))
	return nil
}
