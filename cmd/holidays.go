package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worklog-audit/internal/holiday"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

var holidaysCheck string

var holidaysCmd = &cobra.Command{
	Use:   "holidays [year]",
	Short: "List bundled public holidays",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHolidays,
}

func init() {
	holidaysCmd.Flags().StringVar(&holidaysCheck, "check", "", "Report whether this date (YYYY-MM-DD) is a holiday")
}

func runHolidays(cmd *cobra.Command, args []string) error {
	cal := holiday.Default()
	out := cmd.OutOrStdout()

	if holidaysCheck != "" {
		d, err := timecalc.ParseCivil(holidaysCheck)
		if err != nil {
			return err
		}
		if cal.IsHoliday(d.String()) {
			fmt.Fprintf(out, "%s is a public holiday\n", d)
		} else {
			fmt.Fprintf(out, "%s is not a public holiday\n", d)
		}
		return nil
	}

	years := cal.Years()
	if len(args) == 1 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[0], err)
		}
		years = []int{y}
	}

	for _, y := range years {
		dates, estimated := cal.Dates(y)
		if len(dates) == 0 {
			fmt.Fprintf(out, "%d: no holidays configured\n", y)
			continue
		}
		label := ""
		if estimated {
			label = " (estimated)"
		}
		fmt.Fprintf(out, "%d%s\n", y, label)
		for _, d := range dates {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	return nil
}
