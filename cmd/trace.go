package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Tiliavir/worklog-audit/internal/runner"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

// printTrace writes a per-person listing of classification decisions.
func printTrace(w io.Writer, res runner.Result) {
	fmt.Fprintf(w, "Target %s (%s), going back %d day(s)\n", res.Target.Display, res.Target.Date, res.Target.Lookback)
	for _, pv := range res.Verdicts {
		v := pv.Verdict
		fmt.Fprintf(w, "\n%s [%s]\n", pv.Person.Mention(), pv.Person.ExternalID)
		if v.Err != nil {
			fmt.Fprintf(w, "  ! %v\n", v.Err)
			continue
		}
		for _, d := range v.Trace {
			mark := "✗"
			if d.Included {
				mark = "✓"
			}
			desc := d.Description
			if r := []rune(desc); len(r) > 40 {
				desc = string(r[:40])
			}
			if desc == "" {
				desc = "(empty)"
			}
			fmt.Fprintf(w, "  %s [%s] to [%s] %s %q (%s)\n",
				mark, orDash(d.StartDate), orDash(d.EndDate), orDash(d.Duration), desc, d.Reason)
		}
		if v.Aggregated {
			fmt.Fprintf(w, "  total %s\n", timecalc.FormatDuration(v.TotalSeconds))
		}
	}
}

// printTraceCSV writes the decisions as CSV, one row per entry.
func printTraceCSV(w io.Writer, res runner.Result) {
	fmt.Fprintln(w, "target,clockify_id,discord_id,entry_id,start_date,end_date,duration,included,reason,description")
	for _, pv := range res.Verdicts {
		for _, d := range pv.Verdict.Trace {
			fields := []string{
				res.Target.Date.String(),
				pv.Person.ExternalID,
				pv.Person.DisplayHandle,
				d.EntryID,
				d.StartDate,
				d.EndDate,
				d.Duration,
				strconv.FormatBool(d.Included),
				string(d.Reason),
				d.Description,
			}
			for i, f := range fields {
				fields[i] = csvEscape(f)
			}
			fmt.Fprintln(w, strings.Join(fields, ","))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
