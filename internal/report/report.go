// Package report renders audit verdicts into the chat message posted for a run.
package report

import (
	"fmt"
	"strings"

	"github.com/Tiliavir/worklog-audit/internal/attendance"
	"github.com/Tiliavir/worklog-audit/internal/model"
)

// HeaderPrefix starts the first line of every report.
const HeaderPrefix = "Time log issues"

// PersonVerdict pairs a roster member with their verdict.
type PersonVerdict struct {
	Person  model.Person
	Verdict attendance.Verdict
}

// Options tweak rendering.
type Options struct {
	// CarryMinutes folds a rounded "60m" into the hour count.
	CarryMinutes bool
}

// Render builds the report for displayDate. People are listed in the given
// order; anyone without issues is left out.
func Render(displayDate string, verdicts []PersonVerdict, opts Options) string {
	lines := []string{fmt.Sprintf("%s %s", HeaderPrefix, displayDate)}
	for _, pv := range verdicts {
		if pv.Verdict.Clean() {
			continue
		}
		lines = append(lines, block(pv, opts))
	}
	return strings.Join(lines, "\n")
}

func block(pv PersonVerdict, opts Options) string {
	var b strings.Builder
	b.WriteString(pv.Person.Mention())
	if pv.Verdict.Aggregated {
		h, m := attendance.HoursMinutes(pv.Verdict.TotalSeconds, opts.CarryMinutes)
		fmt.Fprintf(&b, " (%dh %dm)", h, m)
	}
	for _, issue := range pv.Verdict.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// Mentions returns the display handles of everyone who appears in the report.
func Mentions(verdicts []PersonVerdict) []string {
	var out []string
	for _, pv := range verdicts {
		if !pv.Verdict.Clean() {
			out = append(out, pv.Person.DisplayHandle)
		}
	}
	return out
}
