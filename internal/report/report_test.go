package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/worklog-audit/internal/attendance"
	"github.com/Tiliavir/worklog-audit/internal/model"
	"github.com/Tiliavir/worklog-audit/internal/report"
)

func person(handle string) model.Person {
	return model.Person{ExternalID: "c-" + handle, DisplayHandle: handle}
}

func TestRenderOrderAndOmission(t *testing.T) {
	verdicts := []report.PersonVerdict{
		{Person: person("1"), Verdict: attendance.Verdict{Aggregated: true, TotalSeconds: 8 * 3600}},
		{Person: person("2"), Verdict: attendance.Verdict{Issues: []attendance.Issue{attendance.FetchError}}},
		{Person: person("3"), Verdict: attendance.Verdict{
			Aggregated:   true,
			TotalSeconds: 19800,
			Issues:       []attendance.Issue{attendance.MissingDescription, attendance.InsufficientHours},
		}},
		{Person: person("4"), Verdict: attendance.Verdict{Issues: []attendance.Issue{attendance.NoEntries}}},
		{Person: person("5"), Verdict: attendance.Verdict{Aggregated: true, TotalSeconds: 6 * 3600}},
	}

	got := report.Render("27/02/2026", verdicts, report.Options{})
	want := "Time log issues 27/02/2026\n" +
		"<@2>\n- Error fetching logs\n" +
		"<@3> (5h 30m)\n- Descriptions missing\n- Logs missing\n" +
		"<@4>\n- No logs"
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"2", "3", "4"}, report.Mentions(verdicts))
}

func TestRenderAllClean(t *testing.T) {
	verdicts := []report.PersonVerdict{
		{Person: person("1"), Verdict: attendance.Verdict{Aggregated: true, TotalSeconds: 7 * 3600}},
	}
	assert.Equal(t, "Time log issues 27/02/2026", report.Render("27/02/2026", verdicts, report.Options{}))
	assert.Empty(t, report.Mentions(verdicts))
}

func TestRenderMinuteRounding(t *testing.T) {
	verdicts := []report.PersonVerdict{
		{Person: person("9"), Verdict: attendance.Verdict{
			Aggregated:   true,
			TotalSeconds: 5*3600 + 59*60 + 50,
			Issues:       []attendance.Issue{attendance.InsufficientHours},
		}},
	}
	quirk := report.Render("27/02/2026", verdicts, report.Options{})
	assert.Equal(t, "Time log issues 27/02/2026\n<@9> (5h 60m)\n- Logs missing", quirk)

	carried := report.Render("27/02/2026", verdicts, report.Options{CarryMinutes: true})
	assert.Equal(t, "Time log issues 27/02/2026\n<@9> (6h 0m)\n- Logs missing", carried)
}
