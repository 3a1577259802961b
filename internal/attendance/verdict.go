package attendance

import (
	"math"
	"strings"

	"github.com/Tiliavir/worklog-audit/internal/duration"
	"github.com/Tiliavir/worklog-audit/internal/model"
)

// MinimumHours is the least a person must log on the audited day.
const MinimumHours = 6.0

// Issue is one anomaly on a person's day. Values are ordered by the
// precedence they appear in within a report block.
type Issue int

const (
	MissingDescription Issue = iota
	InsufficientHours
	FetchError
	NoEntries
)

// String returns the report text for the issue.
func (i Issue) String() string {
	switch i {
	case MissingDescription:
		return "Descriptions missing"
	case InsufficientHours:
		return "Logs missing"
	case FetchError:
		return "Error fetching logs"
	case NoEntries:
		return "No logs"
	default:
		return "Unknown issue"
	}
}

// Totals is the aggregate of a person's classified entries.
type Totals struct {
	TotalSeconds          int64
	HasMissingDescription bool
	// Unparsed counts entries whose duration text could not be decoded.
	Unparsed int
}

// Aggregate sums entry durations and checks descriptions.
func Aggregate(entries []model.TimeEntry) Totals {
	var t Totals
	for _, e := range entries {
		if e.Description == nil || strings.TrimSpace(*e.Description) == "" {
			t.HasMissingDescription = true
		}
		r := duration.Parse(e.Duration)
		if !r.Parsed {
			t.Unparsed++
		}
		t.TotalSeconds += r.Seconds
	}
	return t
}

// Verdict is the outcome of auditing one person's day.
type Verdict struct {
	// Aggregated is false when the verdict was decided before any
	// durations were summed (fetch failure or no entries).
	Aggregated            bool
	TotalSeconds          int64
	HasMissingDescription bool
	Issues                []Issue
	Trace                 []Decision
	Err                   error
}

// Clean reports whether the day has no issues.
func (v Verdict) Clean() bool {
	return len(v.Issues) == 0
}

// ToVerdict applies the anomaly rules. A non-nil fetchErr short-circuits to
// FetchError and an empty classified set to NoEntries.
func ToVerdict(classified []model.TimeEntry, fetchErr error, threshold float64) Verdict {
	if fetchErr != nil {
		return Verdict{Issues: []Issue{FetchError}, Err: fetchErr}
	}
	if len(classified) == 0 {
		return Verdict{Issues: []Issue{NoEntries}}
	}

	t := Aggregate(classified)
	v := Verdict{
		Aggregated:            true,
		TotalSeconds:          t.TotalSeconds,
		HasMissingDescription: t.HasMissingDescription,
	}
	if t.HasMissingDescription {
		v.Issues = append(v.Issues, MissingDescription)
	}
	if float64(t.TotalSeconds)/3600 < threshold {
		v.Issues = append(v.Issues, InsufficientHours)
	}
	return v
}

// HoursMinutes splits seconds into display hours and minutes. Minutes are
// rounded, so values just under a full hour show as 60m unless carry is set.
func HoursMinutes(seconds int64, carry bool) (int64, int64) {
	total := float64(seconds) / 3600
	h := math.Floor(total)
	m := math.Round((total - h) * 60)
	if carry && m >= 60 {
		h++
		m -= 60
	}
	return int64(h), int64(m)
}

// Audit classifies a person's fetched entries against the target day and
// returns the verdict with the classification trace attached. When fetchErr
// is set the entries are ignored.
func Audit(entries []model.TimeEntry, fetchErr error, day Day) Verdict {
	if fetchErr != nil {
		return ToVerdict(nil, fetchErr, day.Threshold)
	}
	kept, trace := Classify(entries, day.Date, day.Location)
	v := ToVerdict(kept, nil, day.Threshold)
	v.Trace = trace
	return v
}
