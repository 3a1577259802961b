// Package attendance attributes time entries to an audited day and derives
// a per-person verdict from them.
package attendance

import (
	"time"

	"github.com/Tiliavir/worklog-audit/internal/model"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

// Reason explains a classification decision.
type Reason string

const (
	ReasonStartsOnTarget Reason = "starts-on-target"
	ReasonOtherDay       Reason = "starts-on-other-day"
	ReasonMissingInstant Reason = "missing-instant"
)

// Decision records how one entry was classified. StartDate and EndDate are
// empty when the corresponding instant is missing.
type Decision struct {
	EntryID     string
	StartDate   string
	EndDate     string
	Duration    string
	Description string
	Included    bool
	Reason      Reason
}

// Classify returns the entries that belong to target in loc, in input order,
// along with one Decision per input entry. An entry belongs to the day its
// start falls on; where it ends does not matter. Entries lacking a start or
// end are dropped.
func Classify(entries []model.TimeEntry, target timecalc.CivilDate, loc *time.Location) ([]model.TimeEntry, []Decision) {
	var kept []model.TimeEntry
	trace := make([]Decision, 0, len(entries))
	for _, e := range entries {
		d := Decision{EntryID: e.ID, Duration: e.Duration}
		if e.Description != nil {
			d.Description = *e.Description
		}
		if e.Start != nil {
			d.StartDate = timecalc.CivilOf(*e.Start, loc).String()
		}
		if e.End != nil {
			d.EndDate = timecalc.CivilOf(*e.End, loc).String()
		}

		switch {
		case e.Start == nil || e.End == nil:
			d.Reason = ReasonMissingInstant
		case timecalc.CivilOf(*e.Start, loc) == target:
			d.Included = true
			d.Reason = ReasonStartsOnTarget
			kept = append(kept, e)
		default:
			d.Reason = ReasonOtherDay
		}
		trace = append(trace, d)
	}
	return kept, trace
}
