package timecalc

import (
	"time"
)

const (
	// QueryLookback and QueryLookahead bound the fetch window around now. The
	// window is intentionally wider than the target day; entries are
	// attributed to a day by the classifier, not by the fetch.
	QueryLookback  = 5 * 24 * time.Hour
	QueryLookahead = 24 * time.Hour

	// maxHolidaySteps caps how far back SkipHolidays may walk.
	maxHolidaySteps = 31
)

// HolidayChecker is satisfied by *holiday.Calendar.
type HolidayChecker interface {
	IsHoliday(date string) bool
}

// ResolveOptions controls holiday handling. The zero value ignores holidays.
type ResolveOptions struct {
	// SkipHolidays walks the target back past declared holidays and weekends.
	SkipHolidays bool
	Holidays     HolidayChecker
}

// Window is an instant range used to over-fetch candidate entries.
type Window struct {
	Start time.Time
	End   time.Time
}

// Target is the day under audit for one run.
type Target struct {
	Date     CivilDate
	Display  string
	Today    CivilDate
	Weekday  time.Weekday
	Lookback int
	Window   Window
}

// Resolve picks the most recent completed workday relative to now in loc.
// On Mondays it reaches back to Friday; otherwise to the previous day.
func Resolve(now time.Time, loc *time.Location, opts ResolveOptions) Target {
	today := CivilOf(now, loc)
	weekday := now.In(loc).Weekday()

	lookback := 1
	if weekday == time.Monday {
		lookback = 3
	}
	target := today.AddDays(-lookback)

	if opts.SkipHolidays && opts.Holidays != nil {
		for i := 0; i < maxHolidaySteps && nonWorking(target, opts.Holidays); i++ {
			target = target.AddDays(-1)
			lookback++
		}
	}

	window := Window{
		Start: now.Add(-QueryLookback),
		End:   now.Add(QueryLookahead),
	}
	if start := target.StartIn(loc); start.Before(window.Start) {
		window.Start = start
	}

	return Target{
		Date:     target,
		Display:  target.Display(),
		Today:    today,
		Weekday:  weekday,
		Lookback: lookback,
		Window:   window,
	}
}

func nonWorking(d CivilDate, h HolidayChecker) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday || h.IsHoliday(d.String())
}
