package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/worklog-audit/internal/holiday"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

var colombo = time.FixedZone("+0530", 5*3600+30*60)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{90, "1m"},
		{3600, "1h 0m"},
		{3661, "1h 1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestCivilOf(t *testing.T) {
	// 20:00 UTC is already the next day in Colombo.
	ts := time.Date(2026, 2, 26, 20, 0, 0, 0, time.UTC)
	got := timecalc.CivilOf(ts, colombo)
	want := timecalc.CivilDate{Year: 2026, Month: time.February, Day: 27}
	if got != want {
		t.Errorf("CivilOf = %v, want %v", got, want)
	}
	if got.String() != "2026-02-27" {
		t.Errorf("String = %q", got.String())
	}
	if got.Display() != "27/02/2026" {
		t.Errorf("Display = %q", got.Display())
	}
}

func TestAddDaysAcrossMonthAndYear(t *testing.T) {
	d := timecalc.CivilDate{Year: 2026, Month: time.January, Day: 1}
	if got := d.AddDays(-1).String(); got != "2025-12-31" {
		t.Errorf("AddDays(-1) = %q, want 2025-12-31", got)
	}
	if got := d.AddDays(31).String(); got != "2026-02-01" {
		t.Errorf("AddDays(31) = %q, want 2026-02-01", got)
	}
}

func TestParseCivil(t *testing.T) {
	d, err := timecalc.ParseCivil("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Weekday = %v, want Monday", d.Weekday())
	}
	if _, err := timecalc.ParseCivil("02/03/2026"); err == nil {
		t.Error("expected error for DD/MM/YYYY input")
	}
}

func TestResolveLookback(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		want     string
		lookback int
	}{
		// 2026-03-02 is a Monday.
		{"monday afternoon", time.Date(2026, 3, 2, 16, 0, 0, 0, colombo), "2026-02-27", 3},
		{"monday early, still sunday in UTC", time.Date(2026, 3, 2, 1, 0, 0, 0, colombo), "2026-02-27", 3},
		{"tuesday", time.Date(2026, 3, 3, 16, 0, 0, 0, colombo), "2026-03-02", 1},
		{"friday", time.Date(2026, 2, 27, 16, 0, 0, 0, colombo), "2026-02-26", 1},
		{"sunday", time.Date(2026, 3, 1, 12, 0, 0, 0, colombo), "2026-02-28", 1},
		{"new year", time.Date(2026, 1, 1, 16, 0, 0, 0, colombo), "2025-12-31", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timecalc.Resolve(tt.now, colombo, timecalc.ResolveOptions{})
			if got.Date.String() != tt.want {
				t.Errorf("Date = %s, want %s", got.Date, tt.want)
			}
			if got.Lookback != tt.lookback {
				t.Errorf("Lookback = %d, want %d", got.Lookback, tt.lookback)
			}
			if got.Today.AddDays(-tt.lookback) != got.Date {
				t.Errorf("Date %s is not %d civil days before %s", got.Date, tt.lookback, got.Today)
			}
		})
	}
}

func TestResolveMondayUsesCivilWeekday(t *testing.T) {
	// 19:00 UTC Sunday is 00:30 Monday in Colombo.
	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	got := timecalc.Resolve(now, colombo, timecalc.ResolveOptions{})
	if got.Weekday != time.Monday {
		t.Fatalf("Weekday = %v, want Monday", got.Weekday)
	}
	if got.Date.String() != "2026-02-27" {
		t.Errorf("Date = %s, want 2026-02-27", got.Date)
	}
}

func TestResolveDisplayAndWindow(t *testing.T) {
	now := time.Date(2026, 3, 3, 16, 0, 0, 0, colombo)
	got := timecalc.Resolve(now, colombo, timecalc.ResolveOptions{})
	if got.Display != "02/03/2026" {
		t.Errorf("Display = %q, want 02/03/2026", got.Display)
	}
	if !got.Window.Start.Equal(now.Add(-5 * 24 * time.Hour)) {
		t.Errorf("Window.Start = %v", got.Window.Start)
	}
	if !got.Window.End.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("Window.End = %v", got.Window.End)
	}
}

func TestResolveHolidayToggle(t *testing.T) {
	cal := holiday.Default()
	// 2026-02-05 is a Thursday; the day before is Independence Day.
	now := time.Date(2026, 2, 5, 16, 0, 0, 0, colombo)

	off := timecalc.Resolve(now, colombo, timecalc.ResolveOptions{Holidays: cal})
	if off.Date.String() != "2026-02-04" {
		t.Errorf("holidays ignored: Date = %s, want 2026-02-04", off.Date)
	}

	on := timecalc.Resolve(now, colombo, timecalc.ResolveOptions{SkipHolidays: true, Holidays: cal})
	if on.Date.String() != "2026-02-03" {
		t.Errorf("holidays skipped: Date = %s, want 2026-02-03", on.Date)
	}
	if on.Lookback != 2 {
		t.Errorf("holidays skipped: Lookback = %d, want 2", on.Lookback)
	}
}

func TestResolveHolidaySkipsWeekend(t *testing.T) {
	cal := holiday.Default()
	// 2026-01-05 is a Monday; the preceding Friday 2026-01-02 is a Poya day.
	now := time.Date(2026, 1, 5, 16, 0, 0, 0, colombo)
	got := timecalc.Resolve(now, colombo, timecalc.ResolveOptions{SkipHolidays: true, Holidays: cal})
	if got.Date.String() != "2026-01-01" {
		t.Errorf("Date = %s, want 2026-01-01", got.Date)
	}
	if got.Window.Start.After(got.Date.StartIn(colombo)) {
		t.Errorf("window start %v does not cover target day", got.Window.Start)
	}
}
