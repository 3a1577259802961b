// Package runner executes one audit: it resolves the day, fetches every
// roster member's entries, judges them and renders the report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/worklog-audit/internal/attendance"
	"github.com/Tiliavir/worklog-audit/internal/model"
	"github.com/Tiliavir/worklog-audit/internal/report"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

// Source supplies a person's time entries for an instant range.
type Source interface {
	Entries(ctx context.Context, person model.Person, from, to time.Time) ([]model.TimeEntry, error)
}

// Deliverer posts a rendered report. mentions lists the handles allowed to
// be notified.
type Deliverer interface {
	Send(ctx context.Context, content string, mentions []string) error
}

// RunContext is everything a run depends on. Nothing is read from globals
// or the wall clock.
type RunContext struct {
	Now      time.Time
	Location *time.Location
	Roster   []model.Person
	// Threshold is the minimum logged hours; zero means attendance.MinimumHours.
	Threshold    float64
	SkipHolidays bool
	Holidays     timecalc.HolidayChecker
	CarryMinutes bool
	// Concurrency bounds parallel fetches; values below 1 mean sequential.
	Concurrency int
}

// Result is the outcome of one run.
type Result struct {
	RunID    string
	Target   timecalc.Target
	Verdicts []report.PersonVerdict
	Report   string
	Mentions []string
}

// Issues counts the people with at least one issue.
func (r Result) Issues() int {
	return len(r.Mentions)
}

// Runner audits a roster against a Source.
type Runner struct {
	source Source
	log    *zap.Logger
}

// New creates a Runner. log may be nil.
func New(source Source, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{source: source, log: log}
}

// Run performs the audit described by rc. A failed fetch only affects that
// person's verdict; Run itself fails only for an invalid context or when ctx
// is cancelled.
func (r *Runner) Run(ctx context.Context, rc RunContext) (Result, error) {
	if rc.Location == nil {
		return Result{}, errors.New("run context has no location")
	}
	threshold := rc.Threshold
	if threshold <= 0 {
		threshold = attendance.MinimumHours
	}

	target := timecalc.Resolve(rc.Now, rc.Location, timecalc.ResolveOptions{
		SkipHolidays: rc.SkipHolidays,
		Holidays:     rc.Holidays,
	})
	runID := uuid.NewString()
	log := r.log.With(zap.String("run_id", runID))
	log.Info("audit started",
		zap.String("today", target.Today.String()),
		zap.String("weekday", target.Weekday.String()),
		zap.Int("lookback_days", target.Lookback),
		zap.String("target", target.Date.String()),
		zap.Time("window_start", target.Window.Start),
		zap.Time("window_end", target.Window.End),
		zap.Int("roster", len(rc.Roster)),
	)

	day := attendance.Day{Date: target.Date, Location: rc.Location, Threshold: threshold}
	verdicts := make([]report.PersonVerdict, len(rc.Roster))

	limit := rc.Concurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, p := range rc.Roster {
		i, p := i, p
		g.Go(func() error {
			verdicts[i] = report.PersonVerdict{Person: p, Verdict: r.auditPerson(ctx, log, p, target, day)}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("audit interrupted: %w", err)
	}

	opts := report.Options{CarryMinutes: rc.CarryMinutes}
	res := Result{
		RunID:    runID,
		Target:   target,
		Verdicts: verdicts,
		Report:   report.Render(target.Display, verdicts, opts),
		Mentions: report.Mentions(verdicts),
	}
	log.Info("audit finished", zap.Int("flagged", res.Issues()))
	return res, nil
}

func (r *Runner) auditPerson(ctx context.Context, log *zap.Logger, p model.Person, target timecalc.Target, day attendance.Day) attendance.Verdict {
	log = log.With(zap.String("person", p.ExternalID), zap.String("handle", p.DisplayHandle))

	entries, err := r.source.Entries(ctx, p, target.Window.Start, target.Window.End)
	if err != nil {
		log.Warn("fetching entries failed", zap.Error(err))
		return attendance.Audit(nil, err, day)
	}

	v := attendance.Audit(entries, nil, day)
	for _, d := range v.Trace {
		log.Debug("entry classified",
			zap.String("entry", d.EntryID),
			zap.String("start_date", d.StartDate),
			zap.String("end_date", d.EndDate),
			zap.String("duration", d.Duration),
			zap.Bool("included", d.Included),
			zap.String("reason", string(d.Reason)),
		)
	}
	log.Debug("person audited",
		zap.Int("fetched", len(entries)),
		zap.Int64("total_seconds", v.TotalSeconds),
		zap.Stringers("issues", v.Issues),
	)
	return v
}

// Deliver sends the report of res through d.
func Deliver(ctx context.Context, d Deliverer, res Result) error {
	if err := d.Send(ctx, res.Report, res.Mentions); err != nil {
		return fmt.Errorf("delivering report: %w", err)
	}
	return nil
}
