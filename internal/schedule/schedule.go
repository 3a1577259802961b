// Package schedule triggers audits on a cron cadence in the civil timezone.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron spec. Overlapping firings are skipped.
type Scheduler struct {
	spec string
	loc  *time.Location
	job  Job
	log  *zap.Logger
	busy sync.Mutex
}

// New validates spec (six fields, seconds first) and returns a Scheduler.
func New(spec string, loc *time.Location, job Job, log *zap.Logger) (*Scheduler, error) {
	if _, err := cron.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{spec: spec, loc: loc, job: job, log: log}, nil
}

// Next returns the first firing time strictly after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	sched, _ := cron.Parse(s.spec)
	return sched.Next(t.In(s.loc))
}

// Run starts the cron loop and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.NewWithLocation(s.loc)
	if err := c.AddFunc(s.spec, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("registering job: %w", err)
	}
	c.Start()
	s.log.Info("scheduler started",
		zap.String("spec", s.spec),
		zap.String("timezone", s.loc.String()),
		zap.Time("next", s.Next(time.Now())),
	)
	<-ctx.Done()
	c.Stop()
	// Wait for an in-flight job to finish.
	s.busy.Lock()
	s.busy.Unlock()
	s.log.Info("scheduler stopped")
	return nil
}

// fire runs the job unless a previous firing is still in progress.
func (s *Scheduler) fire(ctx context.Context) {
	if !s.busy.TryLock() {
		s.log.Warn("previous run still in progress, skipping")
		return
	}
	defer s.busy.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.job(ctx)
}

// Trigger runs the job immediately, subject to the same overlap rule.
// It reports whether the job ran.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.busy.TryLock() {
		return false
	}
	defer s.busy.Unlock()
	s.job(ctx)
	return true
}
