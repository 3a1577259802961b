package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worklog-audit/internal/attendance"
	"github.com/Tiliavir/worklog-audit/internal/clockify"
	"github.com/Tiliavir/worklog-audit/internal/config"
	"github.com/Tiliavir/worklog-audit/internal/discord"
	"github.com/Tiliavir/worklog-audit/internal/holiday"
	"github.com/Tiliavir/worklog-audit/internal/runner"
	"github.com/Tiliavir/worklog-audit/internal/storage"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

// loadConfig reads the config file and resolves its timezone.
func loadConfig() (config.Config, *time.Location, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return cfg, nil, err
	}
	return cfg, loc, nil
}

// parseNow parses an RFC 3339 override for the current time; empty means now.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q: %w", s, err)
	}
	return t, nil
}

func runContext(cfg config.Config, loc *time.Location, now time.Time) runner.RunContext {
	return runner.RunContext{
		Now:          now,
		Location:     loc,
		Roster:       cfg.Roster,
		Threshold:    attendance.MinimumHours,
		SkipHolidays: cfg.Audit.SkipHolidays,
		Holidays:     holiday.Default(),
		CarryMinutes: cfg.Audit.CarryMinutes,
		Concurrency:  cfg.Audit.Concurrency,
	}
}

func resolveTarget(cfg config.Config, loc *time.Location, now time.Time) timecalc.Target {
	return timecalc.Resolve(now, loc, timecalc.ResolveOptions{
		SkipHolidays: cfg.Audit.SkipHolidays,
		Holidays:     holiday.Default(),
	})
}

func newClockify(cfg config.Config) *clockify.Client {
	return clockify.NewClient(clockify.Options{
		BaseURL:     cfg.Clockify.BaseURL,
		APIKey:      cfg.Clockify.APIKey,
		WorkspaceID: cfg.Clockify.WorkspaceID,
		Retries:     cfg.Clockify.Retries,
		Logger:      logger,
	})
}

// auditOptions selects where entries come from and whether to post.
type auditOptions struct {
	now     time.Time
	fromDir string
	dryRun  bool
}

// audit runs one audit and, unless dry-running, delivers it. delivered
// reports whether the report reached the channel.
func audit(ctx context.Context, cfg config.Config, loc *time.Location, opts auditOptions) (res runner.Result, delivered bool, err error) {
	if err := cfg.ValidateRoster(); err != nil {
		return res, false, err
	}

	var src runner.Source
	if opts.fromDir != "" {
		target := resolveTarget(cfg, loc, opts.now)
		src = storage.Source{Base: opts.fromDir, Date: target.Date}
	} else {
		if err := cfg.ValidateFetch(); err != nil {
			return res, false, err
		}
		src = newClockify(cfg)
	}
	if !opts.dryRun {
		if err := cfg.ValidateDelivery(); err != nil {
			return res, false, err
		}
	}

	res, err = runner.New(src, logger).Run(ctx, runContext(cfg, loc, opts.now))
	if err != nil {
		return res, false, err
	}
	if opts.dryRun {
		return res, false, nil
	}

	d := discord.NewClient(ctx, cfg.Discord.BaseURL, cfg.Discord.Token, cfg.Discord.ChannelID, nil)
	if err := runner.Deliver(ctx, d, res); err != nil {
		logger.Error("report delivery failed", zap.String("run_id", res.RunID), zap.Error(err))
		return res, false, err
	}
	logger.Info("report sent", zap.String("run_id", res.RunID), zap.Int("flagged", res.Issues()))
	return res, true, nil
}
