package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/worklog-audit/internal/config"
	"github.com/Tiliavir/worklog-audit/internal/schedule"
	"github.com/Tiliavir/worklog-audit/internal/server"
)

var scheduleListen string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Post the report on a recurring schedule",
	Long: `Run in the foreground and post the report on the configured cron
schedule (16:00 Monday to Friday in the audit timezone by default).

When GITHUB_ACTIONS is set the report is posted once and the process exits,
with a non-zero status if delivery failed.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleListen, "listen", "", "Status server address, e.g. :8080 (overrides config)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, loc, err := loadConfig()
	if err != nil {
		return err
	}

	if config.OneShot() {
		logger.Info("running in one-shot mode")
		if _, _, err := audit(ctx, cfg, loc, auditOptions{now: time.Now()}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Report sent successfully")
		return nil
	}

	if err := cfg.ValidateFetch(); err != nil {
		return err
	}
	if err := cfg.ValidateDelivery(); err != nil {
		return err
	}

	status := &server.Status{}
	job := func(ctx context.Context) {
		res, delivered, err := audit(ctx, cfg, loc, auditOptions{now: time.Now()})
		status.Record(res, delivered, err, time.Now())
		if err != nil {
			// Keep the scheduler alive; the next firing gets a fresh run.
			logger.Error("scheduled run failed", zap.Error(err))
		}
	}
	sched, err := schedule.New(cfg.Audit.Schedule, loc, job, logger)
	if err != nil {
		return err
	}

	listen := cfg.Audit.Listen
	if scheduleListen != "" {
		listen = scheduleListen
	}
	if listen != "" {
		srv := &http.Server{
			Addr: listen,
			Handler: server.NewRouter(status, func(ctx context.Context) error {
				if !sched.Trigger(ctx) {
					return errors.New("a run is already in progress")
				}
				return nil
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("status server listening", zap.String("addr", listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return sched.Run(ctx)
}
