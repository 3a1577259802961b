package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/worklog-audit/internal/logging"
)

var (
	cfgPath    string
	verbose    bool
	logConsole bool
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "wla",
	Short: "Worklog audit – flags missing or incomplete time logs",
	Long: `wla checks every roster member's Clockify entries for the last workday
and posts the people with missing logs, short hours or blank descriptions
to a Discord channel. Configuration lives in ~/.wla/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose, logConsole)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ~/.wla/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging, including per-entry decisions")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Human-readable log output instead of JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(fetchCmd)
}
