package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/worklog-audit/internal/model"
	"github.com/Tiliavir/worklog-audit/internal/storage"
)

var (
	fetchDir string
	fetchNow string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Save the raw Clockify entries a run would audit",
	Long: `Fetch every roster member's entries for the current fetch window and save
them as JSON snapshots. Replay them later with 'wla run --from-dir'.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "Snapshot directory (default ~/.wla/snapshots)")
	fetchCmd.Flags().StringVar(&fetchNow, "now", "", "Pretend the current time is this RFC 3339 timestamp")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, loc, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateFetch(); err != nil {
		return err
	}
	now, err := parseNow(fetchNow)
	if err != nil {
		return err
	}
	base := fetchDir
	if base == "" {
		if base, err = storage.BaseDir(); err != nil {
			return err
		}
	}

	target := resolveTarget(cfg, loc, now)
	client := newClockify(cfg)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fetching entries for %s into %s\n", target.Display, base)

	var failed int
	for _, p := range cfg.Roster {
		entries, err := client.Entries(cmd.Context(), p, target.Window.Start, target.Window.End)
		if err != nil {
			logger.Warn("fetching entries failed", zap.String("person", p.ExternalID), zap.Error(err))
			fmt.Fprintf(out, "  ! %s: %v\n", p.Mention(), err)
			failed++
			continue
		}
		snap := model.Snapshot{
			Person:     p,
			FetchedAt:  time.Now().UTC(),
			Target:     target.Date.String(),
			WindowFrom: target.Window.Start,
			WindowTo:   target.Window.End,
			Entries:    entries,
		}
		if err := storage.SaveSnapshot(base, target.Date, snap); err != nil {
			return err
		}
		fmt.Fprintf(out, "  ✓ %s: %d entries\n", p.Mention(), len(entries))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, len(cfg.Roster))
	}
	return nil
}
