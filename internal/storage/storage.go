// Package storage keeps JSON snapshots of fetched time entries so a run can
// be replayed offline against exactly the data it saw.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tiliavir/worklog-audit/internal/model"
	"github.com/Tiliavir/worklog-audit/internal/timecalc"
)

// ErrNoSnapshot is returned when no snapshot exists for a person and date.
var ErrNoSnapshot = errors.New("no snapshot")

// BaseDir returns the default snapshot directory (~/.wla/snapshots).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wla", "snapshots"), nil
}

// snapshotPath returns base/YYYY/MM/DD/<externalID>.json for the target date.
func snapshotPath(base string, d timecalc.CivilDate, externalID string) string {
	return filepath.Join(base,
		fmt.Sprintf("%04d", d.Year),
		fmt.Sprintf("%02d", int(d.Month)),
		fmt.Sprintf("%02d", d.Day),
		externalID+".json")
}

// LoadSnapshot reads the snapshot for person on target date d.
func LoadSnapshot(base string, d timecalc.CivilDate, p model.Person) (model.Snapshot, error) {
	path := snapshotPath(base, d, p.ExternalID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.Snapshot{}, fmt.Errorf("%w for %s on %s", ErrNoSnapshot, p.ExternalID, d)
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.Snapshot{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return snap, nil
}

// SaveSnapshot atomically writes snap under its target date.
func SaveSnapshot(base string, d timecalc.CivilDate, snap model.Snapshot) error {
	path := snapshotPath(base, d, snap.Person.ExternalID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Source serves entries from snapshots taken for one target date. It
// satisfies the runner's entry source interface.
type Source struct {
	Base string
	Date timecalc.CivilDate
}

// Entries returns the snapshotted entries for p. The window is ignored; the
// snapshot already reflects the window used when it was taken.
func (s Source) Entries(_ context.Context, p model.Person, _, _ time.Time) ([]model.TimeEntry, error) {
	snap, err := LoadSnapshot(s.Base, s.Date, p)
	if err != nil {
		return nil, err
	}
	return snap.Entries, nil
}
