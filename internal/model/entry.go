package model

import (
	"encoding/json"
	"time"
)

// TimeEntry is one logged work interval as reported by the time tracker.
// Start and End are nil when the tracker omits them (e.g. a running timer).
// Duration is the tracker's own ISO 8601 duration and is trusted over
// End minus Start.
type TimeEntry struct {
	ID          string
	Description *string
	Start       *time.Time
	End         *time.Time
	Duration    string
}

// Person is one roster member.
type Person struct {
	// ExternalID identifies the person at the time tracker.
	ExternalID string `json:"clockify_id"`
	// DisplayHandle is the chat user ID used for mentions.
	DisplayHandle string `json:"discord_id"`
}

// Mention returns the chat mention token for p.
func (p Person) Mention() string {
	return "<@" + p.DisplayHandle + ">"
}

// wireEntry mirrors the Clockify time entry JSON shape.
type wireEntry struct {
	ID           string  `json:"id"`
	Description  *string `json:"description"`
	TimeInterval struct {
		Start    *time.Time `json:"start"`
		End      *time.Time `json:"end"`
		Duration *string    `json:"duration"`
	} `json:"timeInterval"`
}

// UnmarshalJSON decodes the Clockify representation.
func (e *TimeEntry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = TimeEntry{
		ID:          w.ID,
		Description: w.Description,
		Start:       w.TimeInterval.Start,
		End:         w.TimeInterval.End,
	}
	if w.TimeInterval.Duration != nil {
		e.Duration = *w.TimeInterval.Duration
	}
	return nil
}

// MarshalJSON encodes e in the Clockify representation so snapshots can be
// replayed through the same decoder.
func (e TimeEntry) MarshalJSON() ([]byte, error) {
	var w wireEntry
	w.ID = e.ID
	w.Description = e.Description
	w.TimeInterval.Start = e.Start
	w.TimeInterval.End = e.End
	if e.Duration != "" {
		d := e.Duration
		w.TimeInterval.Duration = &d
	}
	return json.Marshal(w)
}

// Snapshot is the on-disk record of one person's fetched entries.
type Snapshot struct {
	Person     Person      `json:"person"`
	FetchedAt  time.Time   `json:"fetched_at"`
	Target     string      `json:"target"`
	WindowFrom time.Time   `json:"window_from"`
	WindowTo   time.Time   `json:"window_to"`
	Entries    []TimeEntry `json:"entries"`
}
