// Package server exposes a small HTTP status API for the long-running
// scheduler: health, the outcome of the last run, and a manual trigger.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tiliavir/worklog-audit/internal/runner"
)

// RunSummary is the JSON view of one finished run.
type RunSummary struct {
	RunID      string    `json:"run_id,omitempty"`
	Target     string    `json:"target,omitempty"`
	Flagged    int       `json:"flagged"`
	Report     string    `json:"report,omitempty"`
	Delivered  bool      `json:"delivered"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Status remembers the most recent run. It is safe for concurrent use.
type Status struct {
	mu   sync.RWMutex
	last *RunSummary
}

// Record stores the outcome of a run. res may be the zero Result when the
// run failed before producing one.
func (s *Status) Record(res runner.Result, delivered bool, err error, at time.Time) {
	sum := &RunSummary{
		RunID:      res.RunID,
		Flagged:    res.Issues(),
		Report:     res.Report,
		Delivered:  delivered,
		FinishedAt: at,
	}
	if res.RunID != "" {
		sum.Target = res.Target.Date.String()
	}
	if err != nil {
		sum.Error = err.Error()
	}
	s.mu.Lock()
	s.last = sum
	s.mu.Unlock()
}

// Last returns the most recent run, if any.
func (s *Status) Last() (RunSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return RunSummary{}, false
	}
	return *s.last, true
}

// TriggerFunc runs one audit on demand.
type TriggerFunc func(ctx context.Context) error

// NewRouter builds the status API.
func NewRouter(st *Status, trigger TriggerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "healthy"})
	})

	r.Get("/last-run", func(w http.ResponseWriter, r *http.Request) {
		sum, ok := st.Last()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run yet"})
			return
		}
		writeJSON(w, http.StatusOK, sum)
	})

	r.Post("/run", func(w http.ResponseWriter, r *http.Request) {
		if err := trigger(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		sum, _ := st.Last()
		writeJSON(w, http.StatusOK, sum)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
