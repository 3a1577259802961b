package clockify_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/worklog-audit/internal/clockify"
	"github.com/Tiliavir/worklog-audit/internal/model"
)

var alice = model.Person{ExternalID: "user-1", DisplayHandle: "111"}

func TestEntries(t *testing.T) {
	from := time.Date(2026, 2, 22, 10, 30, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 10, 30, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws-1/user/user-1/time-entries", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "2026-02-22T10:30:00Z", r.URL.Query().Get("start"))
		assert.Equal(t, "2026-02-28T10:30:00Z", r.URL.Query().Get("end"))
		fmt.Fprint(w, `[
			{"id":"e1","description":"review","timeInterval":{"start":"2026-02-27T03:30:00Z","end":"2026-02-27T09:00:00Z","duration":"PT5H30M"}},
			{"id":"e2","description":"","timeInterval":{"start":"2026-02-27T09:30:00Z","end":null,"duration":null}}
		]`)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, APIKey: "secret", WorkspaceID: "ws-1"})
	entries, err := c.Entries(context.Background(), alice, from, to)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "PT5H30M", entries[0].Duration)
	assert.Nil(t, entries[1].End)
}

func TestEntriesPaginates(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()
		n := 200
		if page == "2" {
			n = 3
		}
		batch := make([]map[string]any, n)
		for i := range batch {
			batch[i] = map[string]any{"id": fmt.Sprintf("%s-%d", page, i)}
		}
		_ = json.NewEncoder(w).Encode(batch)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, WorkspaceID: "ws"})
	entries, err := c.Entries(context.Background(), alice, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Len(t, entries, 203)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2"}, pages)
}

func TestEntriesFailsAtPageCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		batch := make([]map[string]any, 200)
		for i := range batch {
			batch[i] = map[string]any{"id": fmt.Sprintf("%s-%d", r.URL.Query().Get("page"), i)}
		}
		_ = json.NewEncoder(w).Encode(batch)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, WorkspaceID: "ws", MaxPages: 2})
	entries, err := c.Entries(context.Background(), alice, time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, clockify.ErrTooManyPages)
	assert.Nil(t, entries)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEntriesStatusError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, WorkspaceID: "ws", Retries: 3, Backoff: time.Millisecond})
	_, err := c.Entries(context.Background(), alice, time.Now(), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, clockify.ErrStatus))

	var se *clockify.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestEntriesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, WorkspaceID: "ws", Retries: 2, Backoff: time.Millisecond})
	entries, err := c.Entries(context.Background(), alice, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEntriesNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, WorkspaceID: "ws"})
	_, err := c.Entries(context.Background(), alice, time.Now(), time.Now())
	require.ErrorIs(t, err, clockify.ErrStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEntriesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"}`)
	}))
	defer srv.Close()

	c := clockify.NewClient(clockify.Options{BaseURL: srv.URL, WorkspaceID: "ws"})
	_, err := c.Entries(context.Background(), alice, time.Now(), time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, clockify.ErrStatus))
}
