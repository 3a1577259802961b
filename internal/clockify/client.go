// Package clockify fetches time entries from the Clockify REST API.
package clockify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/worklog-audit/internal/model"
)

// DefaultBaseURL is the public Clockify API root.
const DefaultBaseURL = "https://api.clockify.me/api/v1"

const (
	pageSize     = 200
	maxPages     = 50
	retryBackoff = 2 * time.Second
)

var (
	// ErrStatus is matched by errors.Is for any non-2xx API response.
	ErrStatus = errors.New("clockify API returned non-success status")
	// ErrTooManyPages means the entry list did not end within the page cap,
	// so any total built from it would be short.
	ErrTooManyPages = errors.New("clockify time entries exceed page limit")
)

// StatusError carries the status code and body of a failed request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clockify API error %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	APIKey      string
	WorkspaceID string
	// Retries is the number of extra attempts after a transport error or a
	// 5xx response. Zero disables retrying.
	Retries int
	// Backoff is the pause between attempts; defaults to two seconds.
	Backoff time.Duration
	// MaxPages caps pagination per request; defaults to 50.
	MaxPages   int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is an authenticated Clockify API client scoped to one workspace.
type Client struct {
	baseURL     string
	workspaceID string
	retries     int
	backoff     time.Duration
	maxPages    int
	httpClient  *http.Client
	log         *zap.Logger
}

// NewClient creates a Client. The API key is attached to every request.
func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	inner := hc.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}
	authed := *hc
	authed.Transport = &apiKeyTransport{key: opts.APIKey, base: inner}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = retryBackoff
	}
	pages := opts.MaxPages
	if pages <= 0 {
		pages = maxPages
	}
	return &Client{
		baseURL:     base,
		workspaceID: opts.WorkspaceID,
		retries:     opts.Retries,
		backoff:     backoff,
		maxPages:    pages,
		httpClient:  &authed,
		log:         log,
	}
}

// apiKeyTransport sets the X-Api-Key header on outgoing requests.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("X-Api-Key", t.key)
	return t.base.RoundTrip(r)
}

// Entries fetches all of person's time entries in [from, to]. A list that
// is still full on the last allowed page fails with ErrTooManyPages rather
// than returning a partial result.
func (c *Client) Entries(ctx context.Context, person model.Person, from, to time.Time) ([]model.TimeEntry, error) {
	var all []model.TimeEntry
	for page := 1; page <= c.maxPages; page++ {
		endpoint := c.entriesURL(person.ExternalID, from, to, page)
		batch, err := c.getWithRetry(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
	c.log.Warn("time entry pagination hit the page cap",
		zap.String("person", person.ExternalID),
		zap.Int("pages", c.maxPages),
		zap.Int("entries", len(all)),
	)
	return nil, fmt.Errorf("fetching entries for %s: %w (%d pages of %d)", person.ExternalID, ErrTooManyPages, c.maxPages, pageSize)
}

func (c *Client) entriesURL(userID string, from, to time.Time, page int) string {
	q := url.Values{}
	q.Set("start", from.UTC().Format(time.RFC3339))
	q.Set("end", to.UTC().Format(time.RFC3339))
	q.Set("page", strconv.Itoa(page))
	q.Set("page-size", strconv.Itoa(pageSize))
	return fmt.Sprintf("%s/workspaces/%s/user/%s/time-entries?%s",
		c.baseURL,
		url.PathEscape(c.workspaceID),
		url.PathEscape(userID),
		q.Encode(),
	)
}

func (c *Client) getWithRetry(ctx context.Context, endpoint string) ([]model.TimeEntry, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Debug("retrying clockify request", zap.Int("attempt", attempt), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		entries, err := c.get(ctx, endpoint)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]model.TimeEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clockify API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var entries []model.TimeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding clockify response: %w", err)
	}
	return entries, nil
}
