// Package discord posts report messages to a Discord channel through the bot
// REST API.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Discord REST API root.
const DefaultBaseURL = "https://discord.com/api/v10"

const (
	// MaxMessageLength is Discord's content limit per message.
	MaxMessageLength = 2000
	// maxAllowedUsers is the largest allowed_mentions.users list Discord accepts.
	maxAllowedUsers = 100
	// DefaultTimeout bounds each API call when no HTTP client is supplied.
	DefaultTimeout = 30 * time.Second
)

// ErrStatus is matched by errors.Is for any non-2xx API response.
var ErrStatus = errors.New("discord API returned non-success status")

// StatusError carries the status code and body of a rejected send.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("discord API error %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Client sends messages to one channel.
type Client struct {
	baseURL    string
	channelID  string
	httpClient *http.Client
}

// NewClient creates a Client authenticated with a bot token. base may be
// empty to use the public API; hc may be nil, in which case requests time
// out after DefaultTimeout.
func NewClient(ctx context.Context, base, token, channelID string, hc *http.Client) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bot"})
	authed := oauth2.NewClient(ctx, ts)
	// oauth2 only carries over the transport.
	authed.Timeout = hc.Timeout
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		channelID:  channelID,
		httpClient: authed,
	}
}

type allowedMentions struct {
	Parse []string `json:"parse"`
	Users []string `json:"users,omitempty"`
}

type createMessage struct {
	Content         string          `json:"content"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

// Send posts content to the channel. Only the users listed in mentions are
// pinged. Content longer than one message is split on line boundaries and
// sent in order; a failure stops at that part and earlier parts stay posted.
func (c *Client) Send(ctx context.Context, content string, mentions []string) error {
	am := allowedMentions{Parse: []string{}, Users: mentions}
	if len(mentions) > maxAllowedUsers {
		am = allowedMentions{Parse: []string{"users"}}
	}
	parts := Split(content, MaxMessageLength)
	for i, part := range parts {
		if err := c.post(ctx, createMessage{Content: part, AllowedMentions: am}); err != nil {
			if i > 0 {
				return fmt.Errorf("sending message part %d of %d (parts 1-%d already posted): %w", i+1, len(parts), i, err)
			}
			return fmt.Errorf("sending message part %d of %d: %w", i+1, len(parts), err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, msg createMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, url.PathEscape(c.channelID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	return nil
}

// Split breaks content into chunks of at most limit characters, cutting at
// newlines where possible. A single line longer than limit is cut at a rune
// boundary.
func Split(content string, limit int) []string {
	if utf8.RuneCountInString(content) <= limit {
		return []string{content}
	}
	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.Split(content, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			cut := runeOffset(line, limit)
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		size := utf8.RuneCountInString(line)
		need := size
		if cur.Len() > 0 {
			need++
		}
		if n+need > limit {
			flush()
			need = size
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		n += need
	}
	flush()
	return parts
}

// runeOffset returns the byte offset of the n-th rune in s.
func runeOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
}
