package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Tiliavir/worklog-audit/internal/model"
)

// Config is the root configuration for wla, stored in ~/.wla/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Clockify ClockifyConfig `json:"clockify"`
	Discord  DiscordConfig  `json:"discord"`
	Audit    AuditConfig    `json:"audit"`
	// Roster is the ordered list of people to audit.
	Roster []model.Person `json:"roster"`
}

// ClockifyConfig holds time-tracker API settings.
type ClockifyConfig struct {
	APIKey      string `json:"api_key"`
	WorkspaceID string `json:"workspace_id"`
	// BaseURL overrides the API root; empty uses the public API.
	BaseURL string `json:"base_url"`
	// Retries is the number of extra attempts per failed request.
	Retries int `json:"retries"`
}

// DiscordConfig holds delivery channel settings.
type DiscordConfig struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
	BaseURL   string `json:"base_url"`
}

// AuditConfig controls how and when the audit runs.
type AuditConfig struct {
	// Timezone is the IANA timezone that defines the audited civil day.
	Timezone string `json:"timezone"`
	// Schedule is a six-field cron spec (seconds first) in Timezone.
	Schedule string `json:"schedule"`
	// Concurrency bounds parallel fetches.
	Concurrency int `json:"concurrency"`
	// SkipHolidays moves the audited day back past public holidays and weekends.
	SkipHolidays bool `json:"skip_holidays"`
	// CarryMinutes shows a rounded 60m as an extra hour.
	CarryMinutes bool `json:"carry_minutes"`
	// Listen is the status server address in schedule mode; empty disables it.
	Listen string `json:"listen"`
}

const (
	// DefaultTimezone is the civil timezone of the reference deployment.
	DefaultTimezone = "Asia/Colombo"
	// DefaultSchedule fires at 16:00 Monday to Friday.
	DefaultSchedule = "0 0 16 * * 1-5"
	// DefaultConcurrency is the number of people fetched in parallel.
	DefaultConcurrency = 4
)

// Environment variables that override file settings.
const (
	EnvClockifyAPIKey    = "CLOCKIFY_API_KEY"
	EnvClockifyWorkspace = "CLOCKIFY_WORKSPACE_ID"
	EnvDiscordToken      = "DISCORD_TOKEN"
	EnvDiscordChannel    = "DISCORD_CHANNEL_ID"
	EnvTimezone          = "WLA_TIMEZONE"
	EnvSkipHolidays      = "WLA_SKIP_HOLIDAYS"
	// EnvOneShot is set by GitHub Actions; its presence selects one-shot mode.
	EnvOneShot = "GITHUB_ACTIONS"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Audit: AuditConfig{
			Timezone:    DefaultTimezone,
			Schedule:    DefaultSchedule,
			Concurrency: DefaultConcurrency,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// wla configuration – ~/.wla/config.json
//
// Secrets may be left empty here and supplied through the environment:
// CLOCKIFY_API_KEY, CLOCKIFY_WORKSPACE_ID, DISCORD_TOKEN, DISCORD_CHANNEL_ID.
{
  // ── Clockify (time entries) ──────────────────────────────────────────────
  "clockify": {
    "api_key": "",
    "workspace_id": "",
    // Extra attempts after a network error or 5xx response.
    "retries": 0
  },

  // ── Discord (report delivery) ────────────────────────────────────────────
  "discord": {
    // Bot token; the bot needs Send Messages in the target channel.
    "token": "",
    "channel_id": ""
  },

  // ── Audit ────────────────────────────────────────────────────────────────
  "audit": {
    // IANA timezone that defines "yesterday". Override with WLA_TIMEZONE.
    "timezone": "Asia/Colombo",
    // Cron spec with seconds: 16:00 on weekdays.
    "schedule": "0 0 16 * * 1-5",
    "concurrency": 4,
    // Step the audited day back over public holidays and weekends.
    "skip_holidays": false,
    // Show 5h 60m as 6h 0m.
    "carry_minutes": false,
    // Status server address for "wla schedule", e.g. ":8080". Empty disables it.
    "listen": ""
  },

  // ── Roster ───────────────────────────────────────────────────────────────
  // One object per person, in report order.
  "roster": [
    // {"clockify_id": "5f1a...", "discord_id": "1234567890"}
  ]
}
`

// FilePath returns the path to ~/.wla/config.json.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wla", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file at path (the default location when empty),
// creating it with annotated defaults on first run, and applies environment
// overrides.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := FilePath()
		if err != nil {
			return defaultConfig(), err
		}
		path = p
	}

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	fillDefaults(&cfg)
	return cfg, nil
}

// fillDefaults replaces zero-value fields with built-in defaults so callers
// always get a usable Config even if the user only partially fills in the file.
func fillDefaults(cfg *Config) {
	if cfg.Audit.Timezone == "" {
		cfg.Audit.Timezone = DefaultTimezone
	}
	if cfg.Audit.Schedule == "" {
		cfg.Audit.Schedule = DefaultSchedule
	}
	if cfg.Audit.Concurrency <= 0 {
		cfg.Audit.Concurrency = DefaultConcurrency
	}
	if cfg.Clockify.Retries < 0 {
		cfg.Clockify.Retries = 0
	}
}

func applyEnv(cfg *Config) error {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvClockifyAPIKey, &cfg.Clockify.APIKey)
	set(EnvClockifyWorkspace, &cfg.Clockify.WorkspaceID)
	set(EnvDiscordToken, &cfg.Discord.Token)
	set(EnvDiscordChannel, &cfg.Discord.ChannelID)
	set(EnvTimezone, &cfg.Audit.Timezone)
	if v, ok := os.LookupEnv(EnvSkipHolidays); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvSkipHolidays, v, err)
		}
		cfg.Audit.SkipHolidays = b
	}
	return nil
}

// OneShot reports whether the process runs under CI and should deliver a
// single report and exit.
func OneShot() bool {
	return os.Getenv(EnvOneShot) != ""
}

// Location loads the configured civil timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Audit.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Audit.Timezone, err)
	}
	return loc, nil
}

// ValidateFetch checks the settings needed to query the time tracker.
func (c Config) ValidateFetch() error {
	var errs []error
	if c.Clockify.APIKey == "" {
		errs = append(errs, fmt.Errorf("clockify api_key is not set (or %s)", EnvClockifyAPIKey))
	}
	if c.Clockify.WorkspaceID == "" {
		errs = append(errs, fmt.Errorf("clockify workspace_id is not set (or %s)", EnvClockifyWorkspace))
	}
	if err := c.ValidateRoster(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateRoster checks that every roster entry can be fetched and mentioned.
func (c Config) ValidateRoster() error {
	if len(c.Roster) == 0 {
		return errors.New("roster is empty")
	}
	for i, p := range c.Roster {
		if p.ExternalID == "" || p.DisplayHandle == "" {
			return fmt.Errorf("roster entry %d needs both clockify_id and discord_id", i+1)
		}
	}
	return nil
}

// ValidateDelivery checks the settings needed to post the report.
func (c Config) ValidateDelivery() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, fmt.Errorf("discord token is not set (or %s)", EnvDiscordToken))
	}
	if c.Discord.ChannelID == "" {
		errs = append(errs, fmt.Errorf("discord channel_id is not set (or %s)", EnvDiscordChannel))
	}
	return errors.Join(errs...)
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
