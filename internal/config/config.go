// Package config loads graphcal settings from a TOML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/teemow/graphcal/internal/graph"
)

// Environment variables read by Load.
const (
	EnvTenantID     = "GRAPH_TENANT_ID"
	EnvClientID     = "GRAPH_CLIENT_ID"
	EnvClientSecret = "GRAPH_CLIENT_SECRET"
	EnvUserID       = "GRAPH_USER_ID"
	EnvBaseURL      = "GRAPH_BASE_URL"
	EnvTokenURL     = "GRAPH_TOKEN_URL"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
)

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Config holds everything needed to talk to one user's calendar.
type Config struct {
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// UserID is the id or user principal name whose calendar is used
	UserID string `toml:"user_id"`

	GraphBaseURL string `toml:"graph_base_url"`
	TokenURL     string `toml:"token_url"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Demo DemoConfig `toml:"demo"`
}

// DemoConfig is the fixed event created by the demo command.
type DemoConfig struct {
	Subject     string `toml:"subject"`
	Description string `toml:"description"`

	// Start is an RFC 3339 timestamp; empty means tomorrow at 10:00 local time
	Start    string        `toml:"start"`
	Duration time.Duration `toml:"duration"`

	Required      []string `toml:"required"`
	Optional      []string `toml:"optional"`
	Resource      []string `toml:"resource"`
	OnlineMeeting bool     `toml:"online_meeting"`
}

// StartTime resolves Start relative to now.
func (d DemoConfig) StartTime(now time.Time) (time.Time, error) {
	if d.Start == "" {
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, now.Location()), nil
	}
	start, err := time.Parse(time.RFC3339, d.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid demo start %q: %w", d.Start, err)
	}
	return start, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		GraphBaseURL: graph.DefaultBaseURL,
		LogLevel:     "info",
		LogFormat:    "text",
		Demo: DemoConfig{
			Subject:     "graphcal demo event",
			Description: "Created by graphcal demo.",
			Duration:    time.Hour,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (skipped
// when empty) and the environment, in increasing order of precedence. envFile
// is loaded into the environment first; a missing envFile is ignored.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, key := range undecoded {
				keys[i] = key.String()
			}
			return nil, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	for name, field := range map[string]*string{
		EnvTenantID:     &c.TenantID,
		EnvClientID:     &c.ClientID,
		EnvClientSecret: &c.ClientSecret,
		EnvUserID:       &c.UserID,
		EnvBaseURL:      &c.GraphBaseURL,
		EnvTokenURL:     &c.TokenURL,
		EnvLogLevel:     &c.LogLevel,
		EnvLogFormat:    &c.LogFormat,
	} {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			*field = value
		}
	}
}

// Credentials returns the OAuth client credentials.
func (c *Config) Credentials() graph.Credentials {
	return graph.Credentials{
		TenantID:     c.TenantID,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
	}
}

// Validate reports every setting required to reach the calendar that is
// missing, naming the environment variable that sets it.
func (c *Config) Validate() error {
	var missing []string
	if c.TenantID == "" && c.TokenURL == "" {
		missing = append(missing, "tenant id ("+EnvTenantID+")")
	}
	if c.ClientID == "" {
		missing = append(missing, "client id ("+EnvClientID+")")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret ("+EnvClientSecret+")")
	}
	if c.UserID == "" {
		missing = append(missing, "user id ("+EnvUserID+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
