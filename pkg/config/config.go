// Package config loads process configuration from environment variables.
// The CLI layer may override any field before Validate is called. Secrets
// (database password, bot token) should come from the environment.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/clickbot-dev/clickbot/pkg/query"
)

// Config holds all settings for clickbot.
type Config struct {
	// URL is the ClickHouse HTTP base URL.
	URL      string `env:"CLICKBOT_URL" env-default:"http://localhost:8123"`
	User     string `env:"CLICKBOT_USER" env-default:""`
	Password string `env:"CLICKBOT_PASSWORD" env-default:""`

	// Token is the Discord bot token.
	Token string `env:"CLICKBOT_TOKEN" env-default:""`

	// MaxRows is the hard ceiling on rows a query may return.
	MaxRows int `env:"CLICKBOT_MAX_ROWS" env-default:"10"`

	// Format is the output encoding forced onto every query.
	Format string `env:"CLICKBOT_FORMAT" env-default:"CSVWithNames"`

	// Dialect selects the SQL grammar used by the rewriter.
	Dialect string `env:"CLICKBOT_DIALECT" env-default:"clickhouse"`

	Timeout       time.Duration `env:"CLICKBOT_TIMEOUT" env-default:"30s"`
	MetricsListen string        `env:"CLICKBOT_METRICS_LISTEN" env-default:":9090"`
	LogLevel      string        `env:"CLICKBOT_LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that must fail at startup rather than at request
// time.
func (c *Config) Validate() error {
	if c.MaxRows <= 0 {
		return fmt.Errorf("max rows must be a positive integer, got %d", c.MaxRows)
	}
	if c.Format == "" {
		return fmt.Errorf("output format must not be empty")
	}
	if _, err := query.ParseDialect(c.Dialect); err != nil {
		return err
	}
	if c.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Token == "" {
		return fmt.Errorf("discord bot token is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid database URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("database URL %q must use http or https", c.URL)
	}
	return nil
}

// Endpoint returns the database URL with credentials embedded as query
// parameters, the form the ClickHouse HTTP interface accepts.
func (c *Config) Endpoint() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL %q: %w", c.URL, err)
	}
	q := u.Query()
	q.Set("user", c.User)
	q.Set("password", c.Password)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
