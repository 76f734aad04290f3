package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func validConfig() *Config {
	return &Config{
		URL:      "http://localhost:8123",
		User:     "reader",
		Password: "secret",
		Token:    "token",
		MaxRows:  10,
		Format:   "CSVWithNames",
		Dialect:  "clickhouse",
		Timeout:  30 * time.Second,
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.URL != "http://localhost:8123" {
		t.Errorf("URL = %q, want default", cfg.URL)
	}
	if cfg.MaxRows != 10 {
		t.Errorf("MaxRows = %d, want 10", cfg.MaxRows)
	}
	if cfg.Format != "CSVWithNames" {
		t.Errorf("Format = %q, want CSVWithNames", cfg.Format)
	}
	if cfg.Dialect != "clickhouse" {
		t.Errorf("Dialect = %q, want clickhouse", cfg.Dialect)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLICKBOT_URL", "https://ch.example.net")
	t.Setenv("CLICKBOT_MAX_ROWS", "25")
	t.Setenv("CLICKBOT_DIALECT", "generic")
	t.Setenv("CLICKBOT_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.URL != "https://ch.example.net" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.MaxRows != 25 {
		t.Errorf("MaxRows = %d, want 25", cfg.MaxRows)
	}
	if cfg.Dialect != "generic" {
		t.Errorf("Dialect = %q, want generic", cfg.Dialect)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout)
	}
}

func TestLoad_BadMaxRows(t *testing.T) {
	t.Setenv("CLICKBOT_MAX_ROWS", "ten")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on a non-numeric max rows")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(*Config) {}, wantErr: ""},
		{name: "ZeroMaxRows", mutate: func(c *Config) { c.MaxRows = 0 }, wantErr: "positive integer"},
		{name: "NegativeMaxRows", mutate: func(c *Config) { c.MaxRows = -1 }, wantErr: "positive integer"},
		{name: "EmptyFormat", mutate: func(c *Config) { c.Format = "" }, wantErr: "format"},
		{name: "UnknownDialect", mutate: func(c *Config) { c.Dialect = "oracle" }, wantErr: "dialect"},
		{name: "MissingUser", mutate: func(c *Config) { c.User = "" }, wantErr: "user"},
		{name: "MissingToken", mutate: func(c *Config) { c.Token = "" }, wantErr: "token"},
		{name: "BadScheme", mutate: func(c *Config) { c.URL = "ftp://x" }, wantErr: "http"},
		{name: "ZeroTimeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.URL = "https://ch.example.net"
	cfg.User = "reader"
	cfg.Password = "s3cret"

	got, err := cfg.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	want := "https://ch.example.net?password=s3cret&user=reader"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Endpoint() mismatch (-want +got):\n%s", diff)
	}
}

func TestEndpoint_PreservesExistingQuery(t *testing.T) {
	cfg := validConfig()
	cfg.URL = "http://localhost:8123/?database=nxthdr"

	got, err := cfg.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	for _, part := range []string{"database=nxthdr", "user=reader", "password=secret"} {
		if !strings.Contains(got, part) {
			t.Errorf("Endpoint() = %q, missing %q", got, part)
		}
	}
}
