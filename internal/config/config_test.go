package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kai/internal/config"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Server.BaseURL != "https://api.kai.chat" {
		t.Fatalf("unexpected base url: %q", cfg.Server.BaseURL)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "kai")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Queue.Capacity != 100 || cfg.Queue.MaxUploadRetries != 3 {
		t.Fatalf("unexpected queue defaults: %+v", cfg.Queue)
	}
	if cfg.Queue.Origin != "web" {
		t.Fatalf("unexpected default origin: %q", cfg.Queue.Origin)
	}
	if !strings.HasSuffix(cfg.QueueDBPath(), "outbox.db") {
		t.Fatalf("unexpected queue db path: %q", cfg.QueueDBPath())
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
base_url = "https://kai.example.com/"
request_timeout = 0

[queue]
capacity = 10
origin = " Mobile "

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Server.BaseURL != "https://kai.example.com" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeout != 30 {
		t.Fatalf("expected default request timeout, got %d", cfg.Server.RequestTimeout)
	}
	if cfg.Queue.Capacity != 10 {
		t.Fatalf("expected capacity 10, got %d", cfg.Queue.Capacity)
	}
	if cfg.Queue.Origin != "mobile" {
		t.Fatalf("expected normalized origin mobile, got %q", cfg.Queue.Origin)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized format json, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		keyword string
	}{
		{
			name:    "relative base url",
			mutate:  func(c *config.Config) { c.Server.BaseURL = "api.kai.chat" },
			keyword: "base_url",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *config.Config) { c.Server.BaseURL = "ftp://api.kai.chat" },
			keyword: "scheme",
		},
		{
			name:    "unknown origin",
			mutate:  func(c *config.Config) { c.Queue.Origin = "desktop" },
			keyword: "origin",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			keyword: "format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("expected error mentioning %q, got %v", tc.keyword, err)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Sync.DrainInterval != 30 {
		t.Fatalf("unexpected drain interval: %d", cfg.Sync.DrainInterval)
	}
}
