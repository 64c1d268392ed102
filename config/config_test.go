package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/use-agent/harvester/models"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harvester.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.DelayBetweenRequests != 5 || cfg.MaxRequestsPerMinute != 10 || cfg.Timeout != 15 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
delayBetweenRequests: 2
maxRequestsPerMinute: 30
retry:
  maxRetries: 4
  baseDelay: 500ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DelayBetweenRequests != 2 || cfg.MaxRequestsPerMinute != 30 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Timeout != 15 || !cfg.Headless {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
	if cfg.Retry.MaxRetries != 4 || cfg.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("retry section not applied: %+v", cfg.Retry)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "delayBetweenRequest: 3\n") // typo'd key
	_, err := Load(path)
	if err == nil {
		t.Fatal("unknown key must be a configuration error")
	}
	var herr *models.HarvestError
	if !errors.As(err, &herr) || herr.Code != models.ErrCodeConfig {
		t.Errorf("err = %v, want a CONFIG_INVALID HarvestError", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("missing file must be a configuration error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero cap", func(c *Config) { c.MaxRequestsPerMinute = 0 }, false},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, false},
		{"negative delay", func(c *Config) { c.DelayBetweenRequests = -1 }, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, false},
		{"no primary selectors", func(c *Config) { c.Selectors.Primary = nil }, false},
		{"no markers", func(c *Config) { c.ValidityMarkers = nil }, false},
		{"bad selector", func(c *Config) { c.Selectors.Primary = []string{"a[unterminated"} }, false},
		{"bad popup selector", func(c *Config) { c.Selectors.Popup = []string{":::"} }, false},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() = %v, wantOK=%v", err, tt.wantOK)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if cfg.Delay() != 5*time.Second {
		t.Errorf("Delay() = %v", cfg.Delay())
	}
	if cfg.TimeoutDuration() != 15*time.Second {
		t.Errorf("TimeoutDuration() = %v", cfg.TimeoutDuration())
	}
}
