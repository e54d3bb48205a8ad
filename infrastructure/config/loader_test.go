package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ylexus/google-issue-193814298/infrastructure/ratelimit"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
probe:
  interval: 30s
  missed_ticks: back-to-back
google:
  callback_port: 9999
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Probe.Interval != 30*time.Second {
		t.Errorf("expected interval 30s, got %s", cfg.Probe.Interval)
	}
	if cfg.Probe.MissedTicks != "back-to-back" {
		t.Errorf("expected back-to-back, got %q", cfg.Probe.MissedTicks)
	}
	if cfg.Google.CallbackPort != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Google.CallbackPort)
	}
	if cfg.Probe.MarkerName != DefaultMarkerName {
		t.Errorf("expected default marker name, got %q", cfg.Probe.MarkerName)
	}
	if cfg.Upload.MimeType != DefaultMimeType {
		t.Errorf("expected default mime type, got %q", cfg.Upload.MimeType)
	}
	if cfg.Google.TokenDirectory != DefaultTokenDirectory() {
		t.Errorf("expected default token directory, got %q", cfg.Google.TokenDirectory)
	}
}

func TestLoad_RateLimitPerAPI(t *testing.T) {
	path := writeConfig(t, `
rate_limit:
  photos:
    requests_per_second: 1.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RateLimit.Photos.RequestsPerSecond != 1.5 {
		t.Errorf("expected photos rate 1.5, got %v", cfg.RateLimit.Photos.RequestsPerSecond)
	}
	if want := ratelimit.Defaults[ratelimit.Photos].Burst; cfg.RateLimit.Photos.Burst != want {
		t.Errorf("expected default photos burst %d, got %d", want, cfg.RateLimit.Photos.Burst)
	}
	if want := ratelimit.Defaults[ratelimit.Drive].RequestsPerSecond; cfg.RateLimit.Drive.RequestsPerSecond != want {
		t.Errorf("expected default drive rate %v, got %v", want, cfg.RateLimit.Drive.RequestsPerSecond)
	}
}

func TestAPILimit_Limiter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	limiter := APILimit{RequestsPerSecond: 0.001, Burst: 1}.Limiter(ratelimit.Drive)

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("expected the first request to pass, got %v", err)
	}
	if err := limiter.Wait(ctx); err == nil {
		t.Error("expected the configured burst of 1 to hold back the second request")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "malformed yaml",
			content: "probe: [unterminated",
			errMsg:  "failed to parse config file",
		},
		{
			name:    "bad duration",
			content: "probe:\n  interval: soon\n",
			errMsg:  "failed to parse config file",
		},
		{
			name:    "invalid value",
			content: "probe:\n  interval: -5s\n",
			errMsg:  "probe.interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !containsString(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Probe.Interval != DefaultInterval {
		t.Errorf("expected default interval, got %s", cfg.Probe.Interval)
	}

	cfg, err = LoadOrDefault("")
	if err != nil || cfg == nil {
		t.Fatalf("expected defaults for empty path, got %v, %v", cfg, err)
	}

	if _, err := LoadOrDefault(writeConfig(t, "google: [")); err == nil {
		t.Error("expected parse error to be reported")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Probe.Interval = 90 * time.Second
	cfg.Google.TokenDirectory = "/var/tmp/tokens"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty token directory", mutate: func(c *Config) { c.Google.TokenDirectory = "" }},
		{name: "port zero", mutate: func(c *Config) { c.Google.CallbackPort = 0 }},
		{name: "port too large", mutate: func(c *Config) { c.Google.CallbackPort = 70000 }},
		{name: "zero interval", mutate: func(c *Config) { c.Probe.Interval = 0 }},
		{name: "unknown policy", mutate: func(c *Config) { c.Probe.MissedTicks = "concurrent" }},
		{name: "empty mime type", mutate: func(c *Config) { c.Upload.MimeType = "" }},
		{name: "negative photos burst", mutate: func(c *Config) { c.RateLimit.Photos.Burst = -1 }},
		{name: "negative drive rate", mutate: func(c *Config) { c.RateLimit.Drive.RequestsPerSecond = -1 }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func containsString(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
