package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ylexus/google-issue-193814298/infrastructure/ratelimit"

	"gopkg.in/yaml.v3"
)

// Default values used when the config file omits a setting
const (
	DefaultCallbackPort    = 8888
	DefaultApplicationName = "google-issue-193814298"
	DefaultInterval        = 60 * time.Second
	DefaultMarkerName      = "file.txt"
	DefaultMissedTicks     = "skip"
	DefaultMimeType        = "application/octet-stream"
)

// Config represents the complete application configuration
type Config struct {
	Google    GoogleConfig    `yaml:"google"`
	Probe     ProbeConfig     `yaml:"probe"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// GoogleConfig contains Google API and OAuth settings
type GoogleConfig struct {
	TokenDirectory  string `yaml:"token_directory"`
	CallbackPort    int    `yaml:"callback_port"`
	ApplicationName string `yaml:"application_name"`
}

// ProbeConfig contains the periodic Drive probe settings
type ProbeConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MarkerName  string        `yaml:"marker_name"`
	MissedTicks string        `yaml:"missed_ticks"`
}

// UploadConfig contains the Photos upload settings
type UploadConfig struct {
	MimeType string `yaml:"mime_type"`
}

// RateLimitConfig holds one client-side limit per Google API
type RateLimitConfig struct {
	Drive  APILimit `yaml:"drive"`
	Photos APILimit `yaml:"photos"`
}

// APILimit is a token bucket; zero values fall back to the API defaults
type APILimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Limiter builds the limiter for api from this setting
func (l APILimit) Limiter(api ratelimit.API) *ratelimit.Limiter {
	return ratelimit.New(api, ratelimit.Config{
		RequestsPerSecond: l.RequestsPerSecond,
		Burst:             l.Burst,
	})
}

func defaultLimit(api ratelimit.API) APILimit {
	d := ratelimit.Defaults[api]
	return APILimit{RequestsPerSecond: d.RequestsPerSecond, Burst: d.Burst}
}

// DefaultTokenDirectory returns the OAuth token cache under the system temp dir
func DefaultTokenDirectory() string {
	return filepath.Join(os.TempDir(), "google-auth")
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Google: GoogleConfig{
			TokenDirectory:  DefaultTokenDirectory(),
			CallbackPort:    DefaultCallbackPort,
			ApplicationName: DefaultApplicationName,
		},
		Probe: ProbeConfig{
			Interval:    DefaultInterval,
			MarkerName:  DefaultMarkerName,
			MissedTicks: DefaultMissedTicks,
		},
		Upload: UploadConfig{
			MimeType: DefaultMimeType,
		},
		RateLimit: RateLimitConfig{
			Drive:  defaultLimit(ratelimit.Drive),
			Photos: defaultLimit(ratelimit.Photos),
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Settings missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the program cannot run with
func (c *Config) Validate() error {
	if c.Google.TokenDirectory == "" {
		return fmt.Errorf("%w: google.token_directory is empty", ErrInvalidConfig)
	}
	if c.Google.CallbackPort < 1 || c.Google.CallbackPort > 65535 {
		return fmt.Errorf("%w: google.callback_port %d out of range", ErrInvalidConfig, c.Google.CallbackPort)
	}
	if c.Probe.Interval <= 0 {
		return fmt.Errorf("%w: probe.interval must be positive", ErrInvalidConfig)
	}
	switch c.Probe.MissedTicks {
	case "skip", "back-to-back":
	default:
		return fmt.Errorf("%w: probe.missed_ticks must be \"skip\" or \"back-to-back\", got %q", ErrInvalidConfig, c.Probe.MissedTicks)
	}
	if c.Upload.MimeType == "" {
		return fmt.Errorf("%w: upload.mime_type is empty", ErrInvalidConfig)
	}
	for name, l := range map[string]APILimit{"drive": c.RateLimit.Drive, "photos": c.RateLimit.Photos} {
		if l.RequestsPerSecond < 0 || l.Burst < 0 {
			return fmt.Errorf("%w: rate_limit.%s values must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
