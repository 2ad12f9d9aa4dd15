// Package config loads console settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvBaseURL       = "IOTCONSOLE_BASE_URL"
	EnvLogLevel      = "IOTCONSOLE_LOG_LEVEL"
	EnvLogPath       = "IOTCONSOLE_LOG_PATH"
	EnvDevserverAddr = "IOTCONSOLE_DEVSERVER_ADDR"
	EnvDBPath        = "IOTCONSOLE_DB_PATH"
)

// Config is the full console configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Console   ConsoleConfig   `yaml:"console"`
	Logging   LoggingConfig   `yaml:"logging"`
	Devserver DevserverConfig `yaml:"devserver"`
}

// APIConfig describes the backend the pages talk to.
type APIConfig struct {
	BaseURL        string            `yaml:"base_url"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Headers        map[string]string `yaml:"headers"`
}

// ConsoleConfig tunes page behaviour.
type ConsoleConfig struct {
	PreviewDelayMS        int `yaml:"preview_delay_ms"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// LoggingConfig selects level, encoding and destination. An empty path logs
// to stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// DevserverConfig configures the local reference backend.
type DevserverConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
	Seed   bool   `yaml:"seed"`
}

// DefaultPath returns ~/.iotconsole/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".iotconsole", "config.yaml")
	}
	return filepath.Join(home, ".iotconsole", "config.yaml")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	dir := filepath.Join(".", ".iotconsole")
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".iotconsole")
	}
	return &Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8088",
			TimeoutSeconds: 15,
		},
		Console: ConsoleConfig{
			PreviewDelayMS:        300,
			RequestTimeoutSeconds: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Path:   filepath.Join(dir, "console.log"),
		},
		Devserver: DevserverConfig{
			Addr:   "127.0.0.1:8088",
			DBPath: filepath.Join(dir, "devserver.db"),
			Seed:   true,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogPath); v != "" {
		cfg.Logging.Path = v
	}
	if v := os.Getenv(EnvDevserverAddr); v != "" {
		cfg.Devserver.Addr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Devserver.DBPath = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, "api.timeout_seconds must be positive")
	}
	if c.Console.PreviewDelayMS < 0 {
		errs = append(errs, "console.preview_delay_ms must not be negative")
	}
	if c.Console.RequestTimeoutSeconds < 0 {
		errs = append(errs, "console.request_timeout_seconds must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be json or console", c.Logging.Format))
	}

	if c.Devserver.Addr == "" {
		errs = append(errs, "devserver.addr is required")
	}
	if c.Devserver.DBPath == "" {
		errs = append(errs, "devserver.db_path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// APITimeout returns the HTTP client timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PreviewDelay returns the preview debounce delay.
func (c *Config) PreviewDelay() time.Duration {
	return time.Duration(c.Console.PreviewDelayMS) * time.Millisecond
}

// RequestTimeout returns the per-request deadline used by the pages.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Console.RequestTimeoutSeconds) * time.Second
}
