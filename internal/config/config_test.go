package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8088", cfg.API.BaseURL)
	assert.Equal(t, 300*time.Millisecond, cfg.PreviewDelay())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Devserver.Seed)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://admin.example.com/api"
  timeout_seconds: 5
  headers:
    Authorization: "Bearer abc"
console:
  preview_delay_ms: 500
logging:
  level: debug
  format: console
devserver:
  seed: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://admin.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, "Bearer abc", cfg.API.Headers["Authorization"])
	assert.Equal(t, 500*time.Millisecond, cfg.PreviewDelay())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout(), "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Devserver.Seed)
	assert.NotEmpty(t, cfg.Devserver.DBPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://file.example\n")
	t.Setenv(EnvBaseURL, "http://env.example:9000")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogPath, "/tmp/iot.log")
	t.Setenv(EnvDevserverAddr, ":9999")
	t.Setenv(EnvDBPath, "/tmp/iot.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example:9000", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/iot.log", cfg.Logging.Path)
	assert.Equal(t, ":9999", cfg.Devserver.Addr)
	assert.Equal(t, "/tmp/iot.db", cfg.Devserver.DBPath)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url is required"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "not an absolute URL"},
		{"zero api timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }, "api.timeout_seconds must be positive"},
		{"negative api timeout", func(c *Config) { c.API.TimeoutSeconds = -3 }, "api.timeout_seconds"},
		{"negative delay", func(c *Config) { c.Console.PreviewDelayMS = -1 }, "preview_delay_ms"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"no db path", func(c *Config) { c.Devserver.DBPath = "" }, "devserver.db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = ""
	cfg.Devserver.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "devserver.addr")
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, ".iotconsole", filepath.Base(filepath.Dir(DefaultPath())))
}
