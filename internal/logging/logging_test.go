package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwulff/iotconsole/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "console.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", Path: path}, "iotconsole")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("device saved")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug entry should be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "device saved", entry["msg"])
	assert.Equal(t, "iotconsole", entry["service_name"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "console", Path: path}, "")
	require.NoError(t, err)

	logger.Debug("preview scheduled")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "preview scheduled")
	assert.NotContains(t, string(data), "service_name")
}
