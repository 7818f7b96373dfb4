package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/config"
)

func readLastEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	entry := readLastEntry(t, logFile)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Contains(t, entry, "source")
}

func TestInitializeLogger_RunsOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	dir := t.TempDir()
	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: filepath.Join(dir, "a.log")})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: filepath.Join(dir, "b.log")})
	require.NoError(t, err)

	assert.Same(t, first, second)
	_, err = os.Stat(filepath.Join(dir, "b.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.With("component", "cleaner").InfoContext(ctx, "test with trace")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-trace-123", entry["trace_id"])
	assert.Equal(t, "cleaner", entry["component"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.level))
		})
	}
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(logger, "normalizer").Info("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "normalizer", entry["component"])
}
