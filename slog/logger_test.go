package slog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, slog.LevelInfo, cfg.Level)
		assert.Equal(t, "json", cfg.Format)
	})

	t.Run("debug", func(t *testing.T) {
		t.Setenv("IS_DEBUG", "true")
		cfg := LoadConfig()
		assert.Equal(t, slog.LevelDebug, cfg.Level)
		assert.Equal(t, "text", cfg.Format)
	})

	t.Run("explicit level and format", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("LOG_FORMAT", "TEXT")
		cfg := LoadConfig()
		assert.Equal(t, slog.LevelWarn, cfg.Level)
		assert.Equal(t, "text", cfg.Format)
	})

	t.Run("invalid level keeps default", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		assert.Equal(t, slog.LevelInfo, LoadConfig().Level)
	})
}

func TestLogger_ErrorWithSource(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", AddSource: true, Output: &buf})

	logger.ErrorWithSource(context.Background(), 0, errors.New("boom"), "pattern", "/users")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "boom", record["msg"])
	assert.Equal(t, "/users", record["pattern"])

	source, ok := record["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, source["file"], "logger_test.go")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "text", Output: &buf})

	logger.InfoWithSource(context.Background(), 0, "hidden")
	assert.Empty(t, buf.String())

	logger.Error(errors.New("shown"))
	assert.Contains(t, buf.String(), "shown")
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	assert.NotPanics(t, func() {
		logger.Error(errors.New("dropped"))
		logger.With("k", "v").Info("dropped")
	})
}
