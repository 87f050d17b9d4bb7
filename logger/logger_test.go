package logger

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should return fallback logger when none in context", func(t *testing.T) {
		logger := FromContext(t.Context())
		require.NotNil(t, logger)
		logger.Info("from fallback")
	})

	t.Run("Should return fallback logger when wrong type stored", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not-a-logger")
		logger := FromContext(ctx)
		require.NotNil(t, logger)
	})

	t.Run("Should return fallback logger when nil logger stored", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, (Logger)(nil))
		logger := FromContext(ctx)
		require.NotNil(t, logger)
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	cases := []struct {
		level    LogLevel
		expected int
	}{
		{DebugLevel, -4},
		{InfoLevel, 0},
		{WarnLevel, 4},
		{ErrorLevel, 8},
		{DisabledLevel, 1000},
		{LogLevel("bogus"), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("Should honor provided config", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})
		l.Info("hello there")
		assert.Contains(t, buf.String(), "hello there")
	})

	t.Run("Should fall back to a default when cfg is nil", func(t *testing.T) {
		l := NewLogger(nil)
		require.NotNil(t, l)
		l.Info("default config path")
	})

	t.Run("Should emit JSON when requested", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true, TimeFormat: "15:04:05"})
		l.Info("structured")
		out := buf.String()
		assert.Contains(t, out, "structured")
		assert.True(t, strings.Contains(out, "{") && strings.Contains(out, "}"))
	})
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})
	child := base.With("component", "firing", "op", "fire")
	child.Info("fired task")

	out := buf.String()
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "firing")
	assert.Contains(t, out, "fired task")
}

func TestConfigDefaults(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, InfoLevel, cfg.Level)
		assert.Equal(t, os.Stdout, cfg.Output)
		assert.False(t, cfg.JSON)
		assert.Equal(t, "15:04:05", cfg.TimeFormat)
	})

	t.Run("TestConfig", func(t *testing.T) {
		cfg := TestConfig()
		assert.Equal(t, DisabledLevel, cfg.Level)
		assert.Equal(t, io.Discard, cfg.Output)
	})
}

func TestIsTestEnvironment(t *testing.T) {
	assert.True(t, IsTestEnvironment())
}

func TestLoggerLevels(t *testing.T) {
	t.Run("Should respect the configured threshold", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf, TimeFormat: "15:04:05"})
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("Should silence everything at DisabledLevel", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DisabledLevel, Output: &buf, TimeFormat: "15:04:05"})
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")
		assert.Empty(t, buf.String())
	})
}
