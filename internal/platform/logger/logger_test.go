package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			level, ok := ParseLevel(tc.in)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetupWritesJSONAtConfiguredLevel(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &TestLogBuffer{}
	l := setup(config.ServerConfig{LogLevel: "warn"}, buf)

	l.Info("dropped")
	l.Warn("kept", "component", "test")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "test", entries[0]["component"])
	assert.Same(t, l, slog.Default())
}

func TestSetupUsesCIHandlerUnderCI(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("GITHUB_RUN_ID", "42")
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &TestLogBuffer{}
	l := setup(config.ServerConfig{LogLevel: "info"}, buf)
	l.Info("hello")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "true", entries[0]["ci"])
	assert.Equal(t, "42", entries[0]["ci_run_id"])
	assert.Contains(t, entries[0], "timestamp_nano")
}

func TestContextLogger(t *testing.T) {
	l, buf := GetTestLogger(t)
	fallback := slog.New(slog.NewJSONHandler(&TestLogBuffer{}, nil))

	t.Run("stored logger is returned", func(t *testing.T) {
		ctx := WithLogger(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
		assert.Same(t, l, FromContextOrDefault(ctx, fallback))
	})

	t.Run("fallback when absent", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("nil fallback uses default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})

	t.Run("capture context", func(t *testing.T) {
		ctx, capture := NewLogCaptureContext(t)
		FromContext(ctx).Info("captured", "trace_id", "abc")
		AssertLogContains(t, capture, `"trace_id":"abc"`)
		assert.Empty(t, buf.String())
	})
}
