package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
	}{
		{"info hides debug", LevelInfo, false},
		{"debug shows debug", LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.level, FormatText)

			logger.Debug("skipped tick")
			logger.Info("collector started")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("skipped tick")))
			assert.Contains(t, buf.String(), "collector started")
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo, FormatJSON)

	logger.Warn("persist failed", "error", "disk full")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "persist failed", line["msg"])
	assert.Equal(t, "disk full", line["error"])
}

func TestSetupFromEnv(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("default is info", func(t *testing.T) {
		t.Setenv(EnvDebug, "")
		t.Setenv(EnvFormat, "")
		SetupFromEnv()
		assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
	})

	t.Run("debug enabled", func(t *testing.T) {
		t.Setenv(EnvDebug, "1")
		t.Setenv(EnvFormat, "JSON")
		SetupFromEnv()
		assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
	})
}

func TestLevel_Values(t *testing.T) {
	assert.Equal(t, Level(0), LevelInfo)
	assert.Equal(t, Level(1), LevelDebug)
	assert.Equal(t, slog.LevelInfo, Level(42).slogLevel())
}
