package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected slog.Level
	}{
		{level: "debug", expected: slog.LevelDebug},
		{level: "info", expected: slog.LevelInfo},
		{level: "warn", expected: slog.LevelWarn},
		{level: "error", expected: slog.LevelError},
		{level: "ERROR", expected: slog.LevelError},
		{level: "", expected: slog.LevelInfo},
		{level: "verbose", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToLevel(tc.level))
		})
	}
}

func TestNewLoggerTo(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "warn")

	// when
	logger.Info("dropped")
	logger.Warn("kept", "ID", 7)

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, float64(7), record["ID"])
}

func TestNewDbPool_InvalidURL(t *testing.T) {
	_, err := NewDbPool(context.Background(), "postgres://%zz", time.Second)

	assert.ErrorContains(t, err, "invalid database URL")
}
