package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leftoverapi/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWithWriter_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info").With(slog.String("component", "test"))

	ctx := WithRequestID(context.Background(), "rid-1")
	logger.InfoContext(ctx, "hello")
	logger.DebugContext(ctx, "dropped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "rid-1", rec["request_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, closer := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	logger.Info("to file")
	require.NoError(t, closer.Close())

	assert.FileExists(t, path)
}

func TestRequestID_Empty(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}
