package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestValOr(t *testing.T) {
	assert.Equal(t, 10, valOr(0, 10))
	assert.Equal(t, 10, valOr(-1, 10))
	assert.Equal(t, 5, valOr(5, 10))
}

func TestSetupStderrOnly(t *testing.T) {
	closer := Setup(Config{Level: "debug"})
	assert.Nil(t, closer)
	slog.Debug("stderr-only setup")
}

func TestSetupWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.log")
	closer := Setup(Config{File: path, Level: "info"})
	require.NotNil(t, closer)
	defer func() { _ = closer.Close() }()

	slog.Info("file sink check", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink check")
}

func TestColorTextHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, false)
	l := slog.New(h)

	l.Info("hello handler", "bot", "42")
	out := buf.String()
	assert.Contains(t, out, "hello handler")
	assert.Contains(t, out, "bot=42")

	buf.Reset()
	l.Debug("below level")
	assert.Empty(t, buf.String())
}
