package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, slog.LevelInfo)
	log.Info("contact created", slog.Int64("id", 42))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "contact created", entry["msg"])
	assert.Equal(t, 42.0, entry["id"])
}

func TestSetupFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf, slog.LevelWarn)
	log.Info("ignored")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestSetupDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetupDefault(&buf, slog.LevelInfo)
	slog.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
