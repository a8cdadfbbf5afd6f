package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/harvest/pkg/types"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(types.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("fetched papers", zap.Int("count", 3))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "fetched papers", entry["message"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(types.LoggingConfig{Level: "WARN"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewDefaults(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(types.LoggingConfig{}, &buf)
	require.NoError(t, err)

	log.Debug("quiet")
	log.Info("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "info")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(types.LoggingConfig{Level: "chatty"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(types.LoggingConfig{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}
