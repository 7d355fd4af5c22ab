package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eladw917/cookbook-creator/internal/logging"
)

func TestConsoleLoggerWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf, Color: &noColor})
	require.NoError(t, err)

	logger = logging.NewComponentLogger(logger, "sequencer")
	logger.Info("split computed", logging.String(logging.FieldRecipe, "Pad Thai"), logging.Int("left", 8))
	logger.Debug("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, "[sequencer] split computed")
	assert.Contains(t, out, `recipe="Pad Thai"`)
	assert.Contains(t, out, "left=8")
	assert.NotContains(t, out, "hidden at info level")
	assert.NotContains(t, out, "\x1b[")
}

func TestJSONLoggerUsesLowercaseLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Debug("measured", logging.Float64("height", 42.5))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "measured", line["msg"])
	assert.Equal(t, 42.5, line["height"])
	assert.Contains(t, line, "ts")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "xml"))
}

func TestNopLoggerIsSilent(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "store")
	logger.Error("nothing happens")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
