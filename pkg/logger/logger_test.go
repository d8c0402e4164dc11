package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(Options{Level: "debug", Format: "json", Output: &buf}), "task_store")

	l.Info().Str("task_id", "abc").Msg("task added")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "task_store", entry["component"])
	assert.Equal(t, "abc", entry["task_id"])
	assert.Equal(t, "task added", entry["message"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "chatty", Format: "json", Output: &buf})

	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
