package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.Info().Str("key", "value").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "value", entry["key"])
}

func TestSub_TagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").Sub("engine")

	log.Debug().Msg("tick")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine", entry["subsystem"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("dropped")
	assert.Empty(t, buf.Bytes())

	log.Warn().Msg("kept")
	assert.NotEmpty(t, buf.Bytes())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, parseLevel("trace"))
	assert.Equal(t, zerolog.Disabled, parseLevel("silent"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}
