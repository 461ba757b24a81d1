package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(LOG_LEVEL_DEBUG))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(LOG_LEVEL_WARN))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(LOG_LEVEL_ERROR))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(LOG_LEVEL_INFO))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestLoggerFields(t *testing.T) {
	t.Setenv(logLevelEnv, LOG_LEVEL_WARN)
	SetupLogging()

	var buf bytes.Buffer
	l := newLogger(&buf, "Test")
	l.Info().Msg("dropped")
	l.Warn().Str("role", "firstname").Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "Test", line["component"])
	assert.Equal(t, "warn", line["level_name"])
	assert.Equal(t, "firstname", line["role"])
	assert.Contains(t, line, "timestamp")
}
