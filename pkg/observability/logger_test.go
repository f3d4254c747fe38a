package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:       LogLevelInfo,
		Format:      LogFormatText,
		Output:      &buf,
		ServiceName: "nowqueue",
	})

	logger.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "service=nowqueue")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:       LogLevelInfo,
		Format:      LogFormatJSON,
		Output:      &buf,
		ServiceName: "nowqueue",
	})

	logger.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "nowqueue", entry["service"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelWarn,
		Format: LogFormatText,
		Output: &buf,
	})

	logger.Info("should be filtered")
	logger.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestLoggerFromEnv_Production(t *testing.T) {
	t.Setenv("NOWQ_ENV", "production")

	logger := LoggerFromEnv()
	assert.NotNil(t, logger)
}

func TestParseSlogLevel_Unknown(t *testing.T) {
	assert.Equal(t, parseSlogLevel("bogus"), parseSlogLevel(LogLevelInfo))
}
