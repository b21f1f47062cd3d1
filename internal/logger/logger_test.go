package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects logger output to a buffer and restores stdout after the
// test.
func capture(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	InitWithWriter(buf, level, format, false)
	t.Cleanup(func() {
		InitWithWriter(os.Stdout, "INFO", "text", false)
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "WARN", "text")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestSetLevel_Runtime(t *testing.T) {
	buf := capture(t, "INFO", "text")

	Debug("before")
	SetLevel("DEBUG")
	Debug("after")

	out := buf.String()
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestSetLevel_IgnoresInvalid(t *testing.T) {
	buf := capture(t, "INFO", "text")

	SetLevel("VERBOSE")
	Info("still info")

	assert.Contains(t, buf.String(), "still info")
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "INFO", "json")

	Info("structured message", "service", "api", "port", 8080)

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "structured message", entry["msg"])
	assert.Equal(t, "api", entry["service"])
	assert.EqualValues(t, 8080, entry["port"])
}

func TestTextFormat_IncludesFields(t *testing.T) {
	buf := capture(t, "INFO", "text")

	Info("listening", KeyComponent, "supervisor", "port", 8080)

	out := buf.String()
	assert.Contains(t, out, "listening")
	assert.Contains(t, out, "supervisor")
	assert.Contains(t, out, "8080")
}

func TestWith_BindsAttributes(t *testing.T) {
	buf := capture(t, "INFO", "json")

	log := With(KeyComponent, "janitor")
	log.Info("pruned")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "janitor", entry[KeyComponent])
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
}
