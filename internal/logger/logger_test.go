package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithConfig_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "INFO", Format: "json", Output: &buf}))

	ctx := context.Background()
	Debug(ctx, "hidden")
	Info(ctx, "Run started", "tickers", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Run started", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 2, entry["tickers"])
	assert.Contains(t, entry, "time")
}

func TestKeyFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "WARN", Format: "text", Output: &buf}))

	KeyFailure(context.Background(), "fetch", "AAPL", "2024-03-01", errors.New("timeout"))

	out := buf.String()
	assert.Contains(t, out, "Key skipped")
	assert.Contains(t, out, "type=KEY_FAILURE")
	assert.Contains(t, out, "stage=fetch")
	assert.Contains(t, out, "ticker=AAPL")
	assert.Contains(t, out, "error=timeout")
}

func TestDetailedLoggingAddsSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "ERROR", Format: "text", DetailedLogging: true, Output: &buf}))
	defer func() { _ = InitWithConfig(LogConfig{Level: "INFO", Format: "text", Output: &bytes.Buffer{}}) }()

	assert.True(t, IsDebugEnabled())
	Debug(context.Background(), "visible")
	assert.Contains(t, buf.String(), "source.function=")
	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestOperationTimer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(LogConfig{Level: "DEBUG", Format: "text", Output: &buf}))

	op := StartOperation(context.Background(), "unit", "key", "value")
	require.NotNil(t, op.GetContext())
	op.End("rows", 3)
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), "rows=3")

	buf.Reset()
	StartOperation(context.Background(), "unit").EndWithError(errors.New("bad"))
	assert.Contains(t, buf.String(), "Operation failed")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("WARN").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}
