package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return NewWithHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
	assert.Equal(t, slog.LevelInfo, getLogLevel("verbose"))
}

func TestLogUpstreamCall_Failure(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.LogUpstreamCall(context.Background(), "catalog.search.general",
		map[string]string{"per_page": "100"}, 0, 20*time.Millisecond, errors.New("timeout"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "catalog.search.general", record["call"])
	assert.Equal(t, "timeout", record["error"])
	assert.EqualValues(t, 0, record["result_count"])
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent("shows")

	l.LogAggregate(context.Background(), "Austin", true, 12, 2, 9)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shows", record["component"])
	assert.EqualValues(t, 9, record["unique"])
	assert.Equal(t, true, record["fetch_all"])
}
