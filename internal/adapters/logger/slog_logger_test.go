package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestSlogLogger_LogsJSONWithoutTraceContext(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewWithWriter(buf, slog.LevelDebug)

	l.Info(context.Background(), "user registered", "user_id", "u1")

	line := decodeLine(t, buf)
	assert.Equal(t, "user registered", line["msg"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "account-service", line["service"])
	assert.NotContains(t, line, "trace_id")
}

func TestSlogLogger_LogsWithTraceIDWhenSegmentExists(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewWithWriter(buf, slog.LevelDebug)

	ctx, seg := xray.BeginSegment(context.Background(), "test-segment")
	defer seg.Close(nil)

	l.Warn(ctx, "token rejected")

	line := decodeLine(t, buf)
	assert.Equal(t, seg.TraceID, line["trace_id"])
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewWithWriter(buf, ParseLevel("warn"))

	l.Debug(context.Background(), "noise")
	l.Info(context.Background(), "noise")
	assert.Zero(t, buf.Len())

	l.Error(context.Background(), "store unavailable")
	assert.Contains(t, buf.String(), "store unavailable")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
