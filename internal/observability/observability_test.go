package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, config.LoggerConfig{Level: "info", Format: "json"})

		logger.Debug("hidden")
		logger.Info("dataset built", "rows", 3)

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `"msg":"dataset built"`)
		assert.Contains(t, out, `"service":"sales-dashboard"`)
		assert.Contains(t, out, `"rows":3`)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, config.LoggerConfig{Level: "debug", Format: "text"})

		logger.Debug("visible")

		assert.Contains(t, buf.String(), "msg=visible")
		assert.Contains(t, buf.String(), "service=sales-dashboard")
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", GetRequestID(ctx))

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(ctx, base).Info("annotated")
	Logger(context.Background(), base).Info("bare")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "request_id=req-42")
	assert.NotContains(t, string(lines[1]), "request_id")
}

func TestStartSpan(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")

	ctx, root := StartSpan(ctx, "GET /api/dashboard")
	assert.Equal(t, "req-7", root.TraceID)
	assert.Empty(t, root.ParentID)
	assert.Same(t, root, GetSpan(ctx))

	_, child := StartSpan(ctx, "dashboard")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)

	child.SetTag("panels", "7")
	child.SetError(errors.New("context canceled"))
	child.Finish()

	require.NotNil(t, child.Duration)
	assert.Equal(t, *child.Duration, child.Elapsed())
	assert.Equal(t, SpanStatusError, child.Status)
	assert.Equal(t, "context canceled", child.Error)
}

func TestStartSpan_WithoutRequestID(t *testing.T) {
	_, span := StartSpan(context.Background(), "build")
	assert.NotEmpty(t, span.TraceID)
	assert.NotEqual(t, span.TraceID, span.SpanID)
	assert.Nil(t, GetSpan(context.Background()))
}

func TestSpan_LogValue(t *testing.T) {
	_, span := StartSpan(context.Background(), "dashboard")
	span.SetTag("rows", "3")
	span.Finish()

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("done", "span", span)

	out := buf.String()
	assert.Contains(t, out, "span.operation=dashboard")
	assert.Contains(t, out, "span.status=OK")
	assert.Contains(t, out, "span.rows=3")
	assert.NotContains(t, out, "span.parent_id")
}
