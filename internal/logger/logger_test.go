package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, true))
	assert.Equal(t, slog.LevelInfo, LevelFromFlags(false, true))
	assert.Equal(t, slog.LevelWarn, LevelFromFlags(false, false))
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, slog.LevelInfo, FormatJSON)
	require.NoError(t, err)

	l.Info("evaluating pull request", "pr", "acme/widgets#1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "evaluating pull request", record["msg"])
	assert.Equal(t, "acme/widgets#1", record["pr"])
}

func TestPrettyHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	l.With("delivery", "abc").Info("check published", "pr", "acme/widgets#1", "conclusion", "success")

	assert.Equal(t, "[INFO]  check published delivery=abc pr=acme/widgets#1 conclusion=success\n", buf.String())
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	l.Info("hidden")
	l.Warn("shown")

	assert.Equal(t, "[WARN]  shown\n", buf.String())
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithGroup("github").Debug("request", "status", "404")

	assert.True(t, strings.Contains(buf.String(), "github.status=404"), buf.String())
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, slog.LevelDebug, FormatText)
	require.NoError(t, err)

	ctx := WithLogger(context.Background(), l)
	ctx = With(ctx, "event", "pull_request")

	Error(ctx, "evaluation failed", assert.AnError, "pr", "acme/widgets#2")

	out := buf.String()
	assert.Contains(t, out, "event=pull_request")
	assert.Contains(t, out, "pr=acme/widgets#2")
	assert.Contains(t, out, "error=")
}

func TestFromContext_Default(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
