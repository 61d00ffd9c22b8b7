package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shirasaka-flower/line-gateway/internal/ctxutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		out = append(out, entry)
	}
	return out
}

func TestNewWithWriter_FieldNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)
	log.Warn("order received")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "order received", entries[0]["message"])
	assert.Equal(t, "warning", entries[0]["level"])
	assert.Contains(t, entries[0], "timestamp")
	assert.NotContains(t, entries[0], "msg")
	assert.NotContains(t, entries[0], "time")
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)
	log.Info("dropped")
	log.Debug("dropped")
	log.Error("kept")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["message"])
	assert.Equal(t, "error", entries[0]["level"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLogger_Chaining(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).
		WithModule("notify").
		WithRequestID("req-9").
		WithField("admins", 2).
		WithFields(map[string]any{"budget": "5500"}).
		WithError(errors.New("boom"))
	log.Info("send failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "notify", e["module"])
	assert.Equal(t, "req-9", e["request_id"])
	assert.InDelta(t, 2, e["admins"], 0)
	assert.Equal(t, "5500", e["budget"])
	assert.Equal(t, "boom", e["error"])
}

func TestContextHandler_TracingValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	ctx = ctxutil.WithUserID(ctx, "U123")
	ctx = ctxutil.WithEventID(ctx, "evt-1")
	log.InfoContext(ctx, "handled")
	log.InfoContext(context.Background(), "bare")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Equal(t, "U123", entries[0]["user_id"])
	assert.Equal(t, "evt-1", entries[0]["event_id"])
	assert.NotContains(t, entries[1], "request_id")
	assert.NotContains(t, entries[1], "user_id")
	assert.NotContains(t, entries[1], "event_id")
}

func TestShutdown_NoRemote(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewWithWriter("info", &bytes.Buffer{}).Shutdown(context.Background()))

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Shutdown(context.Background()))
}

type failingHandler struct{ err error }

func (h failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h failingHandler) WithGroup(string) slog.Handler             { return h }

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var low, high bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&low, &slog.HandlerOptions{Level: slog.LevelDebug}),
		nil,
		slog.NewJSONHandler(&high, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("component", "test")

	log.Debug("debug only")
	log.Error("both")

	assert.Equal(t, 2, strings.Count(low.String(), "\n"))
	assert.Equal(t, 1, strings.Count(high.String(), "\n"))
	assert.Contains(t, high.String(), `"component":"test"`)
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	errB := errors.New("b")
	h := NewMultiHandler(failingHandler{errA}, failingHandler{errB})

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAsyncHandler_FlushOnShutdown(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	async := NewAsyncHandler(slog.NewJSONHandler(&out, nil), AsyncOptions{BufferSize: 64})
	log := slog.New(async).With("sink", "remote")

	for range 10 {
		log.Info("queued")
	}
	require.NoError(t, async.Shutdown(context.Background()))

	assert.Equal(t, 10, strings.Count(out.String(), `"msg":"queued"`))
	assert.Equal(t, 10, strings.Count(out.String(), `"sink":"remote"`))
	assert.Zero(t, async.Dropped())

	// Records after shutdown are ignored and a second shutdown is a no-op.
	log.Info("late")
	require.NoError(t, async.Shutdown(context.Background()))
	assert.NotContains(t, out.String(), "late")
}
