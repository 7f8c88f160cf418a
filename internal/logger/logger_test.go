package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("JSONInProd", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter("prod", &buf)

		log.Info("hello", "user", "alice")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "alice", entry["user"])
	})

	t.Run("TraceIDsAdded", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter("prod", &buf)

		traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
		spanID, _ := trace.SpanIDFromHex("0102030405060708")
		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		}))

		log.InfoContext(ctx, "traced")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, traceID.String(), entry["trace_id"])
		assert.Equal(t, spanID.String(), entry["span_id"])
	})

	t.Run("ColoredErrorsLocally", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter("local", &buf)

		log.Error("boom")

		assert.Contains(t, buf.String(), "\x1b[31mboom\x1b[0m")
	})
}
