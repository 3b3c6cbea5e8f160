package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestZerologAdapter_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := FromZerolog(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len(), "debug must be filtered at info level")

	logger.With(Fields{"entity": "user"}).Error(context.Background(), "write failed", errors.New("boom"), Fields{"op": "update"})
	m := decodeLine(t, &buf)
	assert.Equal(t, "error", m["level"])
	assert.Equal(t, "write failed", m["message"])
	assert.Equal(t, "boom", m["error"])
	assert.Equal(t, "user", m["entity"])
	assert.Equal(t, "update", m["op"])
}

func TestZerologAdapter_TraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := FromZerolog(zerolog.New(&buf))

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.Info(ctx, "traced")
	m := decodeLine(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), m["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), m["span_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}
