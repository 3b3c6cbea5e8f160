package log

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// zerologAdapter wraps a zerolog.Logger to implement Logger.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger writing to stderr, human readable when pretty is set.
func NewZerologAdapter(level zerolog.Level, pretty bool) Logger {
	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return FromZerolog(zerolog.New(out).Level(level).With().Timestamp().Logger())
}

// FromZerolog adapts an already configured zerolog.Logger.
func FromZerolog(l zerolog.Logger) Logger {
	return &zerologAdapter{logger: l}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return &zerologAdapter{logger: zerolog.Nop()}
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// withTrace adds trace_id and span_id when ctx carries a valid span.
func withTrace(ctx context.Context, event *zerolog.Event, fields []Fields) *zerolog.Event {
	if ctx != nil {
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			event = event.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
	}
	for _, f := range fields {
		event = event.Fields(f)
	}
	return event
}

func (z *zerologAdapter) Debug(ctx context.Context, msg string, fields ...Fields) {
	withTrace(ctx, z.logger.Debug(), fields).Msg(msg)
}

func (z *zerologAdapter) Info(ctx context.Context, msg string, fields ...Fields) {
	withTrace(ctx, z.logger.Info(), fields).Msg(msg)
}

func (z *zerologAdapter) Warn(ctx context.Context, msg string, fields ...Fields) {
	withTrace(ctx, z.logger.Warn(), fields).Msg(msg)
}

func (z *zerologAdapter) Error(ctx context.Context, msg string, err error, fields ...Fields) {
	withTrace(ctx, z.logger.Error().Err(err), fields).Msg(msg)
}

func (z *zerologAdapter) Fatal(ctx context.Context, msg string, err error, fields ...Fields) {
	withTrace(ctx, z.logger.Fatal().Err(err), fields).Msg(msg)
}

// With returns a new logger with the provided fields added to its context.
// Trace information is added per call so it is always current.
func (z *zerologAdapter) With(fields Fields) Logger {
	return &zerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}
