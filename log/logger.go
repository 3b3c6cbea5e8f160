// Package log is the structured logging facade used across the identity store.
package log

import "context"

// Fields are structured key/value pairs attached to a log entry.
type Fields = map[string]interface{}

// Logger defines a standard interface for logging.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	Fatal(ctx context.Context, msg string, err error, fields ...Fields) // exits the process
	With(fields Fields) Logger
}
