// Package audit writes one JSON line per identityctl command that ran.
package audit

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Event is a single audit record.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Logger records audit events. A nil *Logger records nothing.
type Logger struct {
	out     zerolog.Logger
	service string
	now     func() time.Time
}

func New(w io.Writer, service string) *Logger {
	return &Logger{out: zerolog.New(w), service: service, now: time.Now}
}

// Log records action on target; err marks the event as failed.
func (l *Logger) Log(action, target string, err error) {
	if l == nil {
		return
	}
	event := Event{
		Timestamp: l.now().UTC(),
		Service:   l.service,
		Action:    action,
		Target:    target,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}

	entry, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		log.Error().Err(marshalErr).Msg("Failed to marshal audit event to JSON")
		return
	}
	l.out.Log().RawJSON("audit_event", entry).Msg("")
}
