package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "identityctl")
	l.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	l.Log("identityctl user delete", "alice", errors.New("user not found"))

	var line struct {
		Event Event `json:"audit_event"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "identityctl", line.Event.Service)
	assert.Equal(t, "identityctl user delete", line.Event.Action)
	assert.Equal(t, "alice", line.Event.Target)
	assert.False(t, line.Event.Success)
	assert.Equal(t, "user not found", line.Event.Error)
	assert.True(t, line.Event.Timestamp.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestLogger_Nil(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Log("identityctl role list", "", nil) })
}
