package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Write("user", "update", OutcomeSuccess)
	r.Write("user", "update", OutcomeConcurrencyFailure)
	r.Write("user", "update", OutcomeSuccess)
	r.FieldWrite("user", "roles")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.writes.WithLabelValues("user", "update", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("user", "update", OutcomeConcurrencyFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fieldWrites.WithLabelValues("user", "roles")))

	n, err := testutil.GatherAndCount(reg, "identity_store_writes_total", "identity_store_field_writes_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecorder_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.NotPanics(t, func() { NewRecorder(reg).Write("role", "create", OutcomeSuccess) })
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Write("user", "create", OutcomeSuccess)
		r.FieldWrite("user", "claims")
	})
}
