// Package metrics exposes Prometheus counters for identity store writes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const (
	OutcomeSuccess            = "success"
	OutcomeConcurrencyFailure = "concurrency_failure"
	OutcomeDuplicate          = "duplicate"
	OutcomeError              = "error"
)

// Recorder counts document writes. A nil *Recorder records nothing.
type Recorder struct {
	writes      *prometheus.CounterVec
	fieldWrites *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them with reg when it is not nil.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_store_writes_total",
			Help: "Total number of whole-document writes by entity, operation and outcome.",
		}, []string{"entity", "op", "outcome"}),
		fieldWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_store_field_writes_total",
			Help: "Total number of single-field writes by entity and field.",
		}, []string{"entity", "field"}),
	}

	if reg == nil {
		log.Warn().Msg("Prometheus registry is nil, identity store metrics are not registered.")
		return r
	}
	for _, c := range []prometheus.Collector{r.writes, r.fieldWrites} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register identity store metric")
		}
	}
	return r
}

func (r *Recorder) Write(entity, op, outcome string) {
	if r == nil {
		return
	}
	r.writes.WithLabelValues(entity, op, outcome).Inc()
}

func (r *Recorder) FieldWrite(entity, field string) {
	if r == nil {
		return
	}
	r.fieldWrites.WithLabelValues(entity, field).Inc()
}
