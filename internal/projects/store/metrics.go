package store

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

// Metrics holds Prometheus collectors for store operations.
//
//   - tracker_store_operations_total{op,outcome}
//   - tracker_store_operation_duration_seconds{op}
//   - tracker_store_cache_requests_total{result}
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Cache      *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Project store operations by outcome.",
		}, []string{"op", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tracker",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Project store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tracker",
			Subsystem: "store",
			Name:      "cache_requests_total",
			Help:      "Project cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Duration, m.Cache)
	}
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.Operations.WithLabelValues(op, outcome(err)).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) cacheResult(hit bool) {
	if hit {
		m.Cache.WithLabelValues("hit").Inc()
		return
	}
	m.Cache.WithLabelValues("miss").Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	}
	return "error"
}
