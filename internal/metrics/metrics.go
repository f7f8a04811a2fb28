// Package metrics counts gateway operations and timer transitions on a
// private Prometheus registry. A CLI process is short-lived, so the registry
// is exported to a node_exporter textfile on exit rather than served.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/gateway"
)

type Metrics struct {
	registry         *prometheus.Registry
	opsTotal         *prometheus.CounterVec
	opDuration       *prometheus.HistogramVec
	readFallbacks    *prometheus.CounterVec
	timerTransitions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnful_gateway_operations_total",
				Help: "Total number of gateway operations",
			},
			[]string{"entity", "op", "path", "outcome"},
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnful_gateway_operation_duration_seconds",
				Help:    "Gateway operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity", "op", "path"},
		),
		readFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnful_gateway_read_fallbacks_total",
				Help: "Reads that failed and were degraded to an empty result",
			},
			[]string{"entity", "op"},
		),
		timerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnful_timer_transitions_total",
				Help: "Session timer state transitions",
			},
			[]string{"transition"},
		),
	}
	m.registry.MustRegister(m.opsTotal, m.opDuration, m.readFallbacks, m.timerTransitions)
	return m
}

// Registry exposes the underlying registry for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOp implements gateway.Observer.
func (m *Metrics) ObserveOp(_ context.Context, event gateway.OpEvent) {
	m.opsTotal.WithLabelValues(event.Entity, event.Op, event.Path, outcome(event.Err)).Inc()
	m.opDuration.WithLabelValues(event.Entity, event.Op, event.Path).Observe(event.Duration.Seconds())
	if event.Fallback {
		m.readFallbacks.WithLabelValues(event.Entity, event.Op).Inc()
	}
}

// ObserveTransition records one timer transition.
func (m *Metrics) ObserveTransition(_ string, transition string) {
	m.timerTransitions.WithLabelValues(transition).Inc()
}

// WriteTextfile writes the registry in the Prometheus text format. An empty
// path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func outcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
