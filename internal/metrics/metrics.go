// Package metrics exports retry session activity as Prometheus metrics.
//
// Metrics are fed by the diagnostic hooks of a session, so they add nothing to the
// coordinator's critical path. Retry events can be dropped when a session outpaces its hooks,
// so retries_total and backoff_delay_seconds are approximate. Session starts and terminal
// transitions are always delivered, which keeps the session counters and the in-flight gauge exact.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
)

// DefaultNamespace is used when New is given an empty namespace.
const DefaultNamespace = "retrysentry"

// Metrics holds the collectors for retry sessions.
//
// An instance can be created only by the [New] function. The zero value is invalid.
type Metrics struct {
	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	sessionsInFlight prometheus.Gauge
	retries          *prometheus.CounterVec
	backoffDelay     *prometheus.HistogramVec
}

// New creates the collectors and registers them with registerer.
// If registerer is nil, metrics are still recorded but never registered.
func New(registerer prometheus.Registerer, namespace, subsystem string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := Metrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_started_total",
			Help:      "Number of retry sessions started",
		}, []string{"policy"}),
		sessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_finished_total",
			Help:      "Number of retry sessions finished, by terminal state",
		}, []string{"policy", "state"}),
		sessionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_in_flight",
			Help:      "Number of retry sessions currently running",
		}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "retries_total",
			Help:      "Number of retries scheduled after a failed attempt",
		}, []string{"policy"}),
		backoffDelay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backoff_delay_seconds",
			Help:      "Backoff delay chosen before a retry",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}, []string{"policy"}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.sessionsStarted,
			m.sessionsFinished,
			m.sessionsInFlight,
			m.retries,
			m.backoffDelay,
		)
	}

	return &m
}

// Options returns the session options that feed these metrics.
func (m *Metrics) Options() []retry.Option {
	return []retry.Option{
		retry.WithAttemptHook(m.ObserveAttempt),
		retry.WithStateHook(m.ObserveTransition),
	}
}

// ObserveAttempt records a scheduled retry.
func (m *Metrics) ObserveAttempt(a retry.Attempt) {
	m.retries.WithLabelValues(a.Policy).Inc()
	m.backoffDelay.WithLabelValues(a.Policy).Observe(a.Delay.Seconds())
}

// ObserveTransition records a session state change.
func (m *Metrics) ObserveTransition(t retry.Transition) {
	switch {
	case t.To == retry.StateRunning:
		m.sessionsStarted.WithLabelValues(t.Policy).Inc()
		m.sessionsInFlight.Inc()
	case t.To.Terminal():
		// A session cancelled while idle was never counted as running.
		if t.From == retry.StateRunning {
			m.sessionsInFlight.Dec()
		}
		m.sessionsFinished.WithLabelValues(t.Policy, t.To.String()).Inc()
	}
}
