// Package metrics exposes Prometheus counters and histograms for wizard sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rentalwizard"

// Recorder owns the wizard collectors and the registry they live in.
// A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	navigationTotal    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	savesTotal         *prometheus.CounterVec
	saveDuration       *prometheus.HistogramVec
	exitsTotal         *prometheus.CounterVec
}

// New creates a Recorder on a fresh registry that also carries the Go and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		navigationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "navigation_total",
				Help:      "Step navigations by action and result",
			},
			[]string{"action", "result"},
		),

		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "validation_failures_total",
				Help:      "Failed step validations by step",
			},
			[]string{"step"},
		),

		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "saves_total",
				Help:      "Draft saves by operation and result",
			},
			[]string{"operation", "result"},
		),

		saveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "save_duration_seconds",
				Help:      "Latency of backend create and update calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
			},
			[]string{"operation"},
		),

		exitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "exits_total",
				Help:      "Wizard sessions that ended, by reason",
			},
			[]string{"reason"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.navigationTotal,
		r.validationFailures,
		r.savesTotal,
		r.saveDuration,
		r.exitsTotal,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Navigation records a step change attempt. ok is false when it was blocked.
func (r *Recorder) Navigation(action string, ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "blocked"
	}
	r.navigationTotal.WithLabelValues(action, result).Inc()
}

// ValidationFailure records a failed validation of step.
func (r *Recorder) ValidationFailure(step string) {
	if r == nil {
		return
	}
	r.validationFailures.WithLabelValues(step).Inc()
}

// Save records a backend create or update call.
func (r *Recorder) Save(operation string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	r.savesTotal.WithLabelValues(operation, result).Inc()
	r.saveDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Exit records the end of a session ("published" or "cancelled").
func (r *Recorder) Exit(reason string) {
	if r == nil {
		return
	}
	r.exitsTotal.WithLabelValues(reason).Inc()
}
