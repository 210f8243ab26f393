package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the outcome of service operations.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// LadderMetrics adds ladder-specific counters.
type LadderMetrics interface {
	OperationMetrics
	RecordMatchRecorded(ctx context.Context)
	RecordMatchRemoved(ctx context.Context)
	RecordReprojection(ctx context.Context, matches int, duration time.Duration)
}

type prometheusMetrics struct {
	attempts           *prometheus.CounterVec
	successes          *prometheus.CounterVec
	failures           *prometheus.CounterVec
	durations          *prometheus.HistogramVec
	matchesRecorded    prometheus.Counter
	matchesRemoved     prometheus.Counter
	reprojections      prometheus.Counter
	reprojectionTime   prometheus.Histogram
	reprojectedMatches prometheus.Histogram
}

// NewPrometheusMetrics registers the ladder metrics on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) LadderMetrics {
	labels := []string{"operation", "service"}
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_success_total",
			Help: "Service operations that completed without an infrastructure error.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_failures_total",
			Help: "Service operations that failed with an error or panic.",
		}, labels),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, labels),
		matchesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_matches_recorded_total",
			Help: "Matches appended to any ladder.",
		}),
		matchesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_matches_removed_total",
			Help: "Matches tombstoned on any ladder.",
		}),
		reprojections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_reprojections_total",
			Help: "Full reprojections committed.",
		}),
		reprojectionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_reprojection_duration_seconds",
			Help:    "Time spent replaying a ladder's match history.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		reprojectedMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_reprojection_matches",
			Help:    "Matches folded per reprojection.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	reg.MustRegister(
		m.attempts, m.successes, m.failures, m.durations,
		m.matchesRecorded, m.matchesRemoved,
		m.reprojections, m.reprojectionTime, m.reprojectedMatches,
	)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordMatchRecorded(context.Context) { m.matchesRecorded.Inc() }

func (m *prometheusMetrics) RecordMatchRemoved(context.Context) { m.matchesRemoved.Inc() }

func (m *prometheusMetrics) RecordReprojection(_ context.Context, matches int, duration time.Duration) {
	m.reprojections.Inc()
	m.reprojectionTime.Observe(duration.Seconds())
	m.reprojectedMatches.Observe(float64(matches))
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordMatchRecorded(context.Context)                                    {}
func (NoopMetrics) RecordMatchRemoved(context.Context)                                     {}
func (NoopMetrics) RecordReprojection(context.Context, int, time.Duration)                 {}
