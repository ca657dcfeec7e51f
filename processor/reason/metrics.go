package reason

import (
	"github.com/c360/semreason/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// ReasonMetrics holds Prometheus metrics for the reasoning processor
type ReasonMetrics struct {
	requestsReceived *prometheus.CounterVec
	batchesReceived  *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	runIterations    prometheus.Histogram
	inferredTriples  prometheus.Histogram
	cutShortTotal    prometheus.Counter
	rateLimitedTotal prometheus.Counter
	activeContexts   prometheus.Gauge
	publishedTotal   *prometheus.CounterVec
	ruleErrorsTotal  *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
}

// newReasonMetrics creates and registers reasoning processor metrics
func newReasonMetrics(registry *metric.MetricsRegistry, _ string) *ReasonMetrics {
	// Return nil if no registry provided (nil input = nil feature pattern)
	if registry == nil {
		return nil
	}

	metrics := &ReasonMetrics{
		requestsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "requests_received_total",
			Help:      "Total reasoning requests received",
		}, []string{"subject"}),

		batchesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "batches_received_total",
			Help:      "Total triple batches received for accumulation",
		}, []string{"subject"}),

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "runs_total",
			Help:      "Reasoning runs by outcome",
		}, []string{"outcome"}),

		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "run_duration_seconds",
			Help:      "Time spent per reasoning run",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"profile"}),

		runIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "run_iterations",
			Help:      "Inference rounds executed per run",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),

		inferredTriples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "inferred_triples",
			Help:      "Triples inferred per run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),

		cutShortTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "runs_cut_short_total",
			Help:      "Runs stopped by the iteration cap before reaching a fixed point",
		}),

		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "requests_rate_limited_total",
			Help:      "Reasoning requests rejected by the rate limiter",
		}),

		activeContexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "active_contexts",
			Help:      "Triple accumulation contexts currently cached",
		}),

		publishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "published_total",
			Help:      "Messages published by the reasoning processor",
		}, []string{"subject", "kind"}),

		ruleErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "rule_errors_total",
			Help:      "Rule failures reported by permissive-mode runs",
		}, []string{"rule_name"}),

		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semreason",
			Subsystem: "reason",
			Name:      "errors_total",
			Help:      "Reasoning processor errors",
		}, []string{"error_type"}),
	}

	// Register metrics with Prometheus registry
	registry.PrometheusRegistry().MustRegister(
		metrics.requestsReceived,
		metrics.batchesReceived,
		metrics.runsTotal,
		metrics.runDuration,
		metrics.runIterations,
		metrics.inferredTriples,
		metrics.cutShortTotal,
		metrics.rateLimitedTotal,
		metrics.activeContexts,
		metrics.publishedTotal,
		metrics.ruleErrorsTotal,
		metrics.errorsTotal,
	)

	return metrics
}
