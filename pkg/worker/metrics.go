package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/semreason/metric"
)

// poolMetrics is the Prometheus view of a pool. All record methods are
// nil-receiver safe so the hot path never branches on "metrics enabled".
type poolMetrics struct {
	queueDepth  prometheus.Gauge
	utilization prometheus.Gauge
	submitted   prometheus.Counter
	processed   prometheus.Counter
	failed      prometheus.Counter
	dropped     prometheus.Counter
	duration    *prometheus.HistogramVec
}

// WithMetricsRegistry registers pool gauges, counters and a processing
// histogram under the given name prefix (for example "reason_runs").
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		if registry == nil || prefix == "" {
			return
		}
		p.metrics = newPoolMetrics(registry, prefix)
	}
}

func newPoolMetrics(registry *metric.MetricsRegistry, prefix string) *poolMetrics {
	m := &poolMetrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_queue_depth",
			Help: "Current worker pool queue depth",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_utilization",
			Help: "Worker pool queue utilization (0-1)",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_submitted_total",
			Help: "Total work items submitted",
		}),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_processed_total",
			Help: "Total work items processed",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_failed_total",
			Help: "Total work items whose processing returned an error",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_dropped_total",
			Help: "Total work items dropped because the queue was full",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_processing_duration_seconds",
			Help:    "Time spent processing work items",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"status"}),
	}

	const owner = "worker_pool"
	registry.RegisterGauge(owner, prefix+"_queue_depth", m.queueDepth)
	registry.RegisterGauge(owner, prefix+"_utilization", m.utilization)
	registry.RegisterCounter(owner, prefix+"_submitted_total", m.submitted)
	registry.RegisterCounter(owner, prefix+"_processed_total", m.processed)
	registry.RegisterCounter(owner, prefix+"_failed_total", m.failed)
	registry.RegisterCounter(owner, prefix+"_dropped_total", m.dropped)
	registry.RegisterHistogramVec(owner, prefix+"_processing_duration_seconds", m.duration)
	return m
}

func (m *poolMetrics) recordSubmit(depth int) {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *poolMetrics) recordDrop() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *poolMetrics) recordResult(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.processed.Inc()
	status := "success"
	if err != nil {
		m.failed.Inc()
		status = "error"
	}
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// observeQueue refreshes depth and utilization once a second while the
// pool runs.
func (p *Pool[T]) observeQueue(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case <-ticker.C:
			depth := float64(len(p.queue))
			p.metrics.queueDepth.Set(depth)
			p.metrics.utilization.Set(depth / float64(p.queueSize))
		}
	}
}
