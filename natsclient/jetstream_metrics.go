package natsclient

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/semreason/metric"
)

// jetstreamMetrics exposes Prometheus metrics for the streams and
// consumers this client has created or accessed. All methods tolerate a
// nil receiver so callers never have to check whether metrics are on.
type jetstreamMetrics struct {
	streamMessages *prometheus.GaugeVec
	streamBytes    *prometheus.GaugeVec
	streamState    *prometheus.GaugeVec // 1 active, 0 unreachable

	consumerPending     *prometheus.GaugeVec
	consumerDelivered   *prometheus.CounterVec
	consumerAcked       *prometheus.CounterVec
	consumerRedelivered *prometheus.CounterVec

	errors *prometheus.CounterVec // by operation

	mu        sync.RWMutex
	streams   map[string]jetstream.Stream
	consumers map[string]jetstream.Consumer
}

func jsGauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "semreason",
		Subsystem: "jetstream",
		Name:      name,
		Help:      help,
	}, labels)
}

func jsCounter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semreason",
		Subsystem: "jetstream",
		Name:      name,
		Help:      help,
	}, labels)
}

// newJetStreamMetrics builds the metric set and registers it. A nil
// registry disables metrics and returns a nil collector.
func newJetStreamMetrics(registry *metric.MetricsRegistry) (*jetstreamMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &jetstreamMetrics{
		streamMessages: jsGauge("stream_messages",
			"Current number of messages in stream", "stream"),
		streamBytes: jsGauge("stream_bytes",
			"Storage bytes used by stream", "stream"),
		streamState: jsGauge("stream_state",
			"Stream state (1=active, 0=inactive)", "stream"),

		consumerPending: jsGauge("consumer_pending_messages",
			"Number of pending messages for consumer", "stream", "consumer"),
		consumerDelivered: jsCounter("consumer_delivered_total",
			"Total messages delivered to consumer", "stream", "consumer"),
		consumerAcked: jsCounter("consumer_acked_total",
			"Total messages acknowledged by consumer", "stream", "consumer"),
		consumerRedelivered: jsCounter("consumer_redelivered_total",
			"Total messages redelivered to consumer", "stream", "consumer"),

		errors: jsCounter("operation_errors_total",
			"Total number of JetStream operation errors", "operation"),

		streams:   make(map[string]jetstream.Stream),
		consumers: make(map[string]jetstream.Consumer),
	}

	gauges := map[string]*prometheus.GaugeVec{
		"stream_messages":  m.streamMessages,
		"stream_bytes":     m.streamBytes,
		"stream_state":     m.streamState,
		"consumer_pending": m.consumerPending,
	}
	for name, gv := range gauges {
		if err := registry.RegisterGaugeVec("jetstream", name, gv); err != nil {
			return nil, err
		}
	}

	counters := map[string]*prometheus.CounterVec{
		"consumer_delivered":   m.consumerDelivered,
		"consumer_acked":       m.consumerAcked,
		"consumer_redelivered": m.consumerRedelivered,
		"errors":               m.errors,
	}
	for name, cv := range counters {
		if err := registry.RegisterCounterVec("jetstream", name, cv); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// trackStream registers a stream for periodic stats collection
func (m *jetstreamMetrics) trackStream(name string, stream jetstream.Stream) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams[name] = stream
	m.streamState.WithLabelValues(name).Set(1)
}

// trackConsumer registers a consumer for periodic stats collection
func (m *jetstreamMetrics) trackConsumer(streamName, consumerName string, consumer jetstream.Consumer) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumers[streamName+":"+consumerName] = consumer
}

// recordError counts a failed JetStream operation
func (m *jetstreamMetrics) recordError(operation string) {
	if m != nil {
		m.errors.WithLabelValues(operation).Inc()
	}
}

// updateStats refreshes gauges and counters for every tracked stream and
// consumer. Resources that have disappeared are marked inactive or
// skipped rather than treated as errors.
func (m *jetstreamMetrics) updateStats(ctx context.Context) {
	if m == nil {
		return
	}

	m.mu.RLock()
	streams := maps.Clone(m.streams)
	consumers := maps.Clone(m.consumers)
	m.mu.RUnlock()

	for name, stream := range streams {
		info, err := stream.Info(ctx)
		if err != nil {
			m.streamState.WithLabelValues(name).Set(0)
			continue
		}

		m.streamMessages.WithLabelValues(name).Set(float64(info.State.Msgs))
		m.streamBytes.WithLabelValues(name).Set(float64(info.State.Bytes))
		m.streamState.WithLabelValues(name).Set(1)
	}

	for _, consumer := range consumers {
		info, err := consumer.Info(ctx)
		if err != nil {
			continue
		}

		stream, name := info.Stream, info.Name
		m.consumerPending.WithLabelValues(stream, name).Set(float64(info.NumPending))
		m.consumerDelivered.WithLabelValues(stream, name).Add(float64(info.Delivered.Stream))
		m.consumerAcked.WithLabelValues(stream, name).Add(float64(info.AckFloor.Stream))
		m.consumerRedelivered.WithLabelValues(stream, name).Add(float64(info.NumRedelivered))
	}
}

// startPoller launches a goroutine that refreshes stats on the given
// interval until the returned cancel function is called.
func (m *jetstreamMetrics) startPoller(ctx context.Context, interval time.Duration) context.CancelFunc {
	if m == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.updateStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}
