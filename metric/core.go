package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "semreason"

// Metrics holds the platform-level instruments every deployment exports:
// service lifecycle, message flow, and the NATS connection. Components
// register their domain instruments separately through MetricsRegistrar.
type Metrics struct {
	ServiceStatus     *prometheus.GaugeVec
	HealthCheckStatus *prometheus.GaugeVec

	MessagesReceived  *prometheus.CounterVec
	MessagesProcessed *prometheus.CounterVec

	NATSConnected   prometheus.Gauge
	NATSRTT         prometheus.Gauge
	NATSReconnects  prometheus.Gauge
	NATSCircuitOpen prometheus.Gauge
}

func gaugeVec(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func gauge(subsystem, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

// NewMetrics builds the platform instrument set. Nothing is registered
// yet; NewMetricsRegistry does that.
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: gaugeVec("service", "status",
			"Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			"service"),
		HealthCheckStatus: gaugeVec("health", "status",
			"Health check status (0=unhealthy, 1=healthy)",
			"service"),

		MessagesReceived: counterVec("messages", "received_total",
			"Total number of messages received",
			"service", "type"),
		MessagesProcessed: counterVec("messages", "processed_total",
			"Total number of messages processed",
			"service", "type", "status"),

		NATSConnected: gauge("nats", "connected",
			"NATS connection status (0=disconnected, 1=connected)"),
		NATSRTT: gauge("nats", "rtt_milliseconds",
			"NATS round-trip time in milliseconds"),
		NATSReconnects: gauge("nats", "reconnects",
			"Number of NATS reconnections since startup"),
		NATSCircuitOpen: gauge("nats", "circuit_open",
			"NATS circuit breaker state (0=closed, 1=open)"),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ServiceStatus,
		m.HealthCheckStatus,
		m.MessagesReceived,
		m.MessagesProcessed,
		m.NATSConnected,
		m.NATSRTT,
		m.NATSReconnects,
		m.NATSCircuitOpen,
	}
}

func boolToGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// RecordServiceStatus sets the lifecycle gauge for a service.
func (m *Metrics) RecordServiceStatus(service string, status int) {
	m.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordHealthStatus sets the health gauge for a service.
func (m *Metrics) RecordHealthStatus(service string, healthy bool) {
	m.HealthCheckStatus.WithLabelValues(service).Set(boolToGauge(healthy))
}

// RecordMessageReceived counts one received message.
func (m *Metrics) RecordMessageReceived(service, messageType string) {
	m.MessagesReceived.WithLabelValues(service, messageType).Inc()
}

// RecordMessageProcessed counts one processed message with its outcome.
func (m *Metrics) RecordMessageProcessed(service, messageType, status string) {
	m.MessagesProcessed.WithLabelValues(service, messageType, status).Inc()
}

// RecordNATSStatus sets the connection gauge.
func (m *Metrics) RecordNATSStatus(connected bool) {
	m.NATSConnected.Set(boolToGauge(connected))
}

// RecordNATSRTT sets the measured round-trip time.
func (m *Metrics) RecordNATSRTT(rtt time.Duration) {
	m.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnects sets the reconnect count from a status snapshot.
func (m *Metrics) RecordNATSReconnects(n int32) {
	m.NATSReconnects.Set(float64(n))
}

// RecordNATSCircuitOpen sets the circuit breaker gauge.
func (m *Metrics) RecordNATSCircuitOpen(open bool) {
	m.NATSCircuitOpen.Set(boolToGauge(open))
}
