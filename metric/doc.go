// Package metric exposes Prometheus instrumentation for a SemReason
// process.
//
// MetricsRegistry owns the process's Prometheus registry. It comes
// pre-loaded with the platform instruments (service lifecycle gauges,
// message counters, NATS connection state) and the Go runtime
// collectors; services and reasoning components add their own
// instruments through the MetricsRegistrar interface, keyed by service
// name so the registry can unregister them when a service is torn down.
//
//	registry := metric.NewMetricsRegistry()
//
//	inferred := prometheus.NewCounter(prometheus.CounterOpts{
//		Name: "reason_inferred_triples_total",
//		Help: "Triples produced by inference runs",
//	})
//	if err := registry.RegisterCounter("reason", "inferred", inferred); err != nil {
//		return err
//	}
//
// Server serves the scrape endpoint, typically through the metrics
// service rather than directly:
//
//	srv := metric.NewServer(9090, "/metrics", registry, securityCfg)
//	go func() { _ = srv.Start() }()
//	defer srv.Stop()
//
// All metrics share the "semreason" namespace. Duplicate registrations
// are rejected with an invalid-class error so a misconfigured component
// fails its own startup instead of panicking the process.
package metric
