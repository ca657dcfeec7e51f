// Package health models component health for the reasoning platform.
//
// A [Status] reports one component as healthy, degraded, or unhealthy,
// with a message, timestamp, optional [Metrics], and optional
// sub-statuses. [Aggregate] rolls a set of statuses into one report:
// any unhealthy member makes the whole unhealthy, otherwise any
// degraded member makes it degraded.
//
// [FromComponentHealth] bridges a component's self-reported health into
// a Status, running its last error through [Redact] so connection
// strings, file paths, and credentials never appear on an HTTP health
// endpoint.
//
// [Monitor] is a thread-safe registry of last-known statuses. The
// service manager records each probe into one and serves the aggregate
// from it:
//
//	monitor := health.NewMonitor()
//	monitor.Update("nats", health.NewHealthy("nats", "Connected"))
//	monitor.Update("reason", svc.Health())
//	system := monitor.AggregateAll("system")
package health
