// Package service manages the long-running services of the reasoning
// platform: the component manager that runs inference components, the
// Prometheus exposition endpoint, and the NATS message logger. A single
// manager owns their lifecycle and fronts them with one HTTP server.
//
// # Services and lifecycle
//
// Everything the manager runs implements Service: Start, Stop, Status,
// and health reporting. BaseService supplies the shared machinery
// (status transitions, periodic health checks, activity tracking) and
// is embedded by every concrete service:
//
//	base := service.NewBaseServiceWithOptions("my-service", nil,
//	    service.WithNATS(deps.NATSClient),
//	    service.WithMetrics(deps.MetricsRegistry),
//	    service.WithLogger(deps.Logger),
//	    service.WithHealthCheck(func() error { return conn.Ping() }),
//	)
//
// Status moves Stopped -> Starting -> Running -> Stopping. IsHealthy
// reflects the most recent health check; Health returns the richer
// health.Status used by the HTTP endpoints.
//
// # Registry and manager
//
// Constructors are registered by name and instantiated from raw JSON
// config plus a Dependencies bundle:
//
//	registry := service.NewServiceRegistry()
//	if err := service.RegisterAll(registry); err != nil {
//	    return err
//	}
//
//	manager := service.NewServiceManager(registry)
//	if err := manager.ConfigureFromServices(cfg.Services, deps); err != nil {
//	    return err
//	}
//
//	if err := manager.StartAll(ctx); err != nil {
//	    return err
//	}
//	defer manager.StopAll(30 * time.Second)
//
// RegisterAll wires the built-in services: "metrics", "message-logger",
// and "component-manager". The component manager is mandatory; StartAll
// creates it with an empty config when no instance exists. StopAll
// stops services in reverse creation order and then shuts the HTTP
// server down.
//
// # HTTP endpoints
//
// StartAll brings up one HTTP server (default port 8080) in two phases:
// the system endpoints /health, /healthz, /readyz, /services, and
// /services/health are registered before any service starts, and
// service handlers are mounted once all services are running. Services
// implementing HTTPHandler get a prefix derived from their name
// (component-manager serves under /components) and contribute an
// OpenAPISpec fragment to the document served at /openapi.json. Set
// swagger_ui in the service-manager config to also serve /docs.
//
// # Runtime configuration
//
// Services implementing RuntimeConfigurable accept config changes
// without a restart. The manager watches services.* updates from the
// config manager, diffs each snapshot against the previous one, and
// starts, stops, or reconfigures services to match. Changes are
// validated with ValidateConfigUpdate before ApplyConfigUpdate runs.
// The metrics service and message logger both support this; a changed
// metrics port moves the exposition endpoint live.
//
// # Component management
//
// ComponentManager builds inference components from platform config
// through the component registry, starts them in dependency order, and
// tracks per-component state and health. With watch_config enabled it
// applies components.* KV updates at runtime, creating, restarting, or
// removing instances to match. Its HTTP surface under /components
// exposes component status and config plus flow-graph analysis:
// /flowgraph, /validate, /gaps, and /paths report how pattern
// subscriptions connect components and where data paths dead-end.
//
// # Testing
//
// Integration tests are gated on INTEGRATION_TESTS=true and share one
// testcontainer-backed NATS server through TestMain. KVTestHelper wraps
// a test bucket for config-watch tests.
package service
