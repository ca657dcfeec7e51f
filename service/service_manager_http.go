package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/c360/semreason/health"
	"github.com/c360/semreason/natsclient"
)

// initializeHTTPInfrastructure creates the mux and registers the system
// endpoints. Called early in StartAll, before services exist; idempotent so
// repeated StartAll calls are safe.
func (m *Manager) initializeHTTPInfrastructure() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpMux != nil {
		return nil
	}

	m.httpMux = http.NewServeMux()
	m.registerSystemEndpoints()
	return nil
}

// completeHTTPSetup registers service handlers and starts listening. Called
// by StartAll once every service is up so handlers see live instances.
func (m *Manager) completeHTTPSetup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpMux == nil {
		return errors.New("HTTP infrastructure not initialized")
	}
	if m.httpServer != nil {
		return errors.New("HTTP server already started")
	}

	if err := m.registerServiceHandlers(); err != nil {
		return fmt.Errorf("failed to register service handlers: %w", err)
	}
	m.registerOpenAPIEndpoints()

	m.httpServer = &http.Server{
		Addr:         ":" + strconv.Itoa(m.config.HTTPPort),
		Handler:      m.httpMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	m.isHTTPManager = true

	server := m.httpServer
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// stopHTTPServer drains in-flight requests and releases the listener.
func (m *Manager) stopHTTPServer() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpServer == nil {
		return nil
	}

	logger := m.logger.With("operation", "http-shutdown")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	logger.Debug("HTTP server shutdown complete",
		"duration_ms", time.Since(start).Milliseconds())

	m.httpServer = nil
	m.httpMux = nil
	return nil
}

// registerServiceHandlers mounts every service that implements HTTPHandler
// under its URL prefix, then any components that expose HTTP endpoints.
func (m *Manager) registerServiceHandlers() error {
	for name, svc := range m.services {
		if handler, ok := svc.(HTTPHandler); ok {
			handler.RegisterHTTPHandlers("/"+serviceNameToPrefix(name), m.httpMux)
		}
	}

	if err := m.registerComponentHandlers(); err != nil {
		return fmt.Errorf("failed to register component handlers: %w", err)
	}
	return nil
}

// registerComponentHandlers mounts managed components that expose HTTP
// endpoints under their instance name.
func (m *Manager) registerComponentHandlers() error {
	cmService, exists := m.services["component-manager"]
	if !exists {
		return nil
	}
	cm, ok := cmService.(*ComponentManager)
	if !ok {
		// Not the real component manager (a mock in tests), nothing to mount.
		return nil
	}

	for name, mc := range cm.GetManagedComponents() {
		handler, ok := mc.Component.(interface {
			RegisterHTTPHandlers(prefix string, mux *http.ServeMux)
		})
		if !ok {
			continue
		}

		prefix := "/" + name
		handler.RegisterHTTPHandlers(prefix, m.httpMux)
		m.logger.Info("Registered component HTTP handlers",
			"component", name,
			"prefix", prefix)
	}
	return nil
}

func (m *Manager) registerOpenAPIEndpoints() {
	m.httpMux.HandleFunc("GET /openapi.json", m.handleOpenAPISpec)
	if m.config.SwaggerUI {
		m.httpMux.HandleFunc("GET /docs", m.handleSwaggerUI)
	}
}

// handleOpenAPISpec serves the combined OpenAPI specification.
func (m *Manager) handleOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, m.logger, m.generateOpenAPIDocument())
}

// handleSwaggerUI serves a minimal Swagger UI pointed at /openapi.json.
func (m *Manager) handleSwaggerUI(w http.ResponseWriter, _ *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>SemReason API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.52.5/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@3.52.5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: '/openapi.json',
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.presets.standalone],
        });
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(html))
}

// generateOpenAPIDocument merges the spec fragments of every HTTP-capable
// service into one document.
func (m *Manager) generateOpenAPIDocument() *OpenAPIDocument {
	doc := NewOpenAPIDocument(m.config.ServerInfo, ServerSpec{
		URL:         fmt.Sprintf("http://localhost:%d", m.config.HTTPPort),
		Description: "Development server",
	})

	for name, svc := range m.services {
		if handler, ok := svc.(HTTPHandler); ok {
			doc.MergeFragment("/"+serviceNameToPrefix(name), handler.OpenAPISpec())
		}
	}
	return doc
}

// serviceNameToPrefix maps a service name to its URL prefix.
func serviceNameToPrefix(serviceName string) string {
	switch serviceName {
	case "component-manager":
		return "components"
	case "message-logger":
		return "message-logger"
	default:
		return strings.ReplaceAll(serviceName, "-", "")
	}
}

// registerSystemEndpoints registers the health probes and service discovery
// endpoints. These work before any service is created.
func (m *Manager) registerSystemEndpoints() {
	m.httpMux.HandleFunc("GET /health", m.handleSystemHealth)
	m.httpMux.HandleFunc("GET /healthz", m.handleLiveness)
	m.httpMux.HandleFunc("GET /readyz", m.handleReadiness)

	m.httpMux.HandleFunc("GET /services", m.handleServiceList)
	m.httpMux.HandleFunc("GET /services/health", m.handleServicesHealth)
}

// handleSystemHealth probes service health plus NATS connectivity,
// records the results in the health log, and serves the aggregate.
// Unhealthy maps to 503; degraded still returns 200 with detail in the body.
func (m *Manager) handleSystemHealth(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	for name, svc := range m.services {
		m.healthLog.Update(name, svc.Health())
	}
	m.mu.RUnlock()

	if m.natsClient != nil {
		natsStatus := m.natsClient.GetStatus()
		connected := natsStatus.Status == natsclient.StatusConnected
		if connected {
			m.healthLog.Update("nats", health.NewHealthy("nats",
				fmt.Sprintf("Connected (RTT: %v)", natsStatus.RTT)))
		} else {
			m.healthLog.Update("nats", health.NewUnhealthy("nats",
				fmt.Sprintf("Disconnected: %s (failures: %d)",
					natsStatus.Status.String(), natsStatus.FailureCount)))
		}
		if m.metricsRegistry != nil {
			core := m.metricsRegistry.CoreMetrics()
			core.RecordNATSStatus(connected)
			core.RecordNATSRTT(natsStatus.RTT)
			core.RecordNATSReconnects(natsStatus.Reconnects)
			core.RecordNATSCircuitOpen(natsStatus.Status == natsclient.StatusCircuitOpen)
		}
	}

	systemHealth := m.healthLog.AggregateAll("system")

	status := http.StatusOK
	if systemHealth.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, m.logger, status, systemHealth)
}

// handleLiveness reports that the server loop is running.
func (m *Manager) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReadiness reports ready only when every service is running and
// healthy.
func (m *Manager) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ready := true
	for _, svc := range m.services {
		if svc.Status() != StatusRunning || !svc.IsHealthy() {
			ready = false
			break
		}
	}

	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("NOT READY"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

// handleServiceList returns the name, status, and health of each service.
func (m *Manager) handleServiceList(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	services := make([]map[string]any, 0, len(m.services))
	for name, svc := range m.services {
		services = append(services, map[string]any{
			"name":    name,
			"status":  svc.Status().String(),
			"healthy": svc.IsHealthy(),
		})
	}
	m.mu.RUnlock()

	writeJSON(w, m.logger, map[string]any{
		"services": services,
		"count":    len(services),
	})
}

// handleServicesHealth returns per-service health with an aggregated overall
// status.
func (m *Manager) handleServicesHealth(w http.ResponseWriter, _ *http.Request) {
	m.mu.RLock()
	var statuses []health.Status
	for _, svc := range m.services {
		statuses = append(statuses, svc.Health())
	}
	m.mu.RUnlock()

	response := struct {
		Overall  health.Status   `json:"overall"`
		Services []health.Status `json:"services"`
	}{
		Overall:  health.Aggregate("services", statuses),
		Services: statuses,
	}

	status := http.StatusOK
	if response.Overall.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, m.logger, status, response)
}
