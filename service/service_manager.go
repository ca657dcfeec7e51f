package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/c360/semreason/config"
	"github.com/c360/semreason/health"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/pkg/retry"
	"github.com/c360/semreason/types"
)

// ManagerConfig holds the HTTP server settings for the service manager.
type ManagerConfig struct {
	HTTPPort   int      `json:"http_port"`
	SwaggerUI  bool     `json:"swagger_ui"`
	ServerInfo InfoSpec `json:"server_info"`
}

// applyDefaults fills zero-value fields with the standard defaults.
func (c *ManagerConfig) applyDefaults() {
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.ServerInfo.Title == "" {
		c.ServerInfo.Title = "SemReason API"
	}
	if c.ServerInfo.Description == "" {
		c.ServerInfo.Description = "Semantic reasoning service API"
	}
	if c.ServerInfo.Version == "" {
		c.ServerInfo.Version = "0.7.0"
	}
}

// Validate checks that the configured port is usable.
func (c ManagerConfig) Validate() error {
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	return nil
}

// Manager creates services from the registry, tracks their lifecycle, and
// fronts them with a single HTTP server for health and API endpoints.
type Manager struct {
	*BaseService

	registry *Registry
	services map[string]Service
	order    []string // registration order, reversed for shutdown
	mu       sync.RWMutex

	httpServer *http.Server
	httpMux    *http.ServeMux
	config     ManagerConfig

	// Set once completeHTTPSetup starts the server, so only the instance
	// that owns the listener tears it down.
	isHTTPManager bool

	natsClient    *natsclient.Client
	configManager *config.Manager
	configUpdates <-chan config.Update
	dependencies  *Dependencies

	// Last-known health per subsystem, refreshed by each /health probe.
	healthLog *health.Monitor
}

// NewServiceManager creates a manager that builds services from registry.
func NewServiceManager(registry *Registry) *Manager {
	return &Manager{
		BaseService: NewBaseServiceWithOptions("service-manager-registry", nil),
		registry:    registry,
		services:    make(map[string]Service),
		healthLog:   health.NewMonitor(),
	}
}

// ConfigureFromServices applies the "service-manager" entry of the services
// config and wires in dependencies. Missing or disabled entries fall back to
// defaults.
func (m *Manager) ConfigureFromServices(services map[string]types.ServiceConfig, deps *Dependencies) error {
	logger := slog.Default()
	if deps != nil && deps.Logger != nil {
		logger = deps.Logger
	}

	var cfg ManagerConfig
	smConfig, hasConfig := services["service-manager"]
	if hasConfig && smConfig.Enabled && len(smConfig.Config) > 0 {
		if err := json.Unmarshal(smConfig.Config, &cfg); err != nil {
			return fmt.Errorf("parse service-manager config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate service-manager config: %w", err)
	}
	m.config = cfg

	if deps != nil {
		m.dependencies = deps
		if deps.NATSClient != nil {
			m.natsClient = deps.NATSClient
		}
		if deps.Manager != nil {
			m.configManager = deps.Manager
			m.configUpdates = deps.Manager.OnChange("services.*")
		}
		if deps.MetricsRegistry != nil && m.BaseService != nil {
			m.metricsRegistry = deps.MetricsRegistry
		}
	}

	if m.BaseService == nil {
		opts := []Option{WithLogger(logger)}
		if deps != nil && deps.MetricsRegistry != nil {
			opts = append(opts, WithMetrics(deps.MetricsRegistry))
		}
		m.BaseService = NewBaseServiceWithOptions("service-manager", nil, opts...)
	}

	logger.Debug("Service manager configured",
		"http_port", m.config.HTTPPort,
		"swagger_ui", m.config.SwaggerUI)
	return nil
}

// runtimeDeps returns the stored dependency set, or a minimal one for
// services created outside the normal boot path.
func (m *Manager) runtimeDeps() *Dependencies {
	if m.dependencies != nil {
		return m.dependencies
	}
	return &Dependencies{
		NATSClient: m.natsClient,
		Manager:    m.configManager,
		Logger:     m.logger,
	}
}

// CreateService instantiates a service using its registered constructor.
func (m *Manager) CreateService(name string, rawConfig json.RawMessage, deps *Dependencies) (Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[name]; exists {
		return nil, fmt.Errorf("service %s already created", name)
	}

	constructor, exists := m.registry.Constructor(name)
	if !exists {
		return nil, fmt.Errorf("no constructor registered for service %s", name)
	}

	svc, err := constructor(rawConfig, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create service %s: %w", name, err)
	}

	m.services[name] = svc
	m.order = append(m.order, name)
	return svc, nil
}

// GetService returns a service instance by name.
func (m *Manager) GetService(name string) (Service, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, exists := m.services[name]
	return svc, exists
}

// GetAllServices returns a snapshot of the current service instances.
func (m *Manager) GetAllServices() map[string]Service {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.services)
}

// ListConstructors returns the names of all registered constructors.
func (m *Manager) ListConstructors() []string {
	return m.registry.Services()
}

// HasConstructor checks if a constructor is registered under name.
func (m *Manager) HasConstructor(name string) bool {
	_, exists := m.registry.Constructor(name)
	return exists
}

// mandatoryServices are created by StartAll when absent and refuse StopService.
var mandatoryServices = []string{
	"component-manager",
}

// StartAll creates mandatory services, starts every registered instance, and
// brings up the HTTP server once all handlers can see live services.
func (m *Manager) StartAll(ctx context.Context) error {
	if err := m.initializeHTTPInfrastructure(); err != nil {
		return fmt.Errorf("initialize HTTP infrastructure: %w", err)
	}
	if err := m.createMandatoryServices(); err != nil {
		return fmt.Errorf("create mandatory services: %w", err)
	}

	services := m.GetAllServices()
	for name, svc := range services {
		m.logger.Debug("Starting service", "service", name)
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start service %s: %w", name, err)
		}
	}

	if err := m.completeHTTPSetup(); err != nil {
		return fmt.Errorf("complete HTTP setup: %w", err)
	}

	m.logger.Info("All services started",
		"count", len(services),
		"http_port", m.config.HTTPPort)
	return nil
}

func (m *Manager) createMandatoryServices() error {
	for _, name := range mandatoryServices {
		if _, exists := m.GetService(name); exists {
			continue
		}

		m.logger.Info("Creating mandatory service", "service", name)
		if _, err := m.CreateService(name, json.RawMessage("{}"), m.runtimeDeps()); err != nil {
			return fmt.Errorf("failed to create mandatory service %s: %w", name, err)
		}
	}
	return nil
}

// StopAll stops all services in reverse registration order, then the HTTP
// server. All services get a stop attempt even if earlier ones fail.
func (m *Manager) StopAll(timeout time.Duration) error {
	logger := m.logger.With("operation", "services-shutdown")

	m.mu.Lock()
	order := slices.Clone(m.order)
	services := maps.Clone(m.services)
	m.mu.Unlock()
	slices.Reverse(order)

	logger.Debug("Stopping services", "count", len(services), "timeout", timeout)
	start := time.Now()

	var errs []error
	for _, name := range order {
		svc, exists := services[name]
		if !exists {
			continue
		}
		if err := svc.Stop(timeout); err != nil {
			logger.Error("Service stop failed", "service", name, "error", err)
			errs = append(errs, fmt.Errorf("failed to stop service %s: %w", name, err))
		}
	}

	m.mu.Lock()
	m.services = make(map[string]Service)
	m.order = nil
	m.mu.Unlock()

	if m.isHTTPManager {
		if err := m.stopHTTPServer(); err != nil {
			logger.Error("HTTP server stop failed", "error", err)
			errs = append(errs, fmt.Errorf("failed to stop HTTP server: %w", err))
		}
	}

	logger.Debug("Service shutdown complete",
		"duration_ms", time.Since(start).Milliseconds(),
		"error_count", len(errs))

	if len(errs) > 0 {
		return fmt.Errorf("stop errors: %v", errs)
	}
	return nil
}

// StartService creates and starts a single service. Starting an existing
// service is a no-op.
func (m *Manager) StartService(ctx context.Context, name string, rawConfig json.RawMessage, deps *Dependencies) error {
	if _, exists := m.GetService(name); exists {
		m.logger.Debug("Service already exists", "service", name)
		return nil
	}

	svc, err := m.CreateService(name, rawConfig, deps)
	if err != nil {
		return fmt.Errorf("failed to create service %s: %w", name, err)
	}

	// Dependencies such as NATS may not be ready yet, so retry briefly.
	startErr := retry.Do(ctx, retry.Quick(), func() error {
		if err := svc.Start(ctx); err != nil {
			m.logger.Debug("Service start attempt failed, will retry",
				"service", name, "error", err)
			return err
		}
		return nil
	})
	if startErr != nil {
		m.RemoveService(name)
		return fmt.Errorf("failed to start service %s after retries: %w", name, startErr)
	}

	m.logger.Info("Service started", "service", name)
	return nil
}

// StopService stops and removes a single service. Stopping a missing service
// is a no-op; mandatory services cannot be stopped.
func (m *Manager) StopService(name string, timeout time.Duration) error {
	svc, exists := m.GetService(name)
	if !exists {
		return nil
	}
	if slices.Contains(mandatoryServices, name) {
		return fmt.Errorf("cannot stop mandatory service %s", name)
	}

	if err := svc.Stop(timeout); err != nil {
		// Remove it anyway, a stuck service should not pin the slot.
		m.logger.Error("Failed to stop service", "service", name, "error", err)
	}
	m.RemoveService(name)

	m.logger.Info("Service stopped and removed", "service", name)
	return nil
}

// RemoveService drops a service instance from the manager.
func (m *Manager) RemoveService(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[name]; !exists {
		return
	}
	delete(m.services, name)
	m.healthLog.Remove(name)
	if i := slices.Index(m.order, name); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
}

// GetHealthyServices returns the names of services reporting healthy.
func (m *Manager) GetHealthyServices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var healthy []string
	for name, svc := range m.services {
		if svc.IsHealthy() {
			healthy = append(healthy, name)
		}
	}
	return healthy
}

// GetServiceStatus returns the status of a specific service.
func (m *Manager) GetServiceStatus(name string) (any, error) {
	svc, exists := m.GetService(name)
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}
	return svc.Status(), nil
}

// hasNATSAccess reports whether the manager holds a connected NATS client.
func (m *Manager) hasNATSAccess() bool {
	return m.natsClient != nil && m.natsClient.GetConnection() != nil
}

// watchConfigUpdates applies service config changes published through the
// config manager. Each update carries the full config, so changes are
// detected by diffing against the previous snapshot.
func (m *Manager) watchConfigUpdates(ctx context.Context) {
	var previousConfigs types.ServiceConfigs

	for {
		select {
		case update, ok := <-m.configUpdates:
			if !ok {
				return
			}

			currentConfigs := update.Config.Get().Services
			if previousConfigs != nil {
				m.processServiceConfigChanges(previousConfigs, currentConfigs)
			}
			previousConfigs = currentConfigs

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) startFromConfig(name string, cfg types.ServiceConfig) {
	if err := m.StartService(context.Background(), name, cfg.Config, m.runtimeDeps()); err != nil {
		m.logger.Error("Failed to start service from config", "service", name, "error", err)
	}
}

// processServiceConfigChanges diffs two config snapshots and starts, stops,
// or reconfigures services accordingly.
func (m *Manager) processServiceConfigChanges(oldConfigs, newConfigs types.ServiceConfigs) {
	for name, newCfg := range newConfigs {
		oldCfg, existed := oldConfigs[name]

		if !existed {
			m.logger.Info("New service configuration detected", "service", name)
			if newCfg.Enabled {
				m.startFromConfig(name, newCfg)
			}
			continue
		}

		if oldCfg.Enabled != newCfg.Enabled {
			if newCfg.Enabled {
				m.logger.Info("Service enabled in config", "service", name)
				m.startFromConfig(name, newCfg)
			} else {
				m.logger.Info("Service disabled in config", "service", name)
				if err := m.StopService(name, 5*time.Second); err != nil {
					m.logger.Error("Failed to stop service", "service", name, "error", err)
				}
			}
		}
		if !bytes.Equal(oldCfg.Config, newCfg.Config) {
			m.applyServiceConfigChange(name, newCfg.Config)
		}
	}

	for name := range oldConfigs {
		if _, exists := newConfigs[name]; !exists {
			m.logger.Info("Service configuration removed", "service", name)
			if err := m.StopService(name, 5*time.Second); err != nil {
				m.logger.Error("Failed to stop removed service", "service", name, "error", err)
			}
		}
	}
}

// applyServiceConfigChange pushes a config change to a running service if it
// supports runtime reconfiguration. Services that do not need a restart to
// pick up the new config.
func (m *Manager) applyServiceConfigChange(serviceName string, newConfig json.RawMessage) {
	svc, exists := m.GetService(serviceName)
	if !exists {
		m.logger.Warn("Configuration change for unknown service", "service", serviceName)
		return
	}

	runtimeConfigurable, ok := svc.(RuntimeConfigurable)
	if !ok {
		m.logger.Info("Service does not support runtime configuration, restart required",
			"service", serviceName)
		return
	}

	var newConfigMap map[string]any
	if err := json.Unmarshal(newConfig, &newConfigMap); err != nil {
		m.logger.Error("Failed to parse new service configuration",
			"service", serviceName, "error", err)
		return
	}

	if err := runtimeConfigurable.ValidateConfigUpdate(newConfigMap); err != nil {
		m.logger.Error("Invalid service configuration update",
			"service", serviceName, "error", err)
		return
	}
	if err := runtimeConfigurable.ApplyConfigUpdate(newConfigMap); err != nil {
		m.logger.Error("Failed to apply service configuration update",
			"service", serviceName, "error", err)
		return
	}

	m.logger.Info("Applied service configuration update", "service", serviceName)
}

// hasRuntimeConfigSupport checks if a service accepts runtime config updates.
func (m *Manager) hasRuntimeConfigSupport(serviceName string) bool {
	svc, exists := m.GetService(serviceName)
	if !exists {
		return false
	}
	_, ok := svc.(RuntimeConfigurable)
	return ok
}

// GetServiceRuntimeConfig returns the current runtime configuration of a
// service.
func (m *Manager) GetServiceRuntimeConfig(serviceName string) (map[string]any, error) {
	svc, exists := m.GetService(serviceName)
	if !exists {
		return nil, fmt.Errorf("service %s not found", serviceName)
	}

	runtimeConfigurable, ok := svc.(RuntimeConfigurable)
	if !ok {
		return nil, fmt.Errorf("service %s does not support runtime configuration", serviceName)
	}
	return runtimeConfigurable.GetRuntimeConfig(), nil
}

// Start begins the manager lifecycle and, on the HTTP instance, the config
// update watcher. The HTTP server itself is started by StartAll.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.BaseService.Start(ctx); err != nil {
		return err
	}

	if m.isHTTPManager && m.configUpdates != nil {
		m.waitGroup.Add(1)
		go func() {
			defer m.waitGroup.Done()
			m.watchConfigUpdates(ctx)
		}()
		m.logger.Info("Config watching enabled")
	}
	return nil
}

// Stop shuts down the HTTP server if this instance owns it, then the base
// service.
func (m *Manager) Stop(timeout time.Duration) error {
	if m.isHTTPManager {
		if err := m.stopHTTPServer(); err != nil {
			return err
		}
	}
	return m.BaseService.Stop(timeout)
}
