package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/metric"
	"github.com/c360/semreason/pkg/security"
)

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Port int    `json:"port"`
	Path string `json:"path"`
}

// Validate rejects ports outside the TCP range and empty paths.
func (c MetricsConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Path == "" {
		return errors.New("metrics path cannot be empty")
	}
	return nil
}

// Metrics exposes the platform metrics registry over HTTP.
type Metrics struct {
	*BaseService

	config   MetricsConfig
	server   *metric.Server
	registry *metric.MetricsRegistry
	security security.Config
}

// NewMetrics builds the metrics service. Defaults: port 9090, path /metrics.
func NewMetrics(rawConfig json.RawMessage, deps *Dependencies) (Service, error) {
	if deps == nil {
		deps = &Dependencies{}
	}

	var cfg MetricsConfig
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("parse metrics config: %w", err)
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate metrics config: %w", err)
	}

	// TLS settings come from the platform config when one is wired in.
	var securityCfg security.Config
	if deps.Manager != nil {
		if full := deps.Manager.GetConfig(); full != nil {
			securityCfg = full.Get().Security
		}
	}

	m := &Metrics{
		BaseService: NewBaseServiceWithOptions(
			"metrics",
			nil,
			WithLogger(deps.Logger),
			WithMetrics(deps.MetricsRegistry),
		),
		config:   cfg,
		registry: deps.MetricsRegistry,
		security: securityCfg,
	}
	m.SetHealthCheck(m.healthCheck)

	return m, nil
}

// Start launches the metrics HTTP server.
func (m *Metrics) Start(ctx context.Context) error {
	if err := m.BaseService.Start(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil {
		return errors.New("metrics server already started")
	}
	m.server = metric.NewServer(m.config.Port, m.config.Path, m.registry, m.security)

	go func() {
		if err := m.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("Metrics server error", "error", err)
		}
	}()

	// Let the listener come up before Stop can race the goroutine.
	time.Sleep(100 * time.Millisecond)

	m.logger.Info("Metrics service started", "url", m.URL())
	return nil
}

// Stop shuts down the HTTP server, then the base lifecycle.
func (m *Metrics) Stop(timeout time.Duration) error {
	m.mu.Lock()
	if m.server != nil {
		if err := m.server.Stop(); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("stop metrics server: %w", err)
		}
		m.server = nil
	}
	m.mu.Unlock()

	if err := m.BaseService.Stop(timeout); err != nil {
		return err
	}

	m.logger.Info("Metrics service stopped")
	return nil
}

func (m *Metrics) healthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.server == nil {
		return errors.New("metrics server not running")
	}
	return nil
}

// Port returns the configured listen port.
func (m *Metrics) Port() int { return m.config.Port }

// Path returns the configured endpoint path.
func (m *Metrics) Path() string { return m.config.Path }

// URL returns the local endpoint URL, honoring the TLS setting.
func (m *Metrics) URL() string {
	scheme := "http"
	if m.security.TLS.Server.Enabled {
		scheme = "https"
	}
	return fmt.Sprintf("%s://localhost:%d%s", scheme, m.config.Port, m.config.Path)
}

// ConfigSchema describes the metrics service configuration.
func (m *Metrics) ConfigSchema() ConfigSchema {
	return NewConfigSchema(map[string]PropertySchema{
		"enabled": {
			PropertySchema: component.PropertySchema{
				Type:        "bool",
				Description: "Enable or disable the metrics service",
				Default:     true,
			},
			Runtime: true,
		},
		"port": {
			PropertySchema: component.PropertySchema{
				Type:        "int",
				Description: "Port for the metrics HTTP server",
				Default:     9090,
				Minimum:     ptr(1024),
				Maximum:     ptr(65535),
			},
			Category: "network",
		},
		"path": {
			PropertySchema: component.PropertySchema{
				Type:        "string",
				Description: "URL path for the metrics endpoint",
				Default:     "/metrics",
			},
			Category: "network",
		},
	}, nil)
}

// ValidateConfigUpdate accepts the enabled flag at runtime. Config updates
// arrive as the full service JSON, so port and path are accepted as long as
// they match the running listener; changing them requires a restart.
func (m *Metrics) ValidateConfigUpdate(changes map[string]any) error {
	for key, value := range changes {
		switch key {
		case "enabled":
			if _, ok := value.(bool); !ok {
				return errors.New("enabled must be a boolean")
			}
		case "port":
			port, err := intFromJSON(value)
			if err != nil {
				return fmt.Errorf("port must be a number, got %T", value)
			}
			if port != m.config.Port {
				return fmt.Errorf("port change requires restart (listening on %d)", m.config.Port)
			}
		case "path":
			path, ok := value.(string)
			if !ok {
				return fmt.Errorf("path must be a string, got %T", value)
			}
			if path != m.config.Path {
				return errors.New("path change requires restart")
			}
		default:
			return fmt.Errorf("runtime update of '%s' is not supported (requires restart)", key)
		}
	}
	return nil
}

// ApplyConfigUpdate applies validated changes. The enabled flag itself is
// acted on by the service manager; this only records it.
func (m *Metrics) ApplyConfigUpdate(changes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enabled, ok := changes["enabled"].(bool); ok {
		m.logger.Info("Metrics enabled state changed", "enabled", enabled)
	}
	return nil
}

// GetRuntimeConfig reports the effective configuration.
func (m *Metrics) GetRuntimeConfig() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"enabled": true,
		"port":    m.config.Port,
		"path":    m.config.Path,
	}
}
