package service

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/metric"
)

func newTestMetrics(t *testing.T, rawConfig string) *Metrics {
	t.Helper()

	svc, err := NewMetrics(json.RawMessage(rawConfig), &Dependencies{
		Logger:          slog.Default(),
		MetricsRegistry: metric.NewMetricsRegistry(),
	})
	require.NoError(t, err)
	return svc.(*Metrics)
}

func TestNewMetrics(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		m := newTestMetrics(t, `{}`)

		assert.Equal(t, "metrics", m.Name())
		assert.Equal(t, 9090, m.Port())
		assert.Equal(t, "/metrics", m.Path())
		assert.Equal(t, "http://localhost:9090/metrics", m.URL())
	})

	t.Run("explicit config", func(t *testing.T) {
		m := newTestMetrics(t, `{"port": 8080, "path": "/internal/metrics"}`)

		assert.Equal(t, 8080, m.Port())
		assert.Equal(t, "/internal/metrics", m.Path())
	})

	t.Run("empty path gets default", func(t *testing.T) {
		m := newTestMetrics(t, `{"path": ""}`)
		assert.Equal(t, "/metrics", m.config.Path)
	})

	t.Run("nil dependencies tolerated", func(t *testing.T) {
		svc, err := NewMetrics(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 9090, svc.(*Metrics).Port())
	})

	t.Run("malformed config", func(t *testing.T) {
		_, err := NewMetrics(json.RawMessage(`{bad`), &Dependencies{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse metrics config")
	})

	t.Run("port above range", func(t *testing.T) {
		_, err := NewMetrics(json.RawMessage(`{"port": 99999}`), &Dependencies{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid port")
	})

	t.Run("negative port", func(t *testing.T) {
		_, err := NewMetrics(json.RawMessage(`{"port": -1}`), &Dependencies{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid port")
	})
}

func TestMetrics_ValidateConfigUpdate(t *testing.T) {
	m := newTestMetrics(t, `{"port": 9090}`)

	tests := []struct {
		name    string
		changes map[string]any
		wantErr string
	}{
		{
			name:    "toggle enabled",
			changes: map[string]any{"enabled": false},
		},
		{
			name:    "full config with unchanged listener settings",
			changes: map[string]any{"enabled": false, "port": 9090.0, "path": "/metrics"},
		},
		{
			name:    "unchanged port as int",
			changes: map[string]any{"port": 9090},
		},
		{
			name:    "enabled wrong type",
			changes: map[string]any{"enabled": "true"},
			wantErr: "boolean",
		},
		{
			name:    "port wrong type",
			changes: map[string]any{"port": "9090"},
			wantErr: "port must be a number",
		},
		{
			name:    "port change needs restart",
			changes: map[string]any{"port": 9999},
			wantErr: "restart",
		},
		{
			name:    "path wrong type",
			changes: map[string]any{"path": 42},
			wantErr: "path must be a string",
		},
		{
			name:    "path change needs restart",
			changes: map[string]any{"path": "/new-metrics"},
			wantErr: "restart",
		},
		{
			name:    "unknown property needs restart",
			changes: map[string]any{"tls": true},
			wantErr: "restart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateConfigUpdate(tt.changes)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMetrics_ApplyConfigUpdate(t *testing.T) {
	m := newTestMetrics(t, `{"port": 9090}`)

	// The manager owns start/stop; applying enabled only records it.
	require.NoError(t, m.ApplyConfigUpdate(map[string]any{"enabled": false}))

	assert.Equal(t, map[string]any{
		"enabled": true,
		"port":    9090,
		"path":    "/metrics",
	}, m.GetRuntimeConfig())
}

func TestMetrics_ConfigSchema(t *testing.T) {
	m := newTestMetrics(t, `{}`)

	schema := m.ConfigSchema()
	assert.Len(t, schema.ConfigSchema.Properties, 3)
	assert.Empty(t, schema.Required)

	port := schema.ConfigSchema.Properties["port"]
	assert.Equal(t, "int", port.Type)
	assert.Equal(t, 9090, port.Default)
	require.NotNil(t, port.Minimum)
	assert.Equal(t, 1024, *port.Minimum)
	require.NotNil(t, port.Maximum)
	assert.Equal(t, 65535, *port.Maximum)
	assert.Equal(t, "network", port.Category)

	// Only the enabled flag survives a runtime update.
	assert.Equal(t, []string{"enabled"}, schema.ServiceSpecific["runtime_properties"])
}

func TestMetrics_HealthBeforeStart(t *testing.T) {
	m := newTestMetrics(t, `{}`)

	err := m.healthCheck()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestMetrics_Interfaces(t *testing.T) {
	m := newTestMetrics(t, `{}`)

	var _ Service = m
	var _ RuntimeConfigurable = m
	var _ Configurable = m
}
