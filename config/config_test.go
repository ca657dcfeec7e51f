package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/types"
)

// writeConfig drops a JSON config into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `{
		"platform": {
			"org": "c360",
			"id": "eu_caselaw_hub",
			"type": "regional",
			"region": "eu_west",
			"capabilities": ["reasoning", "ingest", "storage"]
		},
		"nats": {
			"urls": ["nats://localhost:4222", "nats://localhost:4223"],
			"max_reconnects": 10,
			"reconnect_wait": "5s"
		},
		"services": {
			"message-logger": {"enabled": true},
			"metrics": {"enabled": true}
		}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "eu_caselaw_hub", cfg.Platform.ID)
	assert.Equal(t, "regional", cfg.Platform.Type)
	assert.Equal(t, "eu_west", cfg.Platform.Region)
	assert.Equal(t, []string{"reasoning", "ingest", "storage"}, cfg.Platform.Capabilities)
	assert.Equal(t, []string{"nats://localhost:4222", "nats://localhost:4223"}, cfg.NATS.URLs)
	assert.Equal(t, 10, cfg.NATS.MaxReconnects)
	assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
	assert.True(t, cfg.Services["message-logger"].Enabled)
	assert.True(t, cfg.Services["metrics"].Enabled)
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"platform": {"org": "c360", "id": "test-platform", "type": "edge"}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "us_east", cfg.Platform.Region)
	assert.Equal(t, []string{"nats://localhost:4222"}, cfg.NATS.URLs)
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.True(t, cfg.NATS.JetStream.Enabled)
	assert.True(t, cfg.Services["message-logger"].Enabled)
	assert.False(t, cfg.Services["metrics"].Enabled, "metrics stay dormant unless enabled")
}

func TestReconnectWaitForms(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr string
	}{
		{name: "duration string", value: `"250ms"`, want: 250 * time.Millisecond},
		{name: "nanosecond count", value: `2000000000`, want: 2 * time.Second},
		{name: "unparseable string", value: `"soon"`, wantErr: "nats.reconnect_wait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, `{
				"platform": {"org": "c360", "id": "p1", "type": "edge"},
				"nats": {"reconnect_wait": `+tt.value+`}
			}`)

			cfg, err := NewLoader().LoadFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.NATS.ReconnectWait)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEMREASON_PLATFORM_ID", "env-platform")
	t.Setenv("SEMREASON_NATS_USERNAME", "testuser")
	t.Setenv("SEMREASON_NATS_PASSWORD", "testpass")

	path := writeConfig(t, `{
		"platform": {"org": "c360", "id": "json-platform", "type": "regional"}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "env-platform", cfg.Platform.ID)
	assert.Equal(t, "testuser", cfg.NATS.Username)
	assert.Equal(t, "testpass", cfg.NATS.Password)
	assert.Equal(t, "regional", cfg.Platform.Type, "file value survives without an env override")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "missing org",
			config:  `{"platform": {"id": "platform1", "type": "regional"}}`,
			wantErr: "platform.org is required",
		},
		{
			name:    "missing platform id",
			config:  `{"platform": {"org": "c360", "type": "regional"}}`,
			wantErr: "platform.id is required",
		},
		{
			name: "component without factory name",
			config: `{
				"platform": {"org": "c360", "id": "test", "type": "regional"},
				"components": {
					"audit": {"type": "processor", "name": "", "enabled": true}
				}
			}`,
			wantErr: "component factory name cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader()
			loader.EnableValidation(true)

			_, err := loader.LoadFile(writeConfig(t, tt.config))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeepMergeMaps(t *testing.T) {
	loader := NewLoader()

	base := map[string]any{
		"platform": map[string]any{"type": "generic", "region": "us_east"},
		"nats":     map[string]any{"max_reconnects": -1},
		"keep":     "base",
	}
	override := map[string]any{
		"platform": map[string]any{"id": "test-platform", "type": "regional"},
		"nats":     nil,
		"extra":    true,
	}

	merged := loader.deepMergeMaps(base, override)

	platform, ok := merged["platform"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "test-platform", platform["id"])
	assert.Equal(t, "regional", platform["type"], "override wins inside nested maps")
	assert.Equal(t, "us_east", platform["region"], "base keys survive a partial override")

	assert.Equal(t, map[string]any{"max_reconnects": -1}, merged["nats"], "nil override must not clear a key")
	assert.Equal(t, "base", merged["keep"])
	assert.Equal(t, true, merged["extra"])
}

func TestLayeredLoad(t *testing.T) {
	loader := NewLoader()
	loader.AddLayer(filepath.Join("testdata", "base.json"))
	loader.AddLayer(filepath.Join("testdata", "production.json"))

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-platform", cfg.Platform.ID, "later layers win")
	assert.Equal(t, "prod", cfg.Platform.Environment)
	assert.Equal(t, "c360", cfg.Platform.Org, "earlier layers persist")
	assert.Equal(t, "edge", cfg.Platform.Type)
	assert.Equal(t, "us_east", cfg.Platform.Region, "defaults fill what no layer sets")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := &Config{
		Platform: PlatformConfig{
			Org:          "c360",
			ID:           "save-test",
			Type:         "regional",
			Region:       "apac",
			Capabilities: []string{"reasoning", "storage"},
		},
		NATS: NATSConfig{
			URLs:          []string{"nats://server1:4222", "nats://server2:4222"},
			MaxReconnects: 10,
			ReconnectWait: 5 * time.Second,
		},
		Services: types.ServiceConfigs{
			"metrics": types.ServiceConfig{
				Name:    "metrics",
				Enabled: true,
				Config:  json.RawMessage(`{}`),
			},
		},
	}

	path := filepath.Join(t.TempDir(), "saved.json")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Platform, loaded.Platform)
	assert.Equal(t, cfg.NATS.URLs, loaded.NATS.URLs)
	assert.Equal(t, cfg.NATS.MaxReconnects, loaded.NATS.MaxReconnects)
	assert.Equal(t, cfg.NATS.ReconnectWait, loaded.NATS.ReconnectWait)
	assert.True(t, loaded.Services["metrics"].Enabled)
	assert.True(t, loaded.Services["message-logger"].Enabled, "defaults merge under the saved file")
}

func TestSaveWritesEmptyObjectsForNilMaps(t *testing.T) {
	cfg := &Config{
		Platform: PlatformConfig{Org: "c360", ID: "minimal", Type: "edge"},
	}
	require.Nil(t, cfg.Services)
	require.Nil(t, cfg.Components)

	path := filepath.Join(t.TempDir(), "minimal.json")
	require.NoError(t, cfg.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `{}`, string(raw["services"]))
	assert.JSONEq(t, `{}`, string(raw["components"]))

	loaded, err := NewLoader().LoadFile(path)
	require.NoError(t, err, "saved file passes schema validation on reload")
	assert.Equal(t, cfg.Platform, loaded.Platform)
}

func TestExampleConfig(t *testing.T) {
	cfg, err := NewLoader().LoadFile("example_config.json")
	require.NoError(t, err)

	assert.Equal(t, "reasoning-demo", cfg.Platform.ID)
	assert.Equal(t, "regional", cfg.Platform.Type)
	assert.True(t, cfg.Services["message-logger"].Enabled)
	assert.True(t, cfg.Services["metrics"].Enabled)

	require.Len(t, cfg.Components, 2)

	main := cfg.Components["reason-main"]
	assert.Equal(t, types.ComponentType("processor"), main.Type)
	assert.Equal(t, "reason-processor", main.Name)
	assert.True(t, main.Enabled)

	audit := cfg.Components["reason-audit"]
	assert.Equal(t, types.ComponentType("processor"), audit.Type)
	assert.Equal(t, "reason-processor", audit.Name)
	assert.False(t, audit.Enabled, "the audit lane ships dormant")
}
