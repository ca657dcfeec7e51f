package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c360/semreason/types"
)

// Loader assembles a Config from layered JSON files plus environment
// overrides. Later layers win field-by-field; SEMREASON_* variables win
// over every file.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a loader with no layers and validation off.
func NewLoader() *Loader {
	return &Loader{envPrefix: "SEMREASON"}
}

// AddLayer appends a configuration file layer.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation toggles Config.Validate on the loaded result.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file, replacing any layers
// added so far.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load merges defaults, file layers, and environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaults()

	for _, path := range l.layers {
		raw, err := l.loadRawJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// defaults is the layer every deployment starts from: local NATS with
// JetStream, the message logger on, metrics dormant.
func (l *Loader) defaults() *Config {
	return &Config{
		Platform: PlatformConfig{
			Region: "us_east",
		},
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			JetStream: JetStreamConfig{
				Enabled: true,
			},
		},
		Services: types.ServiceConfigs{
			"message-logger": types.ServiceConfig{
				Name:    "message-logger",
				Enabled: true,
				Config:  json.RawMessage(`{}`),
			},
			"metrics": types.ServiceConfig{
				Name:    "metrics",
				Enabled: false,
				Config:  json.RawMessage(`{}`),
			},
		},
	}
}

// loadRawJSON reads one layer into a map. Files pass the path and size
// screening in security.go and a JSON depth cap before decoding.
func (l *Loader) loadRawJSON(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid JSON structure: %w", err)
	}
	if err := validateFileSchema(data); err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// mergeFromMap deep-merges an override map onto base. The base config
// round-trips through a map so only keys present in the override change;
// absent keys never reset a field to its zero value.
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(l.deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// deepMergeMaps merges override onto base recursively. Nested maps merge
// key-by-key; anything else in override replaces the base value. Nil
// override values are skipped rather than clearing a key.
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}

	return result
}

// applyEnvOverrides applies SEMREASON_* variables on top of the merged
// config. Empty variables are ignored.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	for _, override := range []struct {
		suffix string
		apply  func(string)
	}{
		{"_PLATFORM_ID", func(v string) { cfg.Platform.ID = v }},
		{"_PLATFORM_TYPE", func(v string) { cfg.Platform.Type = v }},
		{"_PLATFORM_REGION", func(v string) { cfg.Platform.Region = v }},
		{"_NATS_URLS", func(v string) { cfg.NATS.URLs = strings.Split(v, ",") }},
		{"_NATS_USERNAME", func(v string) { cfg.NATS.Username = v }},
		{"_NATS_PASSWORD", func(v string) { cfg.NATS.Password = v }},
		{"_NATS_TOKEN", func(v string) { cfg.NATS.Token = v }},
	} {
		if val := os.Getenv(l.envPrefix + override.suffix); val != "" {
			override.apply(val)
		}
	}
}
