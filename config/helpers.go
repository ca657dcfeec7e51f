package config

import "fmt"

// Typed accessors for the dynamic map[string]any sections a raw config
// carries. All of them return the caller's fallback instead of panicking
// when a key is missing or holds the wrong type, so component code can
// read half-formed configs during reloads.

// toInt coerces the numeric types JSON decoding produces. Whole-number
// floats are the common case since encoding/json decodes every number to
// float64.
func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// toFloat coerces any numeric width to float64.
func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// nestedValue walks a key path through nested maps and returns the value
// at the end of it. An empty path or a non-map segment stops the walk.
func nestedValue(cfg map[string]any, keys []string) (any, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	current := cfg
	for _, key := range keys[:len(keys)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	val, ok := current[keys[len(keys)-1]]
	return val, ok
}

// GetString returns cfg[key] when it holds a string.
func GetString(cfg map[string]any, key string, fallback string) string {
	if s, ok := cfg[key].(string); ok {
		return s
	}
	return fallback
}

// GetInt returns cfg[key] as an int, accepting any numeric width.
func GetInt(cfg map[string]any, key string, fallback int) int {
	if n, ok := toInt(cfg[key]); ok {
		return n
	}
	return fallback
}

// GetFloat64 returns cfg[key] as a float64, accepting any numeric width.
func GetFloat64(cfg map[string]any, key string, fallback float64) float64 {
	if f, ok := toFloat(cfg[key]); ok {
		return f
	}
	return fallback
}

// GetBool returns cfg[key] when it holds a bool.
func GetBool(cfg map[string]any, key string, fallback bool) bool {
	if b, ok := cfg[key].(bool); ok {
		return b
	}
	return fallback
}

// GetStringSlice returns cfg[key] as []string. Decoded JSON arrays come
// through as []any; those convert only when every element is a string.
func GetStringSlice(cfg map[string]any, key string, fallback []string) []string {
	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fallback
			}
			out[i] = s
		}
		return out
	}
	return fallback
}

// GetComponentConfig digs the named component's config map out of a raw
// top-level config.
func GetComponentConfig(cfg map[string]any, name string) (map[string]any, error) {
	section, ok := cfg["components"]
	if !ok {
		return nil, fmt.Errorf("no components section")
	}
	components, ok := section.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("components section is %T, want a map", section)
	}
	raw, ok := components[name]
	if !ok {
		return nil, fmt.Errorf("component %s not found", name)
	}
	compCfg, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("component %s config is %T, want a map", name, raw)
	}
	return compCfg, nil
}

// GetNestedString follows a key path into nested maps and returns the
// string at the end of it.
func GetNestedString(cfg map[string]any, keys []string, fallback string) string {
	if val, ok := nestedValue(cfg, keys); ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return fallback
}

// GetNestedInt follows a key path into nested maps and returns the
// numeric value at the end of it as an int.
func GetNestedInt(cfg map[string]any, keys []string, fallback int) int {
	if val, ok := nestedValue(cfg, keys); ok {
		if n, ok := toInt(val); ok {
			return n
		}
	}
	return fallback
}

// GetNestedBool follows a key path into nested maps and returns the bool
// at the end of it.
func GetNestedBool(cfg map[string]any, keys []string, fallback bool) bool {
	if val, ok := nestedValue(cfg, keys); ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return fallback
}

// HasKey reports whether key exists at the top level of cfg.
func HasKey(cfg map[string]any, key string) bool {
	_, ok := cfg[key]
	return ok
}

// HasNestedKey reports whether the full key path exists, whatever value
// sits at the end of it.
func HasNestedKey(cfg map[string]any, keys []string) bool {
	_, ok := nestedValue(cfg, keys)
	return ok
}
