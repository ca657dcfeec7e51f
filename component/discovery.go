// Package component defines the Discoverable contract and the registry
// infrastructure behind every pluggable unit in the reasoning platform.
package component

import "time"

// Discoverable is the minimum surface every component exposes to the
// management layer. Inputs accept external data, processors derive new
// facts from it, outputs publish results, and storage components persist
// state; all four describe themselves the same way so the platform can
// inspect, wire, and monitor them without knowing their concrete types.
type Discoverable interface {
	// Meta identifies the component.
	Meta() Metadata

	// InputPorts lists where the component consumes data.
	InputPorts() []Port

	// OutputPorts lists where the component produces data.
	OutputPorts() []Port

	// ConfigSchema describes the component's configuration surface.
	ConfigSchema() ConfigSchema

	// Health reports the component's current condition.
	Health() HealthStatus

	// DataFlow reports throughput through the component.
	DataFlow() FlowMetrics
}

// Metadata identifies a component instance.
type Metadata struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // input, processor, output, storage
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ConfigSchema declares a component's configuration properties and which of
// them must be present.
type ConfigSchema struct {
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// PropertySchema describes one configuration property. Type is one of
// string, int, bool, float, enum, array, object, ports, or cache; the
// ports and cache types carry extra field metadata so clients can render
// their nested structures.
type PropertySchema struct {
	Type        string                    `json:"type"`
	Description string                    `json:"description"`
	Default     any                       `json:"default,omitempty"`
	Enum        []string                  `json:"enum,omitempty"`
	Minimum     *int                      `json:"minimum,omitempty"`
	Maximum     *int                      `json:"maximum,omitempty"`
	Category    string                    `json:"category,omitempty"` // basic or advanced
	PortFields  map[string]PortFieldInfo  `json:"portFields,omitempty"`
	CacheFields map[string]CacheFieldInfo `json:"cacheFields,omitempty"`
}

// HealthStatus is a point-in-time health snapshot.
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Uptime     time.Duration `json:"uptime"`
}

// FlowMetrics summarizes data movement through a component.
type FlowMetrics struct {
	MessagesPerSecond float64   `json:"messages_per_second"`
	BytesPerSecond    float64   `json:"bytes_per_second"`
	ErrorRate         float64   `json:"error_rate"`
	LastActivity      time.Time `json:"last_activity"`
}
