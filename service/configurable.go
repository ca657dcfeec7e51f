package service

import (
	"sort"

	"github.com/c360/semreason/component"
)

// Configurable is implemented by services that can describe their
// configuration parameters, so operators and tooling can discover what a
// service accepts without reading its source.
type Configurable interface {
	ConfigSchema() ConfigSchema
}

// RuntimeConfigurable extends Configurable for services that accept config
// changes while running. The manager validates changes before applying them;
// ApplyConfigUpdate is only called with changes that passed validation.
type RuntimeConfigurable interface {
	Configurable

	// ValidateConfigUpdate checks the proposed changes without applying them.
	ValidateConfigUpdate(changes map[string]any) error

	// ApplyConfigUpdate applies previously validated changes.
	ApplyConfigUpdate(changes map[string]any) error

	// GetRuntimeConfig reports the current effective configuration.
	GetRuntimeConfig() map[string]any
}

// ConfigSchema is the service-level schema. It reuses the component schema
// shape so services and components render the same way in discovery output.
type ConfigSchema struct {
	component.ConfigSchema

	// ServiceSpecific holds schema extensions that have no component
	// equivalent.
	ServiceSpecific map[string]any `json:"service_specific,omitempty"`
}

// PropertySchema adds service-only annotations to a component property.
type PropertySchema struct {
	component.PropertySchema

	// Runtime marks a property as changeable without a restart.
	Runtime bool `json:"runtime,omitempty"`

	// Category groups related properties in discovery UIs.
	Category string `json:"category,omitempty"`
}

// ptr returns a pointer to v, for optional schema bounds.
func ptr[T any](v T) *T { return &v }

// NewConfigSchema builds a ConfigSchema from extended property definitions.
// Properties marked Runtime are listed under ServiceSpecific so discovery
// clients can tell which settings apply without a restart.
func NewConfigSchema(properties map[string]PropertySchema, required []string) ConfigSchema {
	props := make(map[string]component.PropertySchema, len(properties))
	var runtime []string
	for key, prop := range properties {
		p := prop.PropertySchema
		if p.Category == "" {
			p.Category = prop.Category
		}
		props[key] = p
		if prop.Runtime {
			runtime = append(runtime, key)
		}
	}
	sort.Strings(runtime)

	schema := ConfigSchema{
		ConfigSchema: component.ConfigSchema{
			Properties: props,
			Required:   required,
		},
	}
	if len(runtime) > 0 {
		schema.ServiceSpecific = map[string]any{"runtime_properties": runtime}
	}
	return schema
}
