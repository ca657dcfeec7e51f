package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360/semreason/component"
)

// ComponentRegistry is the slice of the component registry that schema
// validation needs, kept narrow so tests can stub it.
type ComponentRegistry interface {
	GetComponentSchema(componentType string) (component.ConfigSchema, error)
}

// ValidateWithSchema checks a component configuration against the schema
// its type declares. Unknown types and schema-less components pass: a
// config written before its component registered must still load.
func (cm *Manager) ValidateWithSchema(
	ctx context.Context,
	registry ComponentRegistry,
	componentType string,
	config map[string]any,
) []component.ValidationError {
	if err := ctx.Err(); err != nil {
		return []component.ValidationError{{Field: "context", Message: "validation cancelled"}}
	}

	if registry == nil {
		cm.logger.Warn("Registry is nil, skipping schema validation",
			"component_type", componentType)
		return nil
	}

	schema, err := registry.GetComponentSchema(componentType)
	if err != nil {
		cm.logger.Warn("Failed to get component schema for validation",
			"component_type", componentType,
			"error", err)
		return nil
	}
	if len(schema.Properties) == 0 {
		cm.logger.Debug("Component has no schema defined, skipping validation",
			"component_type", componentType)
		return nil
	}

	validationErrors := component.ValidateConfig(config, schema)
	if len(validationErrors) > 0 {
		cm.logger.Info("Configuration validation failed",
			"component_type", componentType,
			"error_count", len(validationErrors))
	}
	return validationErrors
}

// ValidateComponentConfig validates a raw JSON component configuration,
// reporting a parse failure as a validation error rather than an error
// return so HTTP handlers can render it uniformly.
func (cm *Manager) ValidateComponentConfig(
	ctx context.Context,
	registry ComponentRegistry,
	componentType string,
	configJSON json.RawMessage,
) []component.ValidationError {
	var config map[string]any
	if err := json.Unmarshal(configJSON, &config); err != nil {
		return []component.ValidationError{{
			Message: fmt.Sprintf("Invalid JSON configuration: %v", err),
			Code:    "type",
		}}
	}
	return cm.ValidateWithSchema(ctx, registry, componentType, config)
}
