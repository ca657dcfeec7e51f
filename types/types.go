// Package types holds the small shared types that cross package
// boundaries: component and service configuration entries and platform
// identity. Keeping them here lets config, component, and service depend
// on the same shapes without depending on each other.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/c360/semreason/errors"
)

// ComponentType categorizes a component by its role in the flow.
type ComponentType string

const (
	ComponentTypeInput     ComponentType = "input"
	ComponentTypeProcessor ComponentType = "processor"
	ComponentTypeOutput    ComponentType = "output"
	ComponentTypeStorage   ComponentType = "storage"
	ComponentTypeGateway   ComponentType = "gateway"
)

func (ct ComponentType) String() string { return string(ct) }

func (ct ComponentType) valid() bool {
	switch ct {
	case ComponentTypeInput, ComponentTypeProcessor, ComponentTypeOutput,
		ComponentTypeStorage, ComponentTypeGateway:
		return true
	}
	return false
}

// ComponentConfig is one entry in the components section of the platform
// configuration. The instance name is the map key; Name is the factory
// that builds the instance, and Config is passed through to it opaquely.
type ComponentConfig struct {
	Type    ComponentType   `json:"type"`
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
	Config  json.RawMessage `json:"config"`
}

func (c ComponentConfig) Validate() error {
	if c.Type == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"ComponentConfig", "Validate", "component type cannot be empty")
	}
	if c.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"ComponentConfig", "Validate", "component factory name cannot be empty")
	}
	if !c.Type.valid() {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ComponentConfig", "Validate",
			fmt.Sprintf("invalid component type: %s", c.Type))
	}
	return nil
}

// ServiceConfig is one entry in the services section. A service runs only
// when it has both a registered constructor and an enabled entry here.
// Config may be empty; the service falls back to its defaults.
type ServiceConfig struct {
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
	Config  json.RawMessage `json:"config"`
}

func (s ServiceConfig) Validate() error {
	if s.Name == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"ServiceConfig", "Validate", "service name cannot be empty")
	}
	return nil
}

// ServiceConfigs maps service name to its configuration entry.
type ServiceConfigs map[string]ServiceConfig

// PlatformMeta carries the org and platform identifiers to services and
// components without pulling in the config package.
type PlatformMeta struct {
	Org      string
	Platform string
}
