package component

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/types"
)

// Info summarizes an available component type for discovery listings.
type Info struct {
	Type        string `json:"type"`
	Protocol    string `json:"protocol"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Factory builds a component from raw JSON configuration and injected
// dependencies. Factories parse and validate their own config, mirroring
// service constructors, and perform no I/O; connections wait for Start.
type Factory func(rawConfig json.RawMessage, deps Dependencies) (Discoverable, error)

// Registration ties a factory to the metadata and schema describing what it
// builds. Schema lives here as static metadata so clients can fetch it
// without instantiating a component.
type Registration struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"` // input, processor, output, storage
	Protocol     string       `json:"protocol"`
	Domain       string       `json:"domain"`
	Description  string       `json:"description"`
	Version      string       `json:"version"`
	Schema       ConfigSchema `json:"schema"`
	Factory      Factory      `json:"-"`
	Dependencies []string     `json:"dependencies"`
}

// RegistrationConfig is the argument struct for RegisterWithConfig. It maps
// 1:1 onto Registration.
type RegistrationConfig struct {
	Name        string
	Factory     Factory
	Schema      ConfigSchema
	Type        string
	Protocol    string
	Domain      string
	Description string
	Version     string
}

// Registry holds component factories and the instances built from them.
// Factories answer "what can be created", instances answer "what is
// running"; both sides are safe for concurrent use.
type Registry struct {
	mu              sync.RWMutex
	factories       map[string]*Registration
	instances       map[string]Discoverable
	resourceTracker map[string]string // resource ID -> owning instance
}

// invalidArg rejects a bad registry argument, naming the method and the
// check that failed.
func invalidArg(method, action string) error {
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", method, action)
}

// invalidf builds an invalid-classified registry error from a formatted
// message.
func invalidf(method, action, format string, args ...any) error {
	return errors.WrapInvalid(fmt.Errorf(format, args...), "Registry", method, action)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:       make(map[string]*Registration),
		instances:       make(map[string]Discoverable),
		resourceTracker: make(map[string]string),
	}
}

// RegisterFactory adds a factory under the given name. Registering the same
// name twice is an error.
func (r *Registry) RegisterFactory(name string, registration *Registration) error {
	switch {
	case name == "":
		return invalidArg("RegisterFactory", "factory name validation")
	case registration == nil:
		return invalidArg("RegisterFactory", "registration validation")
	case registration.Factory == nil:
		return invalidArg("RegisterFactory", "factory function validation")
	case registration.Type == "":
		return invalidArg("RegisterFactory", "component type validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return invalidf("RegisterFactory", "duplicate factory check",
			"factory '%s' is already registered", name)
	}
	r.factories[name] = registration
	return nil
}

// RegisterWithConfig registers a factory from a RegistrationConfig. This is
// the form component packages use in their Register functions.
func (r *Registry) RegisterWithConfig(config RegistrationConfig) error {
	return r.RegisterFactory(config.Name, &Registration{
		Name:        config.Name,
		Factory:     config.Factory,
		Schema:      config.Schema,
		Type:        config.Type,
		Protocol:    config.Protocol,
		Domain:      config.Domain,
		Description: config.Description,
		Version:     config.Version,
	})
}

// CreateComponent runs the factory named by config and registers the result
// under instanceName. The raw config passes the security validator before
// the factory ever sees it, and the factory's declared type must match the
// type the config asks for.
func (r *Registry) CreateComponent(
	instanceName string, config types.ComponentConfig, deps Dependencies,
) (Discoverable, error) {
	if err := ValidateComponentName(instanceName); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "instance name validation")
	}
	if config.Type == "" {
		return nil, invalidArg("CreateComponent", "component type validation")
	}
	if err := ValidateComponentName(config.Name); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "factory name validation")
	}
	if deps.NATSClient == nil {
		return nil, invalidArg("CreateComponent", "NATS client validation")
	}
	if err := ValidateFactoryConfig(config.Config); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "config security validation")
	}

	r.mu.RLock()
	registration, exists := r.factories[config.Name]
	r.mu.RUnlock()

	if !exists {
		return nil, invalidf("CreateComponent", "factory lookup",
			"unknown component factory '%s'", config.Name)
	}
	if registration.Type != string(config.Type) {
		return nil, invalidf("CreateComponent", "type validation",
			"component '%s' is type '%s', not '%s'",
			config.Name, registration.Type, config.Type)
	}

	component, err := registration.Factory(config.Config, deps)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "factory execution")
	}

	if err := r.RegisterInstance(instanceName, component); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "instance registration")
	}
	return component, nil
}

// RegisterInstance records a running component under name, claiming the
// exclusive resources its ports declare. Duplicate names and resource
// conflicts are errors.
func (r *Registry) RegisterInstance(name string, component Discoverable) error {
	if name == "" {
		return invalidArg("RegisterInstance", "instance name validation")
	}
	if component == nil {
		return invalidArg("RegisterInstance", "component validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; exists {
		return invalidf("RegisterInstance", "duplicate instance check",
			"instance '%s' is already registered", name)
	}
	if err := r.claimResources(name, component); err != nil {
		return errors.Wrap(err, "Registry", "RegisterInstance", "resource conflict check")
	}
	r.instances[name] = component
	return nil
}

// UnregisterInstance removes a component instance and releases its
// exclusive resources. Unknown names are ignored.
func (r *Registry) UnregisterInstance(name string) {
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if component, exists := r.instances[name]; exists {
		r.releaseResources(name, component)
	}
	delete(r.instances, name)
}

// ListComponents returns a snapshot of all registered instances.
func (r *Registry) ListComponents() map[string]Discoverable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Discoverable, len(r.instances))
	maps.Copy(result, r.instances)
	return result
}

// Component returns the instance registered under name, or nil.
func (r *Registry) Component(name string) Discoverable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[name]
}

// GetComponentSchema returns the schema stored at registration time for the
// named component type. No component is instantiated.
func (r *Registry) GetComponentSchema(name string) (ConfigSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.factories[name]
	if !exists {
		return ConfigSchema{}, invalidf("GetComponentSchema", "type lookup",
			"component type %q not found", name)
	}
	return registration.Schema, nil
}

// ListComponentTypes returns the registered factory names.
func (r *Registry) ListComponentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// ListFactories returns registration metadata for every factory. Factory
// functions and schemas are omitted from the copies so callers cannot
// mutate registry state through them.
func (r *Registry) ListFactories() map[string]*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Registration, len(r.factories))
	for name, registration := range r.factories {
		result[name] = &Registration{
			Name:         registration.Name,
			Type:         registration.Type,
			Protocol:     registration.Protocol,
			Domain:       registration.Domain,
			Description:  registration.Description,
			Version:      registration.Version,
			Dependencies: registration.Dependencies,
		}
	}
	return result
}

// GetFactory returns the factory function registered under name.
func (r *Registry) GetFactory(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.factories[name]
	if !exists {
		return nil, false
	}
	return registration.Factory, true
}

// ListAvailable returns discovery metadata for every registered type.
func (r *Registry) ListAvailable() map[string]Info {
	factories := r.ListFactories()
	result := make(map[string]Info, len(factories))
	for name, registration := range factories {
		result[name] = Info{
			Type:        registration.Type,
			Protocol:    registration.Protocol,
			Domain:      registration.Domain,
			Description: registration.Description,
			Version:     registration.Version,
		}
	}
	return result
}

// claimResources verifies none of the component's exclusive port resources
// are held by another instance, then records ownership. Callers hold the
// write lock.
func (r *Registry) claimResources(instanceName string, component Discoverable) error {
	ports := append(component.InputPorts(), component.OutputPorts()...)
	for _, port := range ports {
		if port.Config == nil || !port.Config.IsExclusive() {
			continue
		}
		if networkPort, ok := port.Config.(NetworkPort); ok {
			if err := ValidatePortNumber(networkPort.Port); err != nil {
				return errors.Wrap(err, "Registry", "claimResources", "network port validation")
			}
		}
		resourceID := port.Config.ResourceID()
		if owner, exists := r.resourceTracker[resourceID]; exists {
			return invalidf("claimResources", "exclusive resource check",
				"resource conflict: %s already used by component '%s'", resourceID, owner)
		}
	}
	for _, port := range ports {
		if port.Config != nil && port.Config.IsExclusive() {
			r.resourceTracker[port.Config.ResourceID()] = instanceName
		}
	}
	return nil
}

// releaseResources drops resource ownership records that belong to the
// instance. Callers hold the write lock.
func (r *Registry) releaseResources(instanceName string, component Discoverable) {
	for _, port := range append(component.InputPorts(), component.OutputPorts()...) {
		if port.Config == nil || !port.Config.IsExclusive() {
			continue
		}
		resourceID := port.Config.ResourceID()
		if r.resourceTracker[resourceID] == instanceName {
			delete(r.resourceTracker, resourceID)
		}
	}
}

// The package-level payload registry backs message deserialization. Payload
// types register here from init functions; unlike components they are plain
// data types with no lifecycle, so global registration is safe.
var globalPayloadRegistry = NewPayloadRegistry()

// RegisterPayload registers a payload factory globally so typed payloads
// can be rebuilt from their wire form.
func RegisterPayload(registration *PayloadRegistration) error {
	return globalPayloadRegistry.RegisterPayload(registration)
}

// CreatePayload builds an empty payload for the given message type, or nil
// when the type is not registered.
func CreatePayload(domain, category, version string) any {
	return globalPayloadRegistry.CreatePayload(domain, category, version)
}
