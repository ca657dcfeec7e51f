package component

import (
	"fmt"
	"sync"

	"github.com/c360/semreason/errors"
)

// PayloadFactory returns a fresh, empty payload for one message type. The
// result is declared any to avoid an import cycle with the message package;
// in practice it implements message.Payload.
type PayloadFactory func() any

// PayloadRegistration describes one payload type: the factory that builds
// it plus the domain/category/version triple that names it on the wire.
type PayloadRegistration struct {
	Factory     PayloadFactory `json:"-"`
	Domain      string         `json:"domain"`   // e.g. "reason", "graph"
	Category    string         `json:"category"` // e.g. "request", "triples"
	Version     string         `json:"version"`  // e.g. "v1"
	Description string         `json:"description"`
	Example     map[string]any `json:"example"`
}

// MessageType returns the wire name "domain.category.version".
func (pr *PayloadRegistration) MessageType() string {
	return fmt.Sprintf("%s.%s.%s", pr.Domain, pr.Category, pr.Version)
}

// withoutFactory copies the registration minus its factory function, for
// returning to callers that must not construct payloads through it.
func (pr *PayloadRegistration) withoutFactory() *PayloadRegistration {
	c := *pr
	c.Factory = nil
	return &c
}

// PayloadRegistry maps message type names to payload factories so message
// deserialization can rebuild typed payloads from JSON. Unregistered types
// are not an error; deserialization falls back to a generic payload.
type PayloadRegistry struct {
	mu            sync.RWMutex
	registrations map[string]*PayloadRegistration
}

// NewPayloadRegistry creates an empty payload registry.
func NewPayloadRegistry() *PayloadRegistry {
	return &PayloadRegistry{
		registrations: make(map[string]*PayloadRegistration),
	}
}

// RegisterPayload validates and stores a payload registration. The factory
// and all three name parts are mandatory, and each message type registers
// at most once.
func (pr *PayloadRegistry) RegisterPayload(registration *PayloadRegistration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"PayloadRegistry", "RegisterPayload", "registration validation")
	}
	if registration.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"PayloadRegistry", "RegisterPayload", "factory function validation")
	}
	for _, part := range []struct{ field, value string }{
		{"domain", registration.Domain},
		{"category", registration.Category},
		{"version", registration.Version},
	} {
		if part.value == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig,
				"PayloadRegistry", "RegisterPayload", part.field+" validation")
		}
	}

	msgType := registration.MessageType()

	pr.mu.Lock()
	defer pr.mu.Unlock()

	if _, exists := pr.registrations[msgType]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("payload type '%s' is already registered", msgType),
			"PayloadRegistry", "RegisterPayload", "duplicate payload check")
	}
	pr.registrations[msgType] = registration
	return nil
}

// CreatePayload builds an empty payload for the named type, or returns nil
// when the type is unknown.
func (pr *PayloadRegistry) CreatePayload(domain, category, version string) any {
	typeStr := fmt.Sprintf("%s.%s.%s", domain, category, version)

	pr.mu.RLock()
	registration, exists := pr.registrations[typeStr]
	pr.mu.RUnlock()

	if !exists {
		return nil
	}
	return registration.Factory()
}

// ListPayloads returns all registrations keyed by message type, without
// their factory functions.
func (pr *PayloadRegistry) ListPayloads() map[string]*PayloadRegistration {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	result := make(map[string]*PayloadRegistration, len(pr.registrations))
	for msgType, registration := range pr.registrations {
		result[msgType] = registration.withoutFactory()
	}
	return result
}
