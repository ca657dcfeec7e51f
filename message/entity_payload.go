package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/semreason/component"
)

// Registers graph.Entity.v1 so BaseMessage.UnmarshalJSON can rebuild
// entity payloads off the wire.
func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "Entity",
		Version:     "v1",
		Description: "Generic entity payload for semantic graph processing",
		Factory: func() any {
			return &EntityPayload{}
		},
		Example: map[string]any{
			"entity_id":   "c360.platform1.legal.registry.regulation.gdpr",
			"entity_type": "legal.regulation",
			"properties": map[string]any{
				"jurisdiction": "EU",
				"in_force":     true,
			},
			"class":      "Thing",
			"role":       "primary",
			"confidence": 1.0,
		},
	})
	if err != nil {
		panic("failed to register Entity payload: " + err.Error())
	}
}

// EntityPayload is the generic entity message: an identified entity with a
// bag of properties. It bridges loosely typed upstream data and the
// strictly typed triple model. Properties become typed terms through
// TermFromValue, so an entity message can flow straight into the reasoner
// with entity references staying URIs and measurements staying literals.
type EntityPayload struct {
	// ID is the canonical 6-part entity identifier
	// (org.platform.domain.system.type.instance).
	ID string `json:"entity_id"`

	// Type is the dotted entity type, e.g. "legal.regulation".
	Type string `json:"entity_type"`

	// Properties holds the entity's attributes as arbitrary key-value
	// pairs. Each becomes one triple.
	Properties map[string]any `json:"properties"`

	// Class is the optional coarse classification (Object, Event, ...).
	Class EntityClass `json:"class,omitempty"`

	// Role is the optional relation of this entity to the message
	// (primary, observed, ...).
	Role EntityRole `json:"role,omitempty"`

	// Source identifies where this entity data came from.
	Source string `json:"source,omitempty"`

	// Timestamp is when the entity data was captured.
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Confidence rates the reliability of the data, 0.0 to 1.0.
	Confidence float64 `json:"confidence,omitempty"`
}

// Schema returns graph.Entity.v1.
func (e *EntityPayload) Schema() Type {
	return Type{
		Domain:   "graph",
		Category: "Entity",
		Version:  "v1",
	}
}

// Validate requires an ID, a type, and a non-nil property map.
func (e *EntityPayload) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity_id is required")
	}
	if e.Type == "" {
		return fmt.Errorf("entity_type is required")
	}
	if e.Properties == nil {
		return fmt.Errorf("properties cannot be nil")
	}
	return nil
}

// EntityID implements Graphable.
func (e *EntityPayload) EntityID() string {
	return e.ID
}

// Triples implements Graphable by turning the property bag into facts.
// Subjects use the raw entity ID; the vocabulary package maps entity IDs
// to IRIs before reasoning. One rdf:type triple declares the entity type,
// an rdf:class triple is added when Class is set and valid, and every
// property becomes a "<entity_type>.<key>" triple with a typed object.
func (e *EntityPayload) Triples() []Triple {
	triples := make([]Triple, 0, len(e.Properties)+2)

	triples = append(triples, Triple{
		Subject:   e.ID,
		Predicate: "rdf:type",
		Object:    URI(e.Type),
	})

	if e.Class != "" && e.Class.IsValid() {
		triples = append(triples, Triple{
			Subject:   e.ID,
			Predicate: "rdf:class",
			Object:    Literal(e.Class.String()),
		})
	}

	for key, value := range e.Properties {
		triples = append(triples, Triple{
			Subject:   e.ID,
			Predicate: fmt.Sprintf("%s.%s", e.Type, key),
			Object:    TermFromValue(value),
		})
	}

	return triples
}

// MarshalJSON implements the Payload contract.
func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type alias EntityPayload // alias drops the method set, avoiding recursion
	return json.Marshal((*alias)(e))
}

// UnmarshalJSON implements the Payload contract.
func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type alias EntityPayload
	return json.Unmarshal(data, (*alias)(e))
}

// NewEntityPayload builds an entity with full confidence and the capture
// time stamped as now.
func NewEntityPayload(id, entityType string, properties map[string]any) *EntityPayload {
	return &EntityPayload{
		ID:         id,
		Type:       entityType,
		Properties: properties,
		Confidence: 1.0,
		Timestamp:  time.Now(),
	}
}
