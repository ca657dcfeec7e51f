package message

import (
	"encoding/json"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/errors"
)

// Registers the well-known core.json.v1 type so BaseMessage.UnmarshalJSON
// can decode generic JSON traffic without a domain-specific payload.
func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "core",
		Category:    "json",
		Version:     "v1",
		Description: "Generic JSON payload for testing, prototyping, and basic data processing",
		Factory: func() any {
			return &GenericJSONPayload{}
		},
		Example: map[string]any{
			"data": map[string]any{
				"document_id":  "reg-2016-679",
				"jurisdiction": "EU",
				"status":       "in-force",
			},
		},
	})
	if err != nil {
		panic("failed to register GenericJSON payload: " + err.Error())
	}
}

// GenericJSONPayload carries arbitrary JSON under the well-known type
// core.json.v1. It exists for prototyping, integration tests, and simple
// filter/map/transform flows where defining a domain payload would be
// overhead. Components that accept it declare the core.json.v1 type on
// their ports, so the flexibility stays visible in the flow graph.
//
//	payload := &GenericJSONPayload{
//	    Data: map[string]any{
//	        "document_id":  "reg-2016-679",
//	        "jurisdiction": "EU",
//	        "status":       "in-force",
//	    },
//	}
type GenericJSONPayload struct {
	// Data is the payload body. Any JSON object fits.
	Data map[string]any `json:"data"`
}

// NewGenericJSON wraps the given map in a GenericJSON payload.
func NewGenericJSON(data map[string]any) *GenericJSONPayload {
	return &GenericJSONPayload{
		Data: data,
	}
}

// Schema always returns core.json.v1.
func (g *GenericJSONPayload) Schema() Type {
	return Type{
		Domain:   "core",
		Category: "json",
		Version:  "v1",
	}
}

// Validate requires a non-nil data map. An empty map is valid.
func (g *GenericJSONPayload) Validate() error {
	if g.Data == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "GenericJSONPayload", "Validate", "data cannot be nil")
	}
	return nil
}

// MarshalJSON keeps the "data" wrapper on the wire.
func (g *GenericJSONPayload) MarshalJSON() ([]byte, error) {
	type alias GenericJSONPayload // alias drops the method set, avoiding recursion
	return json.Marshal((*alias)(g))
}

// UnmarshalJSON decodes the "data" wrapper form.
func (g *GenericJSONPayload) UnmarshalJSON(data []byte) error {
	type alias GenericJSONPayload
	return json.Unmarshal(data, (*alias)(g))
}
