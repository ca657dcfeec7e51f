package message

import (
	"encoding/json"
	"fmt"

	"github.com/c360/semreason/component"
)

// init registers the reasoning request and response payload types with the
// global PayloadRegistry so they round-trip through BaseMessage JSON.
func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "reason",
		Category:    "request",
		Version:     "v1",
		Description: "Request to run forward-chaining inference over a set of base triples",
		Factory: func() any {
			return &ReasonRequestPayload{}
		},
		Example: map[string]any{
			"request_id": "01J5KforwardchainXAMPLE00",
			"triples": []map[string]any{
				{
					"subject":   "https://semreason.c360.io/entity/legal/regulation/dpa-2018",
					"predicate": "https://semreason.c360.io/def/legal/references",
					"object": map[string]any{
						"kind":  "uri",
						"value": "https://semreason.c360.io/entity/legal/regulation/gdpr",
					},
				},
			},
			"profile":      "legal",
			"explanations": true,
		},
	})
	if err != nil {
		panic("failed to register ReasonRequest payload: " + err.Error())
	}

	err = component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "reason",
		Category:    "response",
		Version:     "v1",
		Description: "Inferred triples and convergence metadata from a reasoning run",
		Factory: func() any {
			return &ReasonResponsePayload{}
		},
		Example: map[string]any{
			"request_id": "01J5KforwardchainXAMPLE00",
			"inferred": []map[string]any{
				{
					"subject":   "https://semreason.c360.io/entity/legal/regulation/dpa-2018",
					"predicate": "https://semreason.c360.io/def/legal/jurisdiction",
					"object":    map[string]any{"kind": "literal", "value": "EU"},
				},
			},
			"converged":  true,
			"iterations": 2,
		},
	})
	if err != nil {
		panic("failed to register ReasonResponse payload: " + err.Error())
	}
}

// ReasonRequestPayload asks the reasoning processor to run forward-chaining
// inference over a set of base triples. Requests arrive over NATS
// request/reply or as stream messages; the RequestID correlates the
// eventual response.
type ReasonRequestPayload struct {
	// RequestID correlates this request with its response. Typically a ULID.
	RequestID string `json:"request_id"`

	// BaseTriples is the fact set to reason over. Must be non-empty.
	BaseTriples []Triple `json:"triples"`

	// Profile optionally names a rule profile to use instead of the
	// processor's default rule chain (e.g. "rdfs", "legal").
	Profile string `json:"profile,omitempty"`

	// MaxIterations optionally overrides the engine's iteration cap for
	// this request. Zero means use the engine default.
	MaxIterations int `json:"max_iterations,omitempty"`

	// Explanations requests provenance records for every inferred triple.
	Explanations bool `json:"explanations,omitempty"`
}

// Schema implements the Payload interface.
func (p *ReasonRequestPayload) Schema() Type {
	return Type{
		Domain:   "reason",
		Category: "request",
		Version:  "v1",
	}
}

// Validate implements the Payload interface.
func (p *ReasonRequestPayload) Validate() error {
	if p.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if len(p.BaseTriples) == 0 {
		return fmt.Errorf("request must contain at least one triple")
	}
	for i, t := range p.BaseTriples {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("triple %d: %w", i, err)
		}
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("max_iterations cannot be negative")
	}
	return nil
}

// Triples implements the TripleGenerator interface.
func (p *ReasonRequestPayload) Triples() []Triple {
	return p.BaseTriples
}

// CorrelationID implements the Correlatable interface.
func (p *ReasonRequestPayload) CorrelationID() string {
	return p.RequestID
}

// MarshalJSON serializes the request payload.
func (p *ReasonRequestPayload) MarshalJSON() ([]byte, error) {
	type Alias ReasonRequestPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON deserializes JSON data into the request payload.
func (p *ReasonRequestPayload) UnmarshalJSON(data []byte) error {
	type Alias ReasonRequestPayload
	return json.Unmarshal(data, (*Alias)(p))
}

// ReasonResponsePayload carries the outcome of a reasoning run: the inferred
// triples (never including base facts), convergence metadata, and optional
// per-triple explanations.
type ReasonResponsePayload struct {
	// RequestID echoes the request's correlation ID.
	RequestID string `json:"request_id"`

	// Inferred contains the newly derived triples in deterministic order.
	// Base triples are never echoed back.
	Inferred []Triple `json:"inferred"`

	// Converged is true when inference reached a fixed point before the
	// iteration cap. False means the cap cut the run short and the result,
	// while sound, may be incomplete.
	Converged bool `json:"converged"`

	// Iterations is the number of inference rounds executed.
	Iterations int `json:"iterations"`

	// Explanations holds provenance for inferred triples when requested.
	Explanations []Explanation `json:"explanations,omitempty"`

	// RuleErrors reports rules that failed during a permissive-mode run.
	// Empty on strict runs, which fail the whole request instead.
	RuleErrors []string `json:"rule_errors,omitempty"`

	// Error is set when the run itself failed (invalid request, unknown
	// profile, aborted inference). Inferred is empty in that case.
	Error string `json:"error,omitempty"`
}

// Schema implements the Payload interface.
func (p *ReasonResponsePayload) Schema() Type {
	return Type{
		Domain:   "reason",
		Category: "response",
		Version:  "v1",
	}
}

// Validate implements the Payload interface.
func (p *ReasonResponsePayload) Validate() error {
	if p.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if p.Iterations < 0 {
		return fmt.Errorf("iterations cannot be negative")
	}
	for i, t := range p.Inferred {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("inferred triple %d: %w", i, err)
		}
	}
	for i, e := range p.Explanations {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("explanation %d: %w", i, err)
		}
	}
	return nil
}

// Triples implements the TripleGenerator interface, exposing the inferred
// triples so responses can flow straight into graph storage components.
func (p *ReasonResponsePayload) Triples() []Triple {
	return p.Inferred
}

// CorrelationID implements the Correlatable interface.
func (p *ReasonResponsePayload) CorrelationID() string {
	return p.RequestID
}

// MarshalJSON serializes the response payload.
func (p *ReasonResponsePayload) MarshalJSON() ([]byte, error) {
	type Alias ReasonResponsePayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON deserializes JSON data into the response payload.
func (p *ReasonResponsePayload) UnmarshalJSON(data []byte) error {
	type Alias ReasonResponsePayload
	return json.Unmarshal(data, (*Alias)(p))
}
