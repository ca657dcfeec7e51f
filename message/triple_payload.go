package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/semreason/component"
)

// init registers the TripleBatch payload type with the global PayloadRegistry.
// This enables BaseMessage.UnmarshalJSON to recreate TripleBatch payloads
// from JSON when the message type is "reason.triples.v1".
func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "reason",
		Category:    "triples",
		Version:     "v1",
		Description: "Batch of semantic triples for reasoning and graph processing",
		Factory: func() any {
			return &TripleBatchPayload{}
		},
		Example: map[string]any{
			"triples": []map[string]any{
				{
					"subject":   "https://semreason.c360.io/entity/legal/regulation/gdpr",
					"predicate": "https://semreason.c360.io/def/legal/jurisdiction",
					"object":    map[string]any{"kind": "literal", "value": "EU"},
				},
			},
			"source":  "legal-ingest",
			"context": "batch-42",
		},
	})
	if err != nil {
		panic("failed to register TripleBatch payload: " + err.Error())
	}
}

// TripleBatchPayload carries a batch of semantic triples through the mesh.
// It is the standard input format for the reasoning processor: upstream
// components assemble triples (from entity extraction, document parsing, or
// manual curation) and publish them as a batch.
//
// Provenance lives at batch level. The triples themselves stay minimal
// so that structural deduplication works across batches from different
// sources; Source, Context, and AssertedAt describe the batch, not the facts.
type TripleBatchPayload struct {
	// Items is the batch content. Must be non-empty and each triple valid.
	Items []Triple `json:"triples"`

	// Source identifies the component or pipeline that assembled this batch.
	Source string `json:"source,omitempty"`

	// Context is a correlation identifier for tracking the batch through
	// the pipeline. Typically a ULID or request ID.
	Context string `json:"context,omitempty"`

	// AssertedAt records when the batch was assembled.
	AssertedAt time.Time `json:"asserted_at,omitempty"`
}

// NewTripleBatch creates a batch payload with the assembly time set to now.
func NewTripleBatch(triples []Triple, source string) *TripleBatchPayload {
	return &TripleBatchPayload{
		Items:      triples,
		Source:     source,
		AssertedAt: time.Now(),
	}
}

// Schema implements the Payload interface.
func (p *TripleBatchPayload) Schema() Type {
	return Type{
		Domain:   "reason",
		Category: "triples",
		Version:  "v1",
	}
}

// Validate implements the Payload interface. A batch must contain at least
// one triple and every triple must be structurally valid.
func (p *TripleBatchPayload) Validate() error {
	if len(p.Items) == 0 {
		return fmt.Errorf("triple batch cannot be empty")
	}
	for i, t := range p.Items {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("triple %d: %w", i, err)
		}
	}
	return nil
}

// Triples implements the TripleGenerator interface.
func (p *TripleBatchPayload) Triples() []Triple {
	return p.Items
}

// CorrelationID implements the Correlatable interface using the batch context.
func (p *TripleBatchPayload) CorrelationID() string {
	return p.Context
}

// MarshalJSON serializes the batch payload.
func (p *TripleBatchPayload) MarshalJSON() ([]byte, error) {
	type Alias TripleBatchPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON deserializes JSON data into the batch payload.
func (p *TripleBatchPayload) UnmarshalJSON(data []byte) error {
	type Alias TripleBatchPayload
	return json.Unmarshal(data, (*Alias)(p))
}
