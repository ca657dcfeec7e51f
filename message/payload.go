package message

import "encoding/json"

// Payload is the data a message carries. Concrete payloads declare their
// schema, validate themselves, and serialize deterministically; anything
// beyond that (triple generation, correlation, expiry) is exposed through
// the optional behavioral interfaces.
//
//	type RegulationPayload struct {
//	    RegulationID string    `json:"regulation_id"`
//	    Jurisdiction string    `json:"jurisdiction"`
//	    InForce      bool      `json:"in_force"`
//	    Adopted      time.Time `json:"adopted"`
//	}
//
//	func (p *RegulationPayload) Schema() Type {
//	    return Type{Domain: "legal", Category: "regulation", Version: "v1"}
//	}
//
//	func (p *RegulationPayload) Validate() error {
//	    if p.RegulationID == "" {
//	        return errors.New("regulation ID is required")
//	    }
//	    return nil
//	}
//
//	func (p *RegulationPayload) MarshalJSON() ([]byte, error) {
//	    type alias RegulationPayload // alias drops the method set, avoiding recursion
//	    return json.Marshal((*alias)(p))
//	}
//
//	func (p *RegulationPayload) UnmarshalJSON(data []byte) error {
//	    type alias RegulationPayload
//	    return json.Unmarshal(data, (*alias)(p))
//	}
type Payload interface {
	// Schema returns the Type this payload serializes as. Routing and
	// payload-factory lookup both key on it.
	Schema() Type

	// Validate checks required fields, value ranges, and the payload's
	// own business rules. nil means the payload is well formed.
	Validate() error

	// Serialization must be deterministic: the same payload always
	// produces the same bytes, since message hashes are computed over
	// the marshaled form.
	json.Marshaler
	json.Unmarshaler
}
