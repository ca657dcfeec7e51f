package message

import (
	"fmt"
	"strings"
	"time"
)

// Triple represents a semantic statement following the Subject-Predicate-Object
// pattern. Triples are the unit of knowledge the reasoning engine consumes and
// produces, so the type is deliberately minimal: identity is the statement
// itself, not where it came from or when.
//
// Triple design follows these principles:
//   - Subject: IRI of the entity the statement is about
//   - Predicate: IRI of the property or relationship
//   - Object: a typed Term, either a resource reference (IRI) or a literal value
//   - Equality: structural over all three positions, nothing else
//
// Provenance (source, timestamps, batch context) lives on the payload that
// carries the triples, not on the triple itself. This keeps deduplication
// honest: the same fact asserted by two sources is still the same fact.
//
// Example triples from a regulatory knowledge base:
//   - (<.../GDPR-Art-5>, <rdfs:subClassOf>, <.../GDPR-Principle>)
//   - (<.../GDPR>, <legal:jurisdiction>, "EU")
//   - (<.../DPA-2018>, <legal:references>, <.../GDPR>)
//
// Triple is a comparable value type and can be used directly as a map key;
// Key() exposes the same structure under a dedicated type for index maps.
type Triple struct {
	// Subject is the IRI of the entity this triple describes.
	Subject string `json:"subject"`

	// Predicate is the IRI of the property or relationship.
	// Well-known predicates are defined in the vocabulary package.
	Predicate string `json:"predicate"`

	// Object is the statement's value: a resource reference or a literal.
	Object Term `json:"object"`
}

// NewTriple constructs a triple from a subject IRI, predicate IRI, and object term.
func NewTriple(subject, predicate string, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// Key is the canonical structural identity of a triple, suitable for use as
// a map key. Two triples produce the same Key exactly when subject, predicate,
// and object (kind, value, datatype) all match. No string concatenation is
// involved, so IRIs containing separator characters cannot collide.
type Key struct {
	Subject   string
	Predicate string
	Object    Term
}

// Key returns the canonical structural identity of this triple.
func (t Triple) Key() Key {
	return Key{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
}

// Equal reports structural equality of two triples.
func (t Triple) Equal(other Triple) bool {
	return t == other
}

// IsRelationship reports whether this triple links two resources rather than
// asserting a literal property value. Only relationship triples participate
// in graph traversal rules such as transitivity.
func (t Triple) IsRelationship() bool {
	return t.Object.IsURI()
}

// Validate checks the triple for structural correctness.
func (t Triple) Validate() error {
	if t.Subject == "" {
		return fmt.Errorf("triple subject cannot be empty")
	}
	if t.Predicate == "" {
		return fmt.Errorf("triple predicate cannot be empty")
	}
	if err := t.Object.Validate(); err != nil {
		return fmt.Errorf("triple object: %w", err)
	}
	return nil
}

// String renders the triple in an N-Triples inspired form for logs and errors.
func (t Triple) String() string {
	return fmt.Sprintf("<%s> <%s> %s", t.Subject, t.Predicate, t.Object)
}

// TripleGenerator enables payloads to produce semantic triples for reasoning
// and graph storage. This interface replaces untyped property maps with
// structured semantic assertions.
//
// Implementations should:
//   - Generate triples for all meaningful statements in the payload
//   - Use vocabulary predicate constants for consistency
//   - Express entity relationships as triples with URI objects
//   - Express property values as typed literal objects
//
// Example implementation for a regulation payload:
//
//	func (r *RegulationPayload) Triples() []Triple {
//	    subject := vocabulary.EntityIRI(r.EntityID())
//	    return []Triple{
//	        NewTriple(subject, vocabulary.LegalJurisdiction, Literal(r.Jurisdiction)),
//	        NewTriple(subject, vocabulary.LegalReferences, URI(r.ReferencedIRI)),
//	    }
//	}
type TripleGenerator interface {
	// Triples returns semantic triples extracted from this payload.
	Triples() []Triple
}

// TermFromValue converts an arbitrary JSON-ish value into a Term using
// conservative rules: strings that look like resource references (full IRIs
// or canonical entity IDs) become URI terms, everything else becomes a typed
// literal. This is the bridge from loosely typed upstream payloads into the
// strictly typed triple model.
func TermFromValue(value any) Term {
	switch v := value.(type) {
	case Term:
		return v
	case string:
		if IsIRI(v) || IsValidEntityID(v) {
			return URI(v)
		}
		return Literal(v)
	case bool:
		return BooleanLiteral(v)
	case int:
		return IntegerLiteral(int64(v))
	case int32:
		return IntegerLiteral(int64(v))
	case int64:
		return IntegerLiteral(v)
	case float32:
		return DecimalLiteral(float64(v))
	case float64:
		return DecimalLiteral(v)
	case time.Time:
		return TimeLiteral(v)
	case nil:
		return Literal("")
	default:
		return Literal(fmt.Sprintf("%v", v))
	}
}

// IsIRI reports whether a string looks like an absolute IRI with a scheme,
// such as "https://example.org/resource" or "urn:isbn:0451450523".
func IsIRI(s string) bool {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return false
	}
	// Scheme must be alphanumeric and start with a letter (RFC 3986).
	scheme := s[:idx]
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return len(s) > idx+1
}

// IsValidEntityID checks if a string conforms to the canonical 6-part entity
// ID format used across the platform: org.platform.domain.system.type.instance
// (e.g. "c360.platform1.legal.registry.regulation.gdpr"). Entity IDs are
// mapped to IRIs by the vocabulary package before reasoning.
func IsValidEntityID(s string) bool {
	if s == "" {
		return false
	}

	parts := strings.Split(s, ".")
	// Require exactly 6 parts for canonical format
	if len(parts) != 6 {
		return false
	}

	// Check that no part is empty (handles cases like "a..b.c" or "a.b.c.")
	for _, part := range parts {
		if part == "" {
			return false
		}
	}

	return true
}
