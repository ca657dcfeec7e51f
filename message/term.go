package message

import (
	"fmt"
	"strconv"
	"time"
)

// XSD datatype IRIs used for literal terms on the wire.
// These follow the W3C XML Schema namespace so that literals remain
// interpretable by standard RDF tooling downstream.
const (
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble   = "http://www.w3.org/2001/XMLSchema#double"
	XSDDate     = "http://www.w3.org/2001/XMLSchema#date"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDAnyURI   = "http://www.w3.org/2001/XMLSchema#anyURI"
)

// TermKind distinguishes resource references from literal values.
type TermKind string

const (
	// TermURI marks a term that references a resource by IRI.
	TermURI TermKind = "uri"

	// TermLiteral marks a term that carries a literal value,
	// optionally tagged with an XSD datatype.
	TermLiteral TermKind = "literal"
)

// Term is the object position of a semantic triple. A term is either a
// resource reference (IRI) or a literal value with an optional datatype.
//
// The distinction matters for reasoning: only URI objects participate in
// relationship traversal (transitivity, inverse properties), while literals
// carry property values. A literal whose text happens to equal an IRI is
// still a literal; the two never compare equal.
//
// Term is a comparable value type. Two terms are equal exactly when their
// Kind, Value, and Datatype all match, which makes Term usable directly in
// map keys for structural deduplication.
type Term struct {
	// Kind is "uri" for resource references or "literal" for values.
	Kind TermKind `json:"kind"`

	// Value holds the IRI for URI terms, or the lexical form for literals.
	Value string `json:"value"`

	// Datatype optionally tags literal terms with an XSD datatype IRI.
	// Always empty for URI terms.
	Datatype string `json:"datatype,omitempty"`
}

// URI creates a term referencing a resource by IRI.
func URI(iri string) Term {
	return Term{Kind: TermURI, Value: iri}
}

// Literal creates an untyped literal term.
func Literal(value string) Term {
	return Term{Kind: TermLiteral, Value: value}
}

// TypedLiteral creates a literal term tagged with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: TermLiteral, Value: value, Datatype: datatype}
}

// BooleanLiteral creates an xsd:boolean literal.
func BooleanLiteral(v bool) Term {
	return TypedLiteral(strconv.FormatBool(v), XSDBoolean)
}

// IntegerLiteral creates an xsd:integer literal.
func IntegerLiteral(v int64) Term {
	return TypedLiteral(strconv.FormatInt(v, 10), XSDInteger)
}

// DecimalLiteral creates an xsd:decimal literal.
func DecimalLiteral(v float64) Term {
	return TypedLiteral(strconv.FormatFloat(v, 'f', -1, 64), XSDDecimal)
}

// TimeLiteral creates an xsd:dateTime literal in RFC 3339 form.
func TimeLiteral(t time.Time) Term {
	return TypedLiteral(t.UTC().Format(time.RFC3339), XSDDateTime)
}

// IsURI reports whether the term references a resource.
func (t Term) IsURI() bool {
	return t.Kind == TermURI
}

// IsLiteral reports whether the term carries a literal value.
func (t Term) IsLiteral() bool {
	return t.Kind == TermLiteral
}

// IsZero reports whether the term is the zero value (no kind, no value).
func (t Term) IsZero() bool {
	return t.Kind == "" && t.Value == "" && t.Datatype == ""
}

// Equal reports structural equality: kind, value, and datatype must all match.
func (t Term) Equal(other Term) bool {
	return t == other
}

// Validate checks that the term is well formed.
func (t Term) Validate() error {
	switch t.Kind {
	case TermURI:
		if t.Value == "" {
			return fmt.Errorf("uri term requires a value")
		}
		if t.Datatype != "" {
			return fmt.Errorf("uri term cannot carry a datatype")
		}
	case TermLiteral:
		// Empty literal values are allowed; empty strings are valid RDF literals.
	default:
		return fmt.Errorf("unknown term kind: %q", t.Kind)
	}
	return nil
}

// String renders the term in an N-Triples inspired form for logs and errors:
// URIs as <iri>, literals as "value" with an optional ^^<datatype> suffix.
func (t Term) String() string {
	switch t.Kind {
	case TermURI:
		return "<" + t.Value + ">"
	case TermLiteral:
		if t.Datatype != "" {
			return strconv.Quote(t.Value) + "^^<" + t.Datatype + ">"
		}
		return strconv.Quote(t.Value)
	default:
		return strconv.Quote(t.Value)
	}
}
