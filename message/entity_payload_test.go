package message

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEntityPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload *EntityPayload
		wantErr bool
	}{
		{
			name: "valid entity",
			payload: &EntityPayload{
				ID:         "c360.platform1.legal.registry.regulation.gdpr",
				Type:       "legal.regulation",
				Properties: map[string]any{"jurisdiction": "EU"},
			},
			wantErr: false,
		},
		{
			name: "missing ID",
			payload: &EntityPayload{
				Type:       "legal.regulation",
				Properties: map[string]any{},
			},
			wantErr: true,
		},
		{
			name: "missing type",
			payload: &EntityPayload{
				ID:         "c360.platform1.legal.registry.regulation.gdpr",
				Properties: map[string]any{},
			},
			wantErr: true,
		},
		{
			name: "nil properties",
			payload: &EntityPayload{
				ID:   "c360.platform1.legal.registry.regulation.gdpr",
				Type: "legal.regulation",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntityPayloadTriples(t *testing.T) {
	enacted := time.Date(2016, 4, 27, 0, 0, 0, 0, time.UTC)
	payload := &EntityPayload{
		ID:    "c360.platform1.legal.registry.regulation.gdpr",
		Type:  "legal.regulation",
		Class: ClassObject,
		Properties: map[string]any{
			"jurisdiction": "EU",
			"in_force":     true,
			"articles":     99,
			"enacted":      enacted,
			"supersedes":   "https://semreason.c360.io/regulation/dpd-1995",
		},
	}

	triples := payload.Triples()

	// rdf:type + rdf:class + 5 properties
	if len(triples) != 7 {
		t.Fatalf("Triples() returned %d triples, want 7", len(triples))
	}

	byPredicate := make(map[string]Triple, len(triples))
	for _, tr := range triples {
		if tr.Subject != payload.ID {
			t.Errorf("triple subject = %q, want %q", tr.Subject, payload.ID)
		}
		byPredicate[tr.Predicate] = tr
	}

	// Entity type is a URI reference, not a string literal.
	typeTriple, ok := byPredicate["rdf:type"]
	if !ok {
		t.Fatal("missing rdf:type triple")
	}
	if !typeTriple.Object.IsURI() || typeTriple.Object.Value != "legal.regulation" {
		t.Errorf("rdf:type object = %v, want URI(legal.regulation)", typeTriple.Object)
	}

	classTriple, ok := byPredicate["rdf:class"]
	if !ok {
		t.Fatal("missing rdf:class triple")
	}
	if !classTriple.Object.IsLiteral() || classTriple.Object.Value != "Object" {
		t.Errorf("rdf:class object = %v, want Literal(Object)", classTriple.Object)
	}

	// Property values become typed terms.
	cases := []struct {
		predicate    string
		wantKind     TermKind
		wantValue    string
		wantDatatype string
	}{
		{"legal.regulation.jurisdiction", TermLiteral, "EU", ""},
		{"legal.regulation.in_force", TermLiteral, "true", XSDBoolean},
		{"legal.regulation.articles", TermLiteral, "99", XSDInteger},
		{"legal.regulation.enacted", TermLiteral, "2016-04-27T00:00:00Z", XSDDateTime},
		{"legal.regulation.supersedes", TermURI, "https://semreason.c360.io/regulation/dpd-1995", ""},
	}
	for _, c := range cases {
		tr, ok := byPredicate[c.predicate]
		if !ok {
			t.Errorf("missing triple for predicate %q", c.predicate)
			continue
		}
		if tr.Object.Kind != c.wantKind {
			t.Errorf("%s: object kind = %q, want %q", c.predicate, tr.Object.Kind, c.wantKind)
		}
		if tr.Object.Value != c.wantValue {
			t.Errorf("%s: object value = %q, want %q", c.predicate, tr.Object.Value, c.wantValue)
		}
		if tr.Object.Datatype != c.wantDatatype {
			t.Errorf("%s: object datatype = %q, want %q", c.predicate, tr.Object.Datatype, c.wantDatatype)
		}
	}
}

func TestEntityPayloadTriplesSkipsInvalidClass(t *testing.T) {
	payload := &EntityPayload{
		ID:         "c360.platform1.legal.registry.regulation.gdpr",
		Type:       "legal.regulation",
		Class:      EntityClass("NotAClass"),
		Properties: map[string]any{},
	}

	for _, tr := range payload.Triples() {
		if tr.Predicate == "rdf:class" {
			t.Errorf("Triples() emitted rdf:class for invalid class %q", payload.Class)
		}
	}
}

func TestEntityPayloadRoundTrip(t *testing.T) {
	original := NewEntityPayload(
		"c360.platform1.legal.registry.regulation.gdpr",
		"legal.regulation",
		map[string]any{"jurisdiction": "EU"},
	)
	original.Class = ClassObject
	original.Role = RolePrimary
	original.Source = "registry-reader"

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded EntityPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID = %q, want %q", decoded.ID, original.ID)
	}
	if decoded.Type != original.Type {
		t.Errorf("Type = %q, want %q", decoded.Type, original.Type)
	}
	if decoded.Class != ClassObject {
		t.Errorf("Class = %q, want %q", decoded.Class, ClassObject)
	}
	if decoded.Role != RolePrimary {
		t.Errorf("Role = %q, want %q", decoded.Role, RolePrimary)
	}
	if decoded.Properties["jurisdiction"] != "EU" {
		t.Errorf("Properties[jurisdiction] = %v, want EU", decoded.Properties["jurisdiction"])
	}
}

func TestEntityPayloadImplementsGraphable(_ *testing.T) {
	var _ Graphable = (*EntityPayload)(nil)
}
