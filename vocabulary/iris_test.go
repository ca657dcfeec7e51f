package vocabulary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/semreason/config"
)

func TestEntityTypeIRI(t *testing.T) {
	cases := map[string]string{
		"legal.regulation":        "https://semreason.c360.io/legal#Regulation",
		"legal.directive":         "https://semreason.c360.io/legal#Directive",
		"graph.node":              "https://semreason.c360.io/graph#Node",
		"  legal.regulation  ":    "https://semreason.c360.io/legal#Regulation",
		"":                        "",
		"legalRegulation":         "", // no dot
		"legal.entity.regulation": "", // too many parts
		".regulation":             "", // empty domain
		"legal.":                  "", // empty type
	}

	for input, want := range cases {
		assert.Equal(t, want, EntityTypeIRI(input), "input %q", input)
	}
}

func TestEntityIRI(t *testing.T) {
	federated := config.PlatformConfig{ID: "eu-central-prod", Region: "brussels"}
	standalone := config.PlatformConfig{ID: "standalone"}

	assert.Equal(t,
		"https://semreason.c360.io/entities/eu-central-prod/brussels/legal/regulation/gdpr",
		EntityIRI("legal.regulation", federated, "gdpr"),
		"region appears between platform and domain")

	assert.Equal(t,
		"https://semreason.c360.io/entities/standalone/legal/directive/eprivacy",
		EntityIRI("legal.directive", standalone, "eprivacy"))

	assert.Empty(t, EntityIRI("legal.regulation", config.PlatformConfig{Region: "brussels"}, "gdpr"),
		"platform ID is required")
	assert.Empty(t, EntityIRI("legal.regulation", federated, ""),
		"local ID is required")
	assert.Empty(t, EntityIRI("invalid", federated, "entity_1"),
		"dotted type must have two parts")
}

func TestRelationshipIRI(t *testing.T) {
	cases := map[string]string{
		"AMENDED_BY":    "https://semreason.c360.io/relationships#amended-by",
		"HAS_CLAUSE":    "https://semreason.c360.io/relationships#has-clause",
		"PART_OF":       "https://semreason.c360.io/relationships#part-of",
		"HAS_ANNEX_123": "https://semreason.c360.io/relationships#has-annex-123",
		"AmendedBy":     "https://semreason.c360.io/relationships#amended-by",
		"cited-by":      "https://semreason.c360.io/relationships#cited-by",
		"CITES":         "https://semreason.c360.io/relationships#cites",
		"":              "",
	}

	for input, want := range cases {
		assert.Equal(t, want, RelationshipIRI(input), "input %q", input)
	}
}

func TestSubjectIRI(t *testing.T) {
	cases := map[string]string{
		"semantic.legal.triples": "https://semreason.c360.io/subjects/semantic/legal/triples",
		"reason.request.v1":      "https://semreason.c360.io/subjects/reason/request/v1",
		"graph.events.node":      "https://semreason.c360.io/subjects/graph/events/node",
		"status":                 "https://semreason.c360.io/subjects/status",
		"platform.eu-central.region.brussels.entity.regulation.status": "https://semreason.c360.io/subjects/platform/eu-central/region/brussels/entity/regulation/status",
		"":                 "",
		".semantic.legal.": "", // malformed
		"a..b":             "", // empty token
	}

	for input, want := range cases {
		assert.Equal(t, want, SubjectIRI(input), "input %q", input)
	}
}

func TestExpandCURIE(t *testing.T) {
	cases := map[string]string{
		"rdf:type":                   RdfType,
		"rdfs:subClassOf":            RdfsSubClassOf,
		"owl:sameAs":                 OwlSameAs,
		"eli:cites":                  EliCites,
		"https://example.org/custom": "https://example.org/custom",
		"unknown:thing":              "unknown:thing",
		"legal.reference.cites":      "legal.reference.cites",
		"rdf:":                       "rdf:", // empty local part
		"":                           "",
	}

	for input, want := range cases {
		assert.Equal(t, want, ExpandCURIE(input), "input %q", input)
	}
}

func TestCanonicalPredicate(t *testing.T) {
	cases := map[string]string{
		// CURIEs expand
		"rdf:type": RdfType,
		// registered dotted predicates map to their standard IRI
		LegalReferenceCites:      EliCites,
		LegalReferenceSupersedes: DcReplaces,
		// registered predicates without a standard IRI pass through
		GraphRelCommunicates: GraphRelCommunicates,
		// everything else passes through
		"custom.local.predicate": "custom.local.predicate",
		RdfsSubClassOf:           RdfsSubClassOf,
	}

	for input, want := range cases {
		assert.Equal(t, want, CanonicalPredicate(input), "input %q", input)
	}
}

func TestNamespaceConstants(t *testing.T) {
	assert.Equal(t, "https://semreason.c360.io", SemReasonBase)
	for _, ns := range []string{GraphNamespace, SystemNamespace, LegalNamespace} {
		assert.True(t, strings.HasPrefix(ns, SemReasonBase), "namespace %s", ns)
	}
}

func BenchmarkEntityTypeIRI(b *testing.B) {
	for b.Loop() {
		EntityTypeIRI("legal.regulation")
	}
}

func BenchmarkEntityIRI(b *testing.B) {
	platform := config.PlatformConfig{ID: "eu-central-prod", Region: "brussels"}
	for b.Loop() {
		EntityIRI("legal.regulation", platform, "gdpr")
	}
}

func BenchmarkCanonicalPredicate(b *testing.B) {
	for b.Loop() {
		CanonicalPredicate("legal.reference.cites")
	}
}
