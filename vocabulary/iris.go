// Package vocabulary provides semantic vocabulary definitions and mappings.
package vocabulary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360/semreason/config"
)

// Base IRI constants for the SemReason vocabulary.
const (
	SemReasonBase   = "https://semreason.c360.io"
	GraphNamespace  = SemReasonBase + "/graph"
	SystemNamespace = SemReasonBase + "/system"
	LegalNamespace  = SemReasonBase + "/legal"
)

// Prefixes maps well-known CURIE prefixes to their namespace IRIs.
// ExpandCURIE uses this table; unknown prefixes pass through unchanged.
var Prefixes = map[string]string{
	"rdf":       "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":      "http://www.w3.org/2000/01/rdf-schema#",
	"owl":       "http://www.w3.org/2002/07/owl#",
	"skos":      "http://www.w3.org/2004/02/skos/core#",
	"dct":       "http://purl.org/dc/terms/",
	"schema":    "https://schema.org/",
	"prov":      "http://www.w3.org/ns/prov#",
	"foaf":      "http://xmlns.com/foaf/0.1/",
	"eli":       "http://data.europa.eu/eli/ontology#",
	"semreason": SemReasonBase + "/",
}

// ExpandCURIE expands a compact IRI ("rdf:type") to its full form using the
// Prefixes table. Inputs without a colon, with an unknown prefix, or with an
// empty local part are returned unchanged, so full IRIs ("https://...") and
// dotted predicates pass through safely.
func ExpandCURIE(curie string) string {
	colon := strings.Index(curie, ":")
	if colon <= 0 || colon == len(curie)-1 {
		return curie
	}

	ns, known := Prefixes[curie[:colon]]
	if !known {
		return curie
	}

	return ns + curie[colon+1:]
}

// CanonicalPredicate maps any predicate notation to the canonical form the
// reasoning layer operates over. CURIEs expand via the Prefixes table;
// registered dotted predicates map to their StandardIRI; everything else
// (full IRIs, unregistered predicates) passes through unchanged.
//
// Examples:
//   - "rdf:type" -> RdfType
//   - "legal.reference.cites" -> EliCites
//   - "https://example.org/custom" -> unchanged
func CanonicalPredicate(predicate string) string {
	expanded := ExpandCURIE(predicate)
	if expanded != predicate {
		return expanded
	}

	if meta := GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}

	return predicate
}

// splitDottedType validates a "domain.type" key and returns its halves,
// trimmed. ok is false for anything that is not exactly two non-empty
// dot-separated parts.
func splitDottedType(dotted string) (domain, entityType string, ok bool) {
	domain, entityType, found := strings.Cut(strings.TrimSpace(dotted), ".")
	if !found || strings.Contains(entityType, ".") {
		return "", "", false
	}

	domain = strings.TrimSpace(domain)
	entityType = strings.TrimSpace(entityType)
	if domain == "" || entityType == "" {
		return "", "", false
	}
	return domain, entityType, true
}

// EntityTypeIRI converts a dotted entity type key ("legal.regulation") to
// its IRI form ("https://semreason.c360.io/legal#Regulation") for RDF
// export at API boundaries. Internal code stays on dotted notation.
// Returns "" for malformed input.
func EntityTypeIRI(dottedType string) string {
	domain, entityType, ok := splitDottedType(dottedType)
	if !ok {
		return ""
	}

	// type fragment is capitalized by RDF convention
	entityType = strings.ToUpper(entityType[:1]) + entityType[1:]
	return fmt.Sprintf("%s/%s#%s", SemReasonBase, domain, entityType)
}

// EntityIRI generates the IRI identifying one entity instance for RDF
// export, unique across federated platforms:
//
//	https://semreason.c360.io/entities/{platform_id}[/{region}]/{domain}/{type}/{local_id}
//
// Returns "" when the platform ID, local ID, or dotted type is missing or
// malformed.
func EntityIRI(dottedType string, platform config.PlatformConfig, localID string) string {
	if platform.ID == "" || localID == "" {
		return ""
	}

	domain, entityType, ok := splitDottedType(dottedType)
	if !ok {
		return ""
	}

	segments := []string{SemReasonBase, "entities", platform.ID}
	if platform.Region != "" {
		segments = append(segments, platform.Region)
	}
	segments = append(segments, domain, entityType, localID)
	return strings.Join(segments, "/")
}

// RelationshipIRI converts a relationship type in any common naming
// convention ("AMENDED_BY", "AmendedBy", "amended-by") to its IRI:
//
//	https://semreason.c360.io/relationships#amended-by
//
// Returns "" for empty input.
func RelationshipIRI(relType string) string {
	kebab := toKebabCase(relType)
	if kebab == "" {
		return ""
	}
	return fmt.Sprintf("%s/relationships#%s", SemReasonBase, kebab)
}

// SubjectIRI converts a NATS subject ("semantic.legal.triples") to a
// path-form IRI ("https://semreason.c360.io/subjects/semantic/legal/triples").
// Returns "" for empty input or subjects with empty tokens.
func SubjectIRI(subject string) string {
	if subject == "" {
		return ""
	}
	for _, part := range strings.Split(subject, ".") {
		if part == "" {
			return ""
		}
	}
	return fmt.Sprintf("%s/subjects/%s", SemReasonBase, strings.ReplaceAll(subject, ".", "/"))
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// toKebabCase normalizes SCREAMING_SNAKE_CASE, PascalCase, camelCase, and
// kebab-case inputs to kebab-case.
func toKebabCase(input string) string {
	if strings.Contains(input, "_") {
		var words []string
		for _, word := range strings.Split(input, "_") {
			if word != "" {
				words = append(words, strings.ToLower(word))
			}
		}
		return strings.Join(words, "-")
	}

	return strings.ToLower(camelBoundary.ReplaceAllString(input, "${1}-${2}"))
}
