package vocabulary

// Predicate vocabulary using three-level dotted notation: domain.category.property
// This maintains consistency with the unified semantic architecture
// where ALL notation uses dots (no colons anywhere).
//
// Design principles:
//   - Three levels: domain.category.property (e.g., "legal.reference.cites")
//   - Enables NATS wildcard queries: "legal.reference.*" finds all reference predicates
//   - Human readable: "legal.jurisdiction.code" is clear and semantic
//   - Domain scoped: Each domain manages its own predicate categories
//   - Consistent with EntityType.Key(), MessageType.Key(), and EntityID.Key() patterns
//
// Predicate naming conventions:
//   - domain: lowercase, represents business domain (legal, graph, semantic)
//   - category: lowercase, groups related properties (reference, jurisdiction, temporal)
//   - property: lowercase, specific property name (cites, code, enacted)
//
// The reasoning layer works over canonical IRIs; registered predicates expose
// their StandardIRI so CanonicalPredicate can translate at boundaries.

// Legal Reference Predicates
// These predicates link legal instruments to each other. Reference edges are
// what the inference rules traverse: citations, amendments, transpositions.

const (
	// LegalReferenceReferences is a generic reference from one instrument to another.
	// The jurisdiction-inheritance rule follows these edges.
	LegalReferenceReferences = "legal.reference.references"
	// LegalReferenceCites is an explicit citation of another instrument
	LegalReferenceCites = "legal.reference.cites"
	// LegalReferenceCitedBy is the inverse of cites
	LegalReferenceCitedBy = "legal.reference.cited_by"
	// LegalReferenceAmends marks an amending instrument
	LegalReferenceAmends = "legal.reference.amends"
	// LegalReferenceAmendedBy is the inverse of amends
	LegalReferenceAmendedBy = "legal.reference.amended_by"
	// LegalReferenceSupersedes marks a replacing instrument (v2 supersedes v1)
	LegalReferenceSupersedes = "legal.reference.supersedes"
	// LegalReferenceTransposes marks national legislation implementing a directive
	LegalReferenceTransposes = "legal.reference.transposes"
	// LegalReferenceRepeals marks a repealing instrument
	LegalReferenceRepeals = "legal.reference.repeals"
)

// Legal Jurisdiction Predicates
// These predicates bind instruments to the jurisdictions they apply in.

const (
	// LegalJurisdictionCode is string, jurisdiction code (e.g., "EU", "US", "DE")
	LegalJurisdictionCode = "legal.jurisdiction.code"
	// LegalJurisdictionRegion is string, sub-jurisdiction region name
	LegalJurisdictionRegion = "legal.jurisdiction.region"
)

// Legal Temporal Predicates
// These predicates describe the validity window of legal instruments.

const (
	// LegalTemporalInForceFrom is time.Time, start of the in-force window
	LegalTemporalInForceFrom = "legal.temporal.in_force_from"
	// LegalTemporalInForceTo is time.Time, end of the in-force window
	LegalTemporalInForceTo = "legal.temporal.in_force_to"
	// LegalTemporalEnacted is time.Time, enactment date
	LegalTemporalEnacted = "legal.temporal.enacted"
	// LegalTemporalPublished is time.Time, official publication date
	LegalTemporalPublished = "legal.temporal.published"
)

// Legal Document Predicates
// These predicates carry document-level identifiers and labels.

const (
	// LegalDocumentTitle is string, official title
	LegalDocumentTitle = "legal.document.title"
	// LegalDocumentIdentifier is string, canonical external identifier (CELEX, ECLI)
	LegalDocumentIdentifier = "legal.document.identifier"
	// LegalDocumentType is string, instrument type (regulation, directive, ruling)
	LegalDocumentType = "legal.document.type"
)

// Graph Domain Predicates
// These predicates describe relationships between entities in the semantic graph

const (
	// GraphRelContains represents hierarchical containment (parent contains child)
	// Example: A regulation contains articles, a contract contains clauses
	GraphRelContains = "graph.rel.contains"

	// GraphRelReferences represents directional reference (subject references object)
	// Example: Case law references regulations, contracts reference statutes
	GraphRelReferences = "graph.rel.references"

	// GraphRelInfluences represents causal or impact relationships
	// Example: A ruling influences enforcement practice
	GraphRelInfluences = "graph.rel.influences"

	// GraphRelCommunicates represents communication or interaction relationships
	// Example: Registries exchange publication notices
	GraphRelCommunicates = "graph.rel.communicates"

	// GraphRelNear represents proximity relationships
	// Example: Entities in the same section or filing
	GraphRelNear = "graph.rel.near"

	// GraphRelTriggeredBy represents event causation
	// Example: A compliance review triggered by an amendment
	GraphRelTriggeredBy = "graph.rel.triggered_by"

	// GraphRelDependsOn represents dependency relationships
	// Example: Implementing acts depend on enabling legislation
	GraphRelDependsOn = "graph.rel.depends_on"

	// GraphRelImplements represents implementation relationships
	// Example: National law implements a directive
	GraphRelImplements = "graph.rel.implements"

	// GraphRelDiscusses represents discussion or commentary relationships
	// Example: Commentary discusses a ruling
	GraphRelDiscusses = "graph.rel.discusses"

	// GraphRelSupersedes represents replacement or versioning relationships
	// Example: New decisions supersede old ones, v2 supersedes v1
	GraphRelSupersedes = "graph.rel.supersedes"

	// GraphRelBlockedBy represents blocking relationships
	// Example: A transposition blocked by pending litigation
	GraphRelBlockedBy = "graph.rel.blocked_by"

	// GraphRelRelatedTo represents general association relationships
	// Example: Related instruments without specific semantics
	GraphRelRelatedTo = "graph.rel.related_to"
)

// PredicateMetadata provides semantic information about each predicate.
// This enables validation, reasoning configuration, and documentation generation.
type PredicateMetadata struct {
	// Name is the predicate constant (e.g., "legal.reference.cites")
	// Uses dotted notation for NATS stream query compatibility
	Name string

	// Description provides human-readable documentation
	Description string

	// DataType indicates the expected Go type for the object value
	DataType string

	// Units specifies the measurement units (if applicable)
	Units string

	// Range describes valid value ranges (if applicable)
	Range string

	// Domain identifies which domain owns this predicate
	Domain string

	// Category identifies the predicate category within the domain
	Category string

	// StandardIRI provides the W3C/RDF equivalent IRI for standards compliance (optional)
	// Examples: "http://data.europa.eu/eli/ontology#cites", "http://www.w3.org/2002/07/owl#sameAs"
	// This is also the canonical form the reasoning layer operates over:
	// CanonicalPredicate maps a registered dotted name to this IRI.
	// See vocabulary/standards.go for common constants.
	StandardIRI string

	// Reasoning semantics (consumed by the inference engine's default profile)

	// Transitive marks predicates whose chains the engine closes:
	// (a,p,b) and (b,p,c) entail (a,p,c).
	Transitive bool

	// Symmetric marks predicates the engine mirrors: (s,p,o) entails (o,p,s).
	Symmetric bool

	// InverseOf names the registered predicate this one mirrors in reverse:
	// (s,p,o) entails (o,q,s) where q is the inverse. Empty means none.
	InverseOf string

	// Alias semantics (for entity resolution and alias indexing)
	// IsAlias marks predicates that represent entity aliases
	IsAlias bool

	// AliasType defines the semantic meaning (identity, label, external, etc.)
	// Only meaningful when IsAlias is true. See AliasType documentation for
	// standard vocabulary mappings (OWL, SKOS, Schema.org).
	AliasType AliasType

	// AliasPriority defines conflict resolution order (lower number = higher priority)
	// Only meaningful when IsAlias is true
	AliasPriority int
}

// IsValidPredicate checks if a predicate follows the three-level dotted notation
// and matches the expected format: domain.category.property
func IsValidPredicate(predicate string) bool {
	if predicate == "" {
		return false
	}

	// Count dots to ensure three-level structure
	dotCount := 0
	for _, char := range predicate {
		if char == '.' {
			dotCount++
		}
	}

	// Must have exactly 2 dots for three levels
	return dotCount == 2
}
