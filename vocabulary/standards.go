package vocabulary

// Standard Vocabulary IRIs
//
// These constants provide commonly used W3C and semantic web standard IRIs.
// Use these in PredicateMetadata.StandardIRI to indicate semantic equivalence
// with established vocabularies, and in reasoning configuration to name the
// predicates a rule operates on.
//
// NOTE: SemReason uses dotted notation internally (e.g., "legal.reference.cites")
// for NATS stream query compatibility. The reasoning layer works over canonical
// IRIs; CanonicalPredicate translates between the two forms at boundaries.
//
// References:
// - RDF: https://www.w3.org/TR/rdf11-concepts/
// - RDFS: https://www.w3.org/TR/rdf-schema/
// - OWL: https://www.w3.org/TR/owl2-overview/
// - SKOS: https://www.w3.org/TR/skos-reference/
// - Dublin Core: https://www.dublincore.org/specifications/dublin-core/dcmi-terms/
// - Schema.org: https://schema.org/
// - PROV-O: https://www.w3.org/TR/prov-o/
// - ELI: https://eur-lex.europa.eu/eli-register/about.html

// RDF Standard IRIs
const (
	// RdfType relates a resource to its class.
	// The SubClass rule propagates rdf:type facts up the class hierarchy.
	RdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// RDF Schema Standard IRIs
const (
	// RdfsSubClassOf relates a class to one of its superclasses.
	// Declared transitive: the reasoner closes subclass chains.
	RdfsSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"

	// RdfsSubPropertyOf relates a property to one of its superproperties.
	// Declared transitive; the SubProperty rule also lifts facts along it.
	RdfsSubPropertyOf = "http://www.w3.org/2000/01/rdf-schema#subPropertyOf"

	// RdfsDomain declares the class of valid subjects for a property
	RdfsDomain = "http://www.w3.org/2000/01/rdf-schema#domain"

	// RdfsRange declares the class of valid objects for a property
	RdfsRange = "http://www.w3.org/2000/01/rdf-schema#range"

	// RdfsLabel provides a human-readable name for a resource.
	// Used for: AliasTypeLabel
	RdfsLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// RdfsComment provides a human-readable description
	RdfsComment = "http://www.w3.org/2000/01/rdf-schema#comment"

	// RdfsSeeAlso indicates a resource that provides additional information
	RdfsSeeAlso = "http://www.w3.org/2000/01/rdf-schema#seeAlso"
)

// OWL (Web Ontology Language) Standard IRIs
const (
	// OwlSameAs indicates that two URI references refer to the same entity.
	// Declared symmetric. Used for: AliasTypeIdentity
	// Example: "reg-2016-679" owl:sameAs "c360.platform.legal.registry.regulation.gdpr"
	OwlSameAs = "http://www.w3.org/2002/07/owl#sameAs"

	// OwlInverseOf declares that two properties mirror each other.
	// The InverseProperty rule consults owl:inverseOf declarations.
	OwlInverseOf = "http://www.w3.org/2002/07/owl#inverseOf"

	// OwlTransitiveProperty is the class of transitive properties.
	// A (p, rdf:type, owl:TransitiveProperty) fact marks p transitive.
	OwlTransitiveProperty = "http://www.w3.org/2002/07/owl#TransitiveProperty"

	// OwlSymmetricProperty is the class of symmetric properties.
	// A (p, rdf:type, owl:SymmetricProperty) fact marks p symmetric.
	OwlSymmetricProperty = "http://www.w3.org/2002/07/owl#SymmetricProperty"

	// OwlEquivalentClass indicates equivalent classes
	OwlEquivalentClass = "http://www.w3.org/2002/07/owl#equivalentClass"

	// OwlEquivalentProperty indicates equivalent properties
	OwlEquivalentProperty = "http://www.w3.org/2002/07/owl#equivalentProperty"
)

// SKOS (Simple Knowledge Organization System) Standard IRIs
const (
	// SkosPrefLabel provides the preferred lexical label for a resource.
	// Used for: AliasTypeLabel
	// Example: "General Data Protection Regulation" is the preferred display name
	SkosPrefLabel = "http://www.w3.org/2004/02/skos/core#prefLabel"

	// SkosAltLabel provides an alternative lexical label for a resource.
	// Used for: AliasTypeLabel
	// Example: "GDPR", "Regulation 2016/679" are alternate labels
	SkosAltLabel = "http://www.w3.org/2004/02/skos/core#altLabel"

	// SkosHiddenLabel provides a label not intended for display but useful for search.
	// Example: Common misspellings, abbreviations
	SkosHiddenLabel = "http://www.w3.org/2004/02/skos/core#hiddenLabel"

	// SkosNotation provides a notation (code or identifier) within a concept scheme.
	// Used for: AliasTypeAlternate
	SkosNotation = "http://www.w3.org/2004/02/skos/core#notation"

	// SkosBroader relates a concept to a more general concept.
	// Declared transitive in its skos:broaderTransitive reading.
	SkosBroader = "http://www.w3.org/2004/02/skos/core#broader"
)

// Dublin Core Metadata Terms Standard IRIs
const (
	// DcIdentifier provides an unambiguous reference to the resource.
	// Used for: AliasTypeExternal
	// Example: CELEX number, ECLI, DOI
	DcIdentifier = "http://purl.org/dc/terms/identifier"

	// DcTitle provides the name given to the resource.
	// Used for: AliasTypeLabel
	DcTitle = "http://purl.org/dc/terms/title"

	// DcAlternative provides an alternative name for the resource.
	// Used for: AliasTypeAlternate
	DcAlternative = "http://purl.org/dc/terms/alternative"

	// DcSource indicates a related resource from which the described resource is derived.
	DcSource = "http://purl.org/dc/terms/source"
)

// Dublin Core Relations Standard IRIs
const (
	// DcReferences indicates a related resource that is referenced by the described resource
	// Used for: GraphRelReferences; the jurisdiction-inheritance rule follows these edges.
	DcReferences = "http://purl.org/dc/terms/references"

	// DcIsReferencedBy indicates a related resource that references the described resource
	// Inverse of DcReferences
	DcIsReferencedBy = "http://purl.org/dc/terms/isReferencedBy"

	// DcRequires indicates a related resource that is required by the described resource
	// Used for: GraphRelDependsOn
	DcRequires = "http://purl.org/dc/terms/requires"

	// DcIsRequiredBy indicates a related resource that requires the described resource
	// Inverse of DcRequires
	DcIsRequiredBy = "http://purl.org/dc/terms/isRequiredBy"

	// DcReplaces indicates a related resource that is supplanted by the described resource
	// Used for: GraphRelSupersedes
	DcReplaces = "http://purl.org/dc/terms/replaces"

	// DcIsReplacedBy indicates a related resource that supplants the described resource
	// Inverse of DcReplaces
	DcIsReplacedBy = "http://purl.org/dc/terms/isReplacedBy"

	// DcRelation indicates a related resource (generic relationship)
	// Used for: GraphRelRelatedTo
	DcRelation = "http://purl.org/dc/terms/relation"
)

// Schema.org Standard IRIs
const (
	// SchemaName provides the name of the item.
	// Used for: AliasTypeLabel
	SchemaName = "https://schema.org/name"

	// SchemaAlternateName provides an alias for the item.
	// Used for: AliasTypeAlternate
	SchemaAlternateName = "https://schema.org/alternateName"

	// SchemaIdentifier provides a unique identifier for the item.
	// Used for: AliasTypeExternal
	SchemaIdentifier = "https://schema.org/identifier"

	// SchemaSameAs indicates a URL that unambiguously indicates the item's identity.
	// Used for: AliasTypeIdentity
	SchemaSameAs = "https://schema.org/sameAs"

	// SchemaAbout indicates the subject matter of the content
	// Used for: GraphRelDiscusses
	SchemaAbout = "https://schema.org/about"

	// SchemaIsPartOf indicates that this item is part of something else
	SchemaIsPartOf = "https://schema.org/isPartOf"

	// SchemaHasPart indicates that something is part of this item
	// Used for: GraphRelContains
	SchemaHasPart = "https://schema.org/hasPart"
)

// PROV-O (Provenance Ontology) Standard IRIs
const (
	// ProvWasAttributedTo indicates who an entity was attributed to
	ProvWasAttributedTo = "http://www.w3.org/ns/prov#wasAttributedTo"

	// ProvWasDerivedFrom indicates a derivation relationship.
	// Inferred-triple provenance exports use this predicate.
	ProvWasDerivedFrom = "http://www.w3.org/ns/prov#wasDerivedFrom"

	// ProvHadPrimarySource indicates a primary source
	ProvHadPrimarySource = "http://www.w3.org/ns/prov#hadPrimarySource"

	// ProvHadMember indicates membership in a collection
	// Used for: GraphRelContains
	ProvHadMember = "http://www.w3.org/ns/prov#hadMember"
)

// FOAF (Friend of a Friend) Standard IRIs
const (
	// FoafName provides a person's or thing's name
	// Used for: AliasTypeLabel
	FoafName = "http://xmlns.com/foaf/0.1/name"

	// FoafNick provides a short informal nickname
	// Used for: AliasTypeAlternate
	FoafNick = "http://xmlns.com/foaf/0.1/nick"

	// FoafAccountName provides an account name
	// Used for: AliasTypeCommunication
	FoafAccountName = "http://xmlns.com/foaf/0.1/accountName"
)

// ELI (European Legislation Identifier) Ontology IRIs
// The reference vocabulary for legal-instrument metadata. Legal domain
// predicates map onto these for export and cross-registry interoperability.
const (
	// EliJurisdiction relates a legal resource to the jurisdiction it applies in.
	// The jurisdiction-inheritance rule emits facts with this predicate.
	EliJurisdiction = "http://data.europa.eu/eli/ontology#jurisdiction"

	// EliCites indicates a citation from one legal resource to another
	EliCites = "http://data.europa.eu/eli/ontology#cites"

	// EliCitedBy is the inverse of EliCites
	EliCitedBy = "http://data.europa.eu/eli/ontology#cited_by"

	// EliAmends indicates that a legal resource amends another
	EliAmends = "http://data.europa.eu/eli/ontology#amends"

	// EliAmendedBy is the inverse of EliAmends
	EliAmendedBy = "http://data.europa.eu/eli/ontology#amended_by"

	// EliTransposes indicates national legislation implementing an EU directive
	EliTransposes = "http://data.europa.eu/eli/ontology#transposes"

	// EliTransposedBy is the inverse of EliTransposes
	EliTransposedBy = "http://data.europa.eu/eli/ontology#transposed_by"

	// EliRepeals indicates that a legal resource repeals another
	EliRepeals = "http://data.europa.eu/eli/ontology#repeals"

	// EliRepealedBy is the inverse of EliRepeals
	EliRepealedBy = "http://data.europa.eu/eli/ontology#repealed_by"

	// EliConsolidates indicates a consolidated version of a legal resource.
	// Consolidation chains are transitive.
	EliConsolidates = "http://data.europa.eu/eli/ontology#consolidates"

	// EliConsolidatedBy is the inverse of EliConsolidates
	EliConsolidatedBy = "http://data.europa.eu/eli/ontology#consolidated_by"

	// EliInForce indicates whether a legal resource is in force
	EliInForce = "http://data.europa.eu/eli/ontology#in_force"

	// EliFirstDateEntryInForce is the date a legal resource entered into force
	EliFirstDateEntryInForce = "http://data.europa.eu/eli/ontology#first_date_entry_in_force"

	// EliDateNoLongerInForce is the date a legal resource left force
	EliDateNoLongerInForce = "http://data.europa.eu/eli/ontology#date_no_longer_in_force"

	// EliDateDocument is the official date of the document
	EliDateDocument = "http://data.europa.eu/eli/ontology#date_document"

	// EliTypeDocument relates a legal resource to its document type
	EliTypeDocument = "http://data.europa.eu/eli/ontology#type_document"

	// EliIdLocal is the local identifier within a publishing system.
	// Used for: AliasTypeExternal
	EliIdLocal = "http://data.europa.eu/eli/ontology#id_local"

	// EliTitle is the title of a legal resource
	EliTitle = "http://data.europa.eu/eli/ontology#title"

	// EliRelatedTo indicates a generic relation between legal resources
	EliRelatedTo = "http://data.europa.eu/eli/ontology#related_to"
)
