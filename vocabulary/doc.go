// Package vocabulary manages the predicate vocabulary for the SemReason
// platform: dotted predicate names for internal use, optional IRI mappings
// for standards compliance at API boundaries, and the reasoning semantics
// (transitive, symmetric, inverse) that the inference engine discovers at
// startup.
//
// # Dotted notation inside, IRIs at the edges
//
// Internal code always works with three-level dotted predicates:
//
//	domain.category.property
//
// for example legal.reference.cites, legal.jurisdiction.code,
// legal.temporal.in_force_from, graph.rel.contains. All three levels are
// lowercase; dots are the only separator. Dotted names read well, match the
// message.Type and EntityID conventions used elsewhere, and make NATS
// wildcard subscriptions natural ("legal.reference.*" covers every
// reference predicate).
//
// IRIs appear only where the platform talks to the outside world. A
// predicate may carry a StandardIRI from a published ontology (ELI, Dublin
// Core, OWL, SKOS; constants in standards.go); RDF export translates
// dotted → IRI via GetPredicateMetadata, RDF import translates IRI →
// dotted via LookupByIRI, and nothing in between ever sees a URI.
//
// # Registering predicates
//
// Domain packages register their vocabulary in init() using functional
// options:
//
//	vocabulary.Register("legal.reference.supersedes",
//	    vocabulary.WithDescription("Document replaces an earlier document"),
//	    vocabulary.WithIRI(vocabulary.DcReplaces),
//	    vocabulary.WithTransitive())
//
// Options cover descriptions, value types and units, IRI mappings, alias
// semantics for entity resolution (WithAlias), and the three reasoning
// flags (WithTransitive, WithSymmetric, WithInverseOf). Define predicates
// as package constants rather than inline strings, and declare an inverse
// pair on one side only; discovery emits both directions.
//
// # Canonical predicates and discovery
//
// The inference engine operates over one canonical name per predicate: the
// StandardIRI when one is registered, the dotted name otherwise.
// CanonicalPredicate normalizes any input notation, whether a CURIE such as
// "rdf:type", a registered dotted name, or an unregistered predicate left
// unchanged, so the engine never sees mixed notations. The discovery
// functions return canonical forms:
//
//	transitive := vocabulary.DiscoverTransitivePredicates()
//	symmetric := vocabulary.DiscoverSymmetricPredicates()
//	inverses := vocabulary.DiscoverInversePredicates()
//	aliases := vocabulary.DiscoverAliasPredicates()
//
// Because semantics live on the registration rather than in engine
// configuration, a new domain vocabulary extends reasoning without any
// engine change.
//
// # Alias predicates
//
// Predicates that identify entities (official identifiers, CELEX numbers,
// alternate titles) are marked with WithAlias and an AliasType:
//
//   - AliasTypeIdentity: entity equivalence (owl:sameAs)
//   - AliasTypeAlternate: secondary unique identifiers (ECLI, ISBN)
//   - AliasTypeExternal: identifiers minted by external systems
//   - AliasTypeCommunication: feed IDs, hostnames
//   - AliasTypeLabel: display names, never used for resolution
//
// Priority 0 is the strongest signal; entity resolution consults
// DiscoverAliasPredicates for the ranked set. Labels are deliberately
// excluded from resolution because they are ambiguous.
//
// # Example domain vocabulary
//
//	package caselaw
//
//	const RulingOverturns = "caselaw.ruling.overturns"
//
//	func init() {
//	    vocabulary.Register(RulingOverturns,
//	        vocabulary.WithDescription("Ruling overturns an earlier ruling"),
//	        vocabulary.WithTransitive())
//	}
//
// ClearRegistry exists for tests that need an empty registry; production
// code never calls it.
package vocabulary
