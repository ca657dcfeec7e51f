package vocabulary

import (
	"sort"
	"sync"
)

// AliasType defines the semantic meaning of an alias predicate.
//
// Each type corresponds to standard W3C/RDF vocabularies for semantic web interoperability.
// See vocabulary/standards.go for IRI constants to use in PredicateMetadata.StandardIRI.
type AliasType string

const (
	// AliasTypeIdentity represents entity equivalence.
	//
	// Standard Mappings:
	//   - owl:sameAs (OwlSameAs)
	//   - schema:sameAs (SchemaSameAs)
	//
	// Used for: Federated entity IDs, external system UUIDs, cross-system identity
	// Resolution: can resolve to entity IDs
	// Example: "celex:32016R0679" identifies the same entity as "c360.platform.legal.registry.regulation.gdpr"
	AliasTypeIdentity AliasType = "identity"

	// AliasTypeLabel represents human-readable display names.
	//
	// Standard Mappings:
	//   - skos:prefLabel (SkosPrefLabel) - preferred label
	//   - skos:altLabel (SkosAltLabel) - alternative label
	//   - rdfs:label (RdfsLabel) - generic label
	//   - dc:title (DcTitle) - title
	//   - schema:name (SchemaName) - name
	//   - foaf:name (FoafName) - name
	//
	// Used for: Display names, titles, human-readable descriptions
	// Resolution: NOT used for entity resolution (ambiguous - many entities can share labels)
	// Example: "Data Protection Act", "GDPR" - for display only
	AliasTypeLabel AliasType = "label"

	// AliasTypeAlternate represents secondary unique identifiers.
	//
	// Standard Mappings:
	//   - schema:alternateName (SchemaAlternateName)
	//   - dc:alternative (DcAlternative)
	//   - skos:notation (SkosNotation)
	//   - foaf:nick (FoafNick)
	//
	// Used for: Statute numbers, docket numbers, alternative unique identifiers
	// Resolution: can resolve to entity IDs
	// Example: "Regulation (EU) 2016/679", "C-311/18"
	AliasTypeAlternate AliasType = "alternate"

	// AliasTypeExternal represents external system identifiers.
	//
	// Standard Mappings:
	//   - dc:identifier (DcIdentifier)
	//   - schema:identifier (SchemaIdentifier)
	//   - eli:id_local (EliIdLocal)
	//   - dc:source (DcSource)
	//
	// Used for: CELEX numbers, ECLI codes, legacy system IDs, third-party references
	// Resolution: can resolve to entity IDs
	// Example: "32016R0679", "ECLI:EU:C:2020:559", "LEGACY-DB-ID-789"
	AliasTypeExternal AliasType = "external"

	// AliasTypeCommunication represents communication system identifiers.
	//
	// Standard Mappings:
	//   - foaf:accountName (FoafAccountName)
	//
	// Used for: Registry feed handles, filing mailbox IDs, network hostnames
	// Resolution: can resolve to entity IDs
	// Example: "eurlex-feed-01" (feed handle), "registry.local" (hostname)
	AliasTypeCommunication AliasType = "communication"
)

// CanResolveToEntityID returns true if this alias type can be used for entity resolution
func (at AliasType) CanResolveToEntityID() bool {
	switch at {
	case AliasTypeIdentity, AliasTypeAlternate, AliasTypeExternal, AliasTypeCommunication:
		return true // These can all resolve to entity IDs
	case AliasTypeLabel:
		return false // Labels are for display, not resolution (ambiguous)
	default:
		return false
	}
}

// String returns the string representation of the alias type
func (at AliasType) String() string {
	return string(at)
}

// Global predicate registry
var (
	registryMu        sync.RWMutex
	predicateRegistry = make(map[string]PredicateMetadata)
)

// Option is a functional option for configuring predicate registration.
type Option func(*PredicateMetadata)

// WithDescription sets the human-readable description of the predicate.
func WithDescription(desc string) Option {
	return func(m *PredicateMetadata) {
		m.Description = desc
	}
}

// WithDataType sets the expected Go type for the object value.
// Examples: "string", "float64", "int", "bool", "time.Time"
func WithDataType(dataType string) Option {
	return func(m *PredicateMetadata) {
		m.DataType = dataType
	}
}

// WithUnits specifies the measurement units (if applicable).
// Examples: "days", "percent", "count"
func WithUnits(units string) Option {
	return func(m *PredicateMetadata) {
		m.Units = units
	}
}

// WithRange describes valid value ranges (if applicable).
// Examples: "0-100", "ISO 3166 codes", "positive"
func WithRange(valueRange string) Option {
	return func(m *PredicateMetadata) {
		m.Range = valueRange
	}
}

// WithIRI sets the W3C/RDF equivalent IRI for standards compliance.
// This is also the canonical predicate form used by the reasoning layer.
// Use constants from standards.go for common vocabularies.
//
// Examples:
//   - WithIRI(EliCites)
//   - WithIRI(OwlSameAs)
//   - WithIRI("http://schema.org/about")
func WithIRI(iri string) Option {
	return func(m *PredicateMetadata) {
		m.StandardIRI = iri
	}
}

// WithTransitive declares the predicate transitive. The inference engine's
// default profile closes chains of transitive predicates:
// (a,p,b) and (b,p,c) entail (a,p,c).
//
// Example:
//
//	Register("legal.reference.supersedes",
//	    WithIRI(DcReplaces),
//	    WithTransitive())
func WithTransitive() Option {
	return func(m *PredicateMetadata) {
		m.Transitive = true
	}
}

// WithSymmetric declares the predicate symmetric. The inference engine's
// default profile mirrors symmetric facts: (s,p,o) entails (o,p,s).
//
// Example:
//
//	Register("graph.rel.near",
//	    WithSymmetric())
func WithSymmetric() Option {
	return func(m *PredicateMetadata) {
		m.Symmetric = true
	}
}

// WithInverseOf declares the registered predicate that mirrors this one in
// reverse: (s,p,o) entails (o,q,s). Pass the other predicate's registered
// dotted name. The declaration is one-sided; discovery returns both
// directions.
//
// Example:
//
//	Register("legal.reference.cites",
//	    WithIRI(EliCites),
//	    WithInverseOf("legal.reference.cited_by"))
func WithInverseOf(inverse string) Option {
	return func(m *PredicateMetadata) {
		m.InverseOf = inverse
	}
}

// WithAlias marks this predicate as representing an entity alias.
// Aliases are used for entity resolution and identity correlation.
//
// Parameters:
//   - aliasType: The semantic meaning (identity, alternate, external, communication, label)
//   - priority: Conflict resolution order (lower number = higher priority)
//
// Example:
//
//	Register("legal.document.identifier",
//	    WithAlias(AliasTypeExternal, 0))  // Highest priority
func WithAlias(aliasType AliasType, priority int) Option {
	return func(m *PredicateMetadata) {
		m.IsAlias = true
		m.AliasType = aliasType
		m.AliasPriority = priority
	}
}

// Register registers a predicate with its metadata in the global registry.
// This should be called during package initialization (init functions) by domain vocabularies.
//
// The predicate name must follow three-level dotted notation: domain.category.property
//
// If a predicate is already registered, it will be overwritten (enables domain-specific overrides).
//
// Example:
//
//	Register("legal.jurisdiction.code",
//	    WithDescription("Jurisdiction an instrument applies in"),
//	    WithDataType("string"),
//	    WithRange("ISO 3166 codes plus EU"),
//	    WithIRI(EliJurisdiction))
func Register(name string, opts ...Option) {
	// Parse domain and category from name
	domain, category := parseDomainCategory(name)

	// Create base metadata
	meta := PredicateMetadata{
		Name:     name,
		Domain:   domain,
		Category: category,
	}

	// Apply functional options
	for _, opt := range opts {
		opt(&meta)
	}

	// Store in registry (allows overriding framework defaults)
	registryMu.Lock()
	defer registryMu.Unlock()

	predicateRegistry[name] = meta
}

// parseDomainCategory extracts domain and category from dotted predicate name.
// For "legal.reference.cites", returns ("legal", "reference").
func parseDomainCategory(name string) (domain, category string) {
	// Split on dots
	parts := []rune(name)
	firstDot := -1
	secondDot := -1

	for i, r := range parts {
		if r == '.' {
			if firstDot == -1 {
				firstDot = i
			} else if secondDot == -1 {
				secondDot = i
				break
			}
		}
	}

	if firstDot == -1 {
		return "", ""
	}

	domain = name[:firstDot]

	if secondDot == -1 {
		// Only two parts - invalid predicate format
		return domain, ""
	}

	category = name[firstDot+1 : secondDot]
	return domain, category
}

// RegisterPredicate registers a predicate using the PredicateMetadata struct directly.
// This function is provided for backward compatibility and testing.
// New code should use Register() with functional options.
// Allows overriding framework defaults.
func RegisterPredicate(meta PredicateMetadata) {
	registryMu.Lock()
	defer registryMu.Unlock()

	predicateRegistry[meta.Name] = meta
}

// GetPredicateMetadata retrieves metadata for a predicate from the registry.
// Returns nil if the predicate is not registered.
// This function is thread-safe and can be called concurrently.
func GetPredicateMetadata(predicate string) *PredicateMetadata {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if meta, exists := predicateRegistry[predicate]; exists {
		// Return a copy to prevent external modification
		metaCopy := meta
		return &metaCopy
	}

	return nil
}

// LookupByIRI returns the dotted name of the predicate registered with the
// given StandardIRI, or "" when none maps to it. Used at API boundaries to
// translate RDF input back to internal notation. When several predicates
// share an IRI, the lexicographically first name wins.
func LookupByIRI(iri string) string {
	if iri == "" {
		return ""
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	var match string
	for name, meta := range predicateRegistry {
		if meta.StandardIRI == iri && (match == "" || name < match) {
			match = name
		}
	}
	return match
}

// ListRegisteredPredicates returns a list of all registered predicate names.
// Useful for debugging and introspection.
func ListRegisteredPredicates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	predicates := make([]string, 0, len(predicateRegistry))
	for name := range predicateRegistry {
		predicates = append(predicates, name)
	}
	return predicates
}

// canonicalName returns the form of a registered predicate the reasoning
// layer operates over: the StandardIRI when one is declared, the dotted
// name otherwise. Callers must hold registryMu.
func canonicalName(meta PredicateMetadata) string {
	if meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return meta.Name
}

// DiscoverTransitivePredicates returns the canonical names of all predicates
// registered as transitive, deduplicated and sorted for deterministic engine
// configuration. The inference engine's default profile closes chains of
// these predicates. Several dotted predicates can share a canonical IRI
// (graph.rel.supersedes and legal.reference.supersedes both map to
// dct:replaces); they appear once.
func DiscoverTransitivePredicates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]struct{})
	var transitive []string
	for _, meta := range predicateRegistry {
		if !meta.Transitive {
			continue
		}
		name := canonicalName(meta)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		transitive = append(transitive, name)
	}
	sort.Strings(transitive)
	return transitive
}

// DiscoverSymmetricPredicates returns the canonical names of all predicates
// registered as symmetric, deduplicated and sorted for deterministic engine
// configuration.
func DiscoverSymmetricPredicates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]struct{})
	var symmetric []string
	for _, meta := range predicateRegistry {
		if !meta.Symmetric {
			continue
		}
		name := canonicalName(meta)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		symmetric = append(symmetric, name)
	}
	sort.Strings(symmetric)
	return symmetric
}

// DiscoverInversePredicates returns canonical predicate pairs for all
// registered inverse declarations. Declarations are one-sided
// (WithInverseOf on either predicate); the returned map contains both
// directions so rules can mirror facts of either side.
//
// Unregistered inverse targets are kept as-is: a declaration may point at a
// predicate another package registers later.
func DiscoverInversePredicates() map[string]string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	inverses := make(map[string]string)
	for _, meta := range predicateRegistry {
		if meta.InverseOf == "" {
			continue
		}
		from := canonicalName(meta)
		to := meta.InverseOf
		if other, exists := predicateRegistry[meta.InverseOf]; exists {
			to = canonicalName(other)
		}
		inverses[from] = to
		inverses[to] = from
	}
	return inverses
}

// DiscoverAliasPredicates discovers all predicates marked as aliases in the registry.
// Returns a map of predicate name to priority (lower number = higher priority).
// Used by alias indexing to determine which predicates to index.
//
// If no alias predicates are registered, returns an empty map.
// Applications must register their domain-specific alias predicates using RegisterPredicate().
func DiscoverAliasPredicates() map[string]int {
	registryMu.RLock()
	defer registryMu.RUnlock()

	aliasPredicates := make(map[string]int)

	for name, meta := range predicateRegistry {
		if meta.IsAlias && meta.AliasType.CanResolveToEntityID() {
			aliasPredicates[name] = meta.AliasPriority
		}
	}

	return aliasPredicates
}

// ClearRegistry clears all registered predicates.
// This is primarily useful for testing.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	predicateRegistry = make(map[string]PredicateMetadata)
}
