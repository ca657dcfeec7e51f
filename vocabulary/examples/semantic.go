// Package examples holds reference vocabularies. Nothing in the core
// framework depends on this package; it shows how an application defines
// its predicates, wires them to standard IRIs, and declares the alias and
// reasoning semantics the platform discovers at startup. Copy the pattern
// into your own vocabulary package rather than importing this one.
package examples

import "github.com/c360/semreason/vocabulary"

// Generic identity and labeling predicates, useful in any domain.
const (
	// SemanticIdentityAlias marks an alternative identifier for the same
	// entity (owl:sameAs).
	SemanticIdentityAlias = "semantic.identity.alias"

	// SemanticIdentityUUID carries an entity's UUID.
	SemanticIdentityUUID = "semantic.identity.uuid"

	// SemanticLabelPreferred is the preferred display name (skos:prefLabel).
	SemanticLabelPreferred = "semantic.label.preferred"

	// SemanticLabelAlternate is any further display name.
	SemanticLabelAlternate = "semantic.label.alternate"
)

// RegisterSemanticVocabulary registers the identity and label predicates.
// Call it during startup, before any triples flow.
func RegisterSemanticVocabulary() {
	// Identity predicates resolve to entity IDs; lower priority wins.
	vocabulary.Register(SemanticIdentityAlias,
		vocabulary.WithDescription("Alternative entity identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithAlias(vocabulary.AliasTypeIdentity, 0),
		vocabulary.WithIRI(vocabulary.OwlSameAs))

	vocabulary.Register(SemanticIdentityUUID,
		vocabulary.WithDescription("Universally unique identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithAlias(vocabulary.AliasTypeIdentity, 1),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	// Labels never resolve; they exist for display only.
	vocabulary.Register(SemanticLabelPreferred,
		vocabulary.WithDescription("Preferred human-readable name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 999),
		vocabulary.WithIRI(vocabulary.SkosPrefLabel))

	vocabulary.Register(SemanticLabelAlternate,
		vocabulary.WithDescription("Alternative display name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 999),
		vocabulary.WithIRI(vocabulary.SkosAltLabel))
}
