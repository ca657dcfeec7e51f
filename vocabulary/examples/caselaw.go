package examples

import "github.com/c360/semreason/vocabulary"

// Example case-law domain predicates.
// Shows how domain-specific applications extend the vocabulary, including
// the reasoning semantics the inference engine discovers at startup.
const (
	// CaselawRulingFollows - ruling follows the reasoning of an earlier ruling
	CaselawRulingFollows = "caselaw.ruling.follows"

	// CaselawRulingOverturns - ruling overturns an earlier ruling
	CaselawRulingOverturns = "caselaw.ruling.overturns"

	// CaselawRulingDistinguishes - ruling distinguishes an earlier ruling
	CaselawRulingDistinguishes = "caselaw.ruling.distinguishes"

	// CaselawRulingDistinguishedBy - ruling is distinguished by a later ruling
	CaselawRulingDistinguishedBy = "caselaw.ruling.distinguished_by"

	// CaselawIdentifierEcli - European Case Law Identifier
	CaselawIdentifierEcli = "caselaw.identifier.ecli"

	// CaselawIdentifierDocket - court docket number
	CaselawIdentifierDocket = "caselaw.identifier.docket"
)

// RegisterCaselawVocabulary registers example case-law domain predicates.
func RegisterCaselawVocabulary() {
	// Reasoning semantics - discovered by the engine's default profile
	vocabulary.Register(CaselawRulingOverturns,
		vocabulary.WithDescription("Ruling overturns an earlier ruling"),
		vocabulary.WithTransitive())

	vocabulary.Register(CaselawRulingFollows,
		vocabulary.WithDescription("Ruling follows the reasoning of an earlier ruling"))

	vocabulary.Register(CaselawRulingDistinguishes,
		vocabulary.WithDescription("Ruling distinguishes an earlier ruling"),
		vocabulary.WithInverseOf(CaselawRulingDistinguishedBy))

	vocabulary.Register(CaselawRulingDistinguishedBy,
		vocabulary.WithDescription("Ruling is distinguished by a later ruling"))

	// External identifiers - resolvable to entity IDs
	vocabulary.Register(CaselawIdentifierEcli,
		vocabulary.WithDescription("European Case Law Identifier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithAlias(vocabulary.AliasTypeExternal, 1),
		vocabulary.WithIRI(vocabulary.DcIdentifier))

	vocabulary.Register(CaselawIdentifierDocket,
		vocabulary.WithDescription("Court docket number"),
		vocabulary.WithDataType("string"),
		vocabulary.WithAlias(vocabulary.AliasTypeAlternate, 2),
		vocabulary.WithIRI(vocabulary.SchemaIdentifier))
}
