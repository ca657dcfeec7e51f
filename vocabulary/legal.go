package vocabulary

// Legal predicate registration with ELI mappings and reasoning semantics.
// This file registers the legal.* predicates defined in predicates.go.
// The inference engine's default profile discovers the transitive, symmetric,
// and inverse declarations made here.

func init() {
	RegisterLegalVocabulary()
}

// RegisterLegalVocabulary registers the legal domain predicates. Called
// automatically at package initialization; exported so tests that clear the
// registry can restore it.
func RegisterLegalVocabulary() {
	// Reference predicates - the edges inference rules traverse

	Register(LegalReferenceReferences,
		WithDescription("Generic reference from one legal instrument to another"),
		WithIRI(DcReferences))

	Register(LegalReferenceCites,
		WithDescription("Explicit citation of another legal instrument"),
		WithIRI(EliCites),
		WithInverseOf(LegalReferenceCitedBy))

	Register(LegalReferenceCitedBy,
		WithDescription("Instrument is cited by another legal instrument"),
		WithIRI(EliCitedBy))

	Register(LegalReferenceAmends,
		WithDescription("Instrument amends another legal instrument"),
		WithIRI(EliAmends))

	Register(LegalReferenceAmendedBy,
		WithDescription("Instrument is amended by another legal instrument"),
		WithIRI(EliAmendedBy),
		WithInverseOf(LegalReferenceAmends))

	Register(LegalReferenceSupersedes,
		WithDescription("Instrument replaces another legal instrument"),
		WithIRI(DcReplaces),
		WithTransitive())

	Register(LegalReferenceTransposes,
		WithDescription("National legislation implementing a directive"),
		WithIRI(EliTransposes))

	Register(LegalReferenceRepeals,
		WithDescription("Instrument repeals another legal instrument"),
		WithIRI(EliRepeals))

	// Jurisdiction predicates

	Register(LegalJurisdictionCode,
		WithDescription("Jurisdiction code an instrument applies in"),
		WithDataType("string"),
		WithRange("ISO 3166 codes plus EU"),
		WithIRI(EliJurisdiction))

	Register(LegalJurisdictionRegion,
		WithDescription("Sub-jurisdiction region an instrument applies in"),
		WithDataType("string"))

	// Temporal predicates

	Register(LegalTemporalInForceFrom,
		WithDescription("Start of the in-force window"),
		WithDataType("time.Time"),
		WithIRI(EliFirstDateEntryInForce))

	Register(LegalTemporalInForceTo,
		WithDescription("End of the in-force window"),
		WithDataType("time.Time"),
		WithIRI(EliDateNoLongerInForce))

	Register(LegalTemporalEnacted,
		WithDescription("Enactment date of the instrument"),
		WithDataType("time.Time"),
		WithIRI(EliDateDocument))

	Register(LegalTemporalPublished,
		WithDescription("Official publication date"),
		WithDataType("time.Time"))

	// Document predicates

	Register(LegalDocumentTitle,
		WithDescription("Official title of the instrument"),
		WithDataType("string"),
		WithIRI(EliTitle),
		WithAlias(AliasTypeLabel, 999))

	Register(LegalDocumentIdentifier,
		WithDescription("Canonical external identifier (CELEX, ECLI)"),
		WithDataType("string"),
		WithIRI(EliIdLocal),
		WithAlias(AliasTypeExternal, 0))

	Register(LegalDocumentType,
		WithDescription("Instrument type (regulation, directive, ruling)"),
		WithDataType("string"),
		WithIRI(EliTypeDocument))
}
