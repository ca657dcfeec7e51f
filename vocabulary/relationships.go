package vocabulary

// Metadata for the graph.rel.* predicates declared in predicates.go:
// description, standard IRI mapping, and the reasoning flags the
// inference engine's default profile discovers.
var relationshipVocabulary = []struct {
	predicate   string
	description string
	opts        []Option
}{
	{GraphRelContains, "Hierarchical containment relationship (parent contains child)",
		[]Option{WithIRI(ProvHadMember), WithTransitive()}},
	{GraphRelReferences, "Directional reference from subject to object",
		[]Option{WithIRI(DcReferences)}},
	{GraphRelInfluences, "Causal or impact relationship (subject influences object)", nil},
	{GraphRelCommunicates, "Communication or interaction relationship",
		[]Option{WithSymmetric()}},
	{GraphRelNear, "Proximity relationship",
		[]Option{WithSymmetric()}},
	{GraphRelTriggeredBy, "Event causation (subject triggered by object)", nil},
	{GraphRelDependsOn, "Dependency relationship (subject depends on object)",
		[]Option{WithIRI(DcRequires), WithTransitive()}},
	{GraphRelImplements, "Implementation relationship (subject implements object)", nil},
	{GraphRelDiscusses, "Discussion or commentary relationship",
		[]Option{WithIRI(SchemaAbout)}},
	{GraphRelSupersedes, "Replacement or versioning relationship (subject supersedes object)",
		[]Option{WithIRI(DcReplaces), WithTransitive()}},
	{GraphRelBlockedBy, "Blocking relationship (subject blocked by object)", nil},
	{GraphRelRelatedTo, "General association relationship",
		[]Option{WithIRI(DcRelation), WithSymmetric()}},
}

func init() {
	RegisterRelationshipVocabulary()
}

// RegisterRelationshipVocabulary registers the graph.rel.* predicates.
// Runs at package initialization; exported so tests that clear the
// registry can restore it.
func RegisterRelationshipVocabulary() {
	for _, entry := range relationshipVocabulary {
		opts := append([]Option{WithDescription(entry.description)}, entry.opts...)
		Register(entry.predicate, opts...)
	}
}
