package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allRelationshipPredicates = []string{
	GraphRelContains,
	GraphRelReferences,
	GraphRelInfluences,
	GraphRelCommunicates,
	GraphRelNear,
	GraphRelTriggeredBy,
	GraphRelDependsOn,
	GraphRelImplements,
	GraphRelDiscusses,
	GraphRelSupersedes,
	GraphRelBlockedBy,
	GraphRelRelatedTo,
}

func TestRelationshipPredicatesRegistered(t *testing.T) {
	for _, predicate := range allRelationshipPredicates {
		t.Run(predicate, func(t *testing.T) {
			assert.True(t, IsValidPredicate(predicate))
			assert.Contains(t, predicate, "graph.rel.")

			meta := GetPredicateMetadata(predicate)
			require.NotNil(t, meta)
			assert.NotEmpty(t, meta.Description)
			assert.Equal(t, "graph", meta.Domain)
			assert.Equal(t, "rel", meta.Category)
		})
	}
}

func TestRelationshipIRIMappings(t *testing.T) {
	mappings := map[string]string{
		GraphRelContains:   ProvHadMember,
		GraphRelReferences: DcReferences,
		GraphRelDependsOn:  DcRequires,
		GraphRelDiscusses:  SchemaAbout,
		GraphRelSupersedes: DcReplaces,
		GraphRelRelatedTo:  DcRelation,
	}

	for predicate, iri := range mappings {
		t.Run(predicate, func(t *testing.T) {
			meta := GetPredicateMetadata(predicate)
			require.NotNil(t, meta)
			assert.Equal(t, iri, meta.StandardIRI)
		})
	}

	// predicates without a standard mapping stay unmapped
	for _, predicate := range []string{GraphRelInfluences, GraphRelBlockedBy} {
		meta := GetPredicateMetadata(predicate)
		require.NotNil(t, meta)
		assert.Empty(t, meta.StandardIRI, "predicate %s", predicate)
	}
}

func TestRelationshipReasoningFlags(t *testing.T) {
	tests := []struct {
		predicate  string
		transitive bool
		symmetric  bool
	}{
		{GraphRelContains, true, false},
		{GraphRelDependsOn, true, false},
		{GraphRelSupersedes, true, false},
		{GraphRelCommunicates, false, true},
		{GraphRelNear, false, true},
		{GraphRelRelatedTo, false, true},
		{GraphRelReferences, false, false},
		{GraphRelTriggeredBy, false, false},
		{GraphRelInfluences, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			meta := GetPredicateMetadata(tt.predicate)
			require.NotNil(t, meta)
			assert.Equal(t, tt.transitive, meta.Transitive, "transitive flag")
			assert.Equal(t, tt.symmetric, meta.Symmetric, "symmetric flag")
		})
	}
}

func TestRelationshipPredicateListing(t *testing.T) {
	registered := make(map[string]bool)
	for _, predicate := range ListRegisteredPredicates() {
		meta := GetPredicateMetadata(predicate)
		if meta != nil && meta.Domain == "graph" && meta.Category == "rel" {
			registered[predicate] = true
		}
	}

	assert.GreaterOrEqual(t, len(registered), len(allRelationshipPredicates))
	for _, predicate := range allRelationshipPredicates {
		assert.True(t, registered[predicate], "predicate %s missing from listing", predicate)
	}
}
