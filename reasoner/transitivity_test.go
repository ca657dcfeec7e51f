package reasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/message"
	"github.com/c360/semreason/vocabulary"
)

func TestTransitivityRuleComposesOneHop(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcReplaces})

	base := []message.Triple{
		rel(docGdprV1, vocabulary.DcReplaces, docGdprDraft),
		rel(docGdprV2, vocabulary.DcReplaces, docGdprV1),
		rel(docGdprV3, vocabulary.DcReplaces, docGdprV2),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)

	// A single application composes adjacent pairs only; the three-hop
	// span needs the next round's adjacency.
	want := []message.Triple{
		rel(docGdprV2, vocabulary.DcReplaces, docGdprDraft),
		rel(docGdprV3, vocabulary.DcReplaces, docGdprV1),
	}
	assert.Equal(t, want, got)
}

func TestTransitivityRuleSeesInferredFacts(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcReplaces})

	base := []message.Triple{
		rel(docGdprV2, vocabulary.DcReplaces, docGdprV1),
	}
	inferred := []message.Triple{
		rel(docGdprV1, vocabulary.DcReplaces, docGdprDraft),
	}

	got, err := rule.Apply(base, inferred)
	require.NoError(t, err)
	assert.Equal(t, []message.Triple{rel(docGdprV2, vocabulary.DcReplaces, docGdprDraft)}, got)
}

func TestTransitivityRuleSkipsExistingAndSelfEdges(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcReplaces})

	base := []message.Triple{
		rel(docGdprV1, vocabulary.DcReplaces, docGdprV2),
		rel(docGdprV2, vocabulary.DcReplaces, docGdprV1),
		// Already present, must not be re-derived.
		rel(docGdprV2, vocabulary.DcReplaces, docGdprV2),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransitivityRuleIgnoresOtherShapes(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcReplaces})

	base := []message.Triple{
		// Different predicate.
		rel(docGdprV1, vocabulary.DcReferences, docGdprDraft),
		rel(docGdprV2, vocabulary.DcReferences, docGdprV1),
		// Right predicate, literal object.
		lit(docGdprV1, vocabulary.DcReplaces, "gdpr-draft"),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransitivityRulePredicateOrderFixesEmission(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcRequires, vocabulary.DcReplaces})

	base := []message.Triple{
		rel(docGdprV1, vocabulary.DcReplaces, docGdprDraft),
		rel(docGdprV2, vocabulary.DcReplaces, docGdprV1),
		rel(docGuideline, vocabulary.DcRequires, docGdprV2),
		rel(docRuling, vocabulary.DcRequires, docGuideline),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)

	// Configured predicate order, not input order, groups the output.
	want := []message.Triple{
		rel(docRuling, vocabulary.DcRequires, docGdprV2),
		rel(docGdprV2, vocabulary.DcReplaces, docGdprDraft),
	}
	assert.Equal(t, want, got)
}

func TestTransitivityRuleDeriveRecordsChain(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcReplaces})

	first := rel(docGdprV2, vocabulary.DcReplaces, docGdprV1)
	second := rel(docGdprV1, vocabulary.DcReplaces, docGdprDraft)

	explanations, err := rule.Derive([]message.Triple{first, second}, nil)
	require.NoError(t, err)
	require.Len(t, explanations, 1)

	ex := explanations[0]
	assert.Equal(t, "transitivity", ex.Rule)
	assert.Equal(t, rel(docGdprV2, vocabulary.DcReplaces, docGdprDraft), ex.Conclusion)
	assert.Equal(t, []string{first.String(), second.String()}, ex.SourceTriples)
	require.NoError(t, ex.Validate())
}

func TestTransitivityRuleExplain(t *testing.T) {
	rule := NewTransitivityRule([]string{vocabulary.DcReplaces})

	base := []message.Triple{
		rel(docGdprV1, vocabulary.DcReplaces, docGdprDraft),
		rel(docGdprV2, vocabulary.DcReplaces, docGdprV1),
	}

	ex, ok := rule.Explain(rel(docGdprV2, vocabulary.DcReplaces, docGdprDraft), base)
	require.True(t, ok)
	assert.Equal(t, "transitivity", ex.Rule)
	assert.Len(t, ex.SourceTriples, 2)

	// Right shape, no supporting chain: still explainable, no sources.
	ex, ok = rule.Explain(rel(docGdprV3, vocabulary.DcReplaces, docGdprDraft), base)
	require.True(t, ok)
	assert.Empty(t, ex.SourceTriples)

	// Wrong predicate and literal object are not this rule's shapes.
	_, ok = rule.Explain(rel(docGdprV2, vocabulary.DcReferences, docGdprDraft), base)
	assert.False(t, ok)
	_, ok = rule.Explain(lit(docGdprV2, vocabulary.DcReplaces, "gdpr-draft"), base)
	assert.False(t, ok)
}
