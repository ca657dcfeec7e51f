package reasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/message"
	"github.com/c360/semreason/vocabulary"
)

func TestSubPropertyRuleLiftsFacts(t *testing.T) {
	rule := NewSubPropertyRule()

	base := []message.Triple{
		rel(docRuling, propCites, docGdprV2),
		rel(propCites, vocabulary.RdfsSubPropertyOf, propLegalReferences),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)
	assert.Equal(t, []message.Triple{rel(docRuling, propLegalReferences, docGdprV2)}, got)
}

func TestSubPropertyRuleWalksPropertyChain(t *testing.T) {
	rule := NewSubPropertyRule()

	related := vocabulary.DcRelation
	base := []message.Triple{
		rel(docRuling, propCites, docGdprV2),
		rel(propCites, vocabulary.RdfsSubPropertyOf, propLegalReferences),
		rel(propLegalReferences, vocabulary.RdfsSubPropertyOf, related),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)

	want := []message.Triple{
		rel(docRuling, propLegalReferences, docGdprV2),
		rel(docRuling, related, docGdprV2),
	}
	assert.Equal(t, want, got, "one application lifts through every declared level")
}

func TestSubPropertyRulePreservesLiteralObjects(t *testing.T) {
	rule := NewSubPropertyRule()

	shortTitle := "https://semreason.c360.io/legal#shortTitle"
	base := []message.Triple{
		lit(docGdprV2, shortTitle, "GDPR"),
		rel(shortTitle, vocabulary.RdfsSubPropertyOf, vocabulary.EliTitle),
	}

	got, err := rule.Apply(base, nil)
	require.NoError(t, err)
	assert.Equal(t, []message.Triple{lit(docGdprV2, vocabulary.EliTitle, "GDPR")}, got,
		"lifting rewrites the predicate and keeps the object untouched")
}

func TestSubPropertyRuleNoDeclarationsNoWork(t *testing.T) {
	rule := NewSubPropertyRule()

	got, err := rule.Apply([]message.Triple{rel(docRuling, propCites, docGdprV2)}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSubPropertyRuleExplain(t *testing.T) {
	rule := NewSubPropertyRule()

	base := []message.Triple{
		rel(docRuling, propCites, docGdprV2),
		rel(propCites, vocabulary.RdfsSubPropertyOf, propLegalReferences),
	}

	ex, ok := rule.Explain(rel(docRuling, propLegalReferences, docGdprV2), base)
	require.True(t, ok)
	assert.Equal(t, "subproperty", ex.Rule)
	assert.Len(t, ex.SourceTriples, 2)

	_, ok = rule.Explain(rel(docRuling, propCites, docGdprV2), base)
	assert.False(t, ok, "nothing is declared a subproperty of the citing predicate")
}
