package reason

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/c360/semreason/errors"
	"github.com/c360/semreason/message"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/vocabulary"
)

const (
	docDraft = "https://semreason.c360.io/entity/legal/regulation/gdpr-draft"
	docV1    = "https://semreason.c360.io/entity/legal/regulation/gdpr-v1"
	docV2    = "https://semreason.c360.io/entity/legal/regulation/gdpr-v2"
	docV3    = "https://semreason.c360.io/entity/legal/regulation/gdpr-v3"
)

func rel(subject, predicate, object string) message.Triple {
	return message.NewTriple(subject, predicate, message.URI(object))
}

func initializedProcessor(t *testing.T) *Processor {
	t.Helper()

	cfg := DefaultConfig()
	p := NewProcessor(&natsclient.Client{}, &cfg)
	require.NoError(t, p.Initialize())
	return p
}

func TestEngineForSharesDefaultEngine(t *testing.T) {
	p := initializedProcessor(t)

	req := &message.ReasonRequestPayload{
		RequestID:   "r1",
		BaseTriples: []message.Triple{rel(docV1, vocabulary.DcReplaces, docDraft)},
	}

	engine, err := p.engineFor(req)
	require.NoError(t, err)
	assert.Same(t, p.engine, engine)
}

func TestEngineForPerRequestProfile(t *testing.T) {
	p := initializedProcessor(t)

	req := &message.ReasonRequestPayload{
		RequestID:   "r1",
		Profile:     "structural",
		BaseTriples: []message.Triple{rel(docV1, vocabulary.DcReplaces, docDraft)},
	}

	engine, err := p.engineFor(req)
	require.NoError(t, err)
	assert.NotSame(t, p.engine, engine)
	assert.Len(t, engine.Rules(), 5)
}

func TestEngineForIterationOverride(t *testing.T) {
	p := initializedProcessor(t)

	base := []message.Triple{
		rel(docV1, vocabulary.DcReplaces, docDraft),
		rel(docV2, vocabulary.DcReplaces, docV1),
		rel(docV3, vocabulary.DcReplaces, docV2),
	}
	req := &message.ReasonRequestPayload{
		RequestID:     "r1",
		BaseTriples:   base,
		MaxIterations: 1,
	}

	engine, err := p.engineFor(req)
	require.NoError(t, err)
	assert.NotSame(t, p.engine, engine)

	result, err := engine.Reason(context.Background(), base)
	require.NoError(t, err)
	assert.False(t, result.Converged)
	assert.Equal(t, 1, result.Iterations)
	assert.Len(t, result.Inferred, 2)
}

func TestEngineForUnknownProfile(t *testing.T) {
	p := initializedProcessor(t)

	req := &message.ReasonRequestPayload{
		RequestID:   "r1",
		Profile:     "no-such-profile",
		BaseTriples: []message.Triple{rel(docV1, vocabulary.DcReplaces, docDraft)},
	}

	_, err := p.engineFor(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownProfile)
}

func TestNewRunIDOrdering(t *testing.T) {
	p := initializedProcessor(t)

	first := p.newRunID()
	second := p.newRunID()

	assert.Len(t, first, 26)
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second, "run IDs sort by creation time")
}

func TestBuildResponseEchoesRun(t *testing.T) {
	p := initializedProcessor(t)

	base := []message.Triple{
		rel(docV1, vocabulary.DcReplaces, docDraft),
		rel(docV2, vocabulary.DcReplaces, docV1),
	}
	req := &message.ReasonRequestPayload{
		RequestID:    "req-7",
		BaseTriples:  base,
		Explanations: true,
	}

	result, err := p.engine.Reason(context.Background(), base)
	require.NoError(t, err)
	require.NotEmpty(t, result.Inferred)

	response := p.buildResponse(runJob{runID: "run", request: req}, result)
	assert.Equal(t, "req-7", response.RequestID)
	assert.Equal(t, result.Inferred, response.Inferred)
	assert.True(t, response.Converged)
	assert.Equal(t, result.Iterations, response.Iterations)
	assert.Empty(t, response.RuleErrors)
	assert.Empty(t, response.Error)

	require.Len(t, response.Explanations, len(result.Inferred))
	for _, expl := range response.Explanations {
		assert.NoError(t, expl.Validate())
		assert.NotEmpty(t, expl.SourceTriples)
	}
}

func TestBuildResponseSkipsExplanationsByDefault(t *testing.T) {
	p := initializedProcessor(t)

	base := []message.Triple{
		rel(docV1, vocabulary.DcReplaces, docDraft),
		rel(docV2, vocabulary.DcReplaces, docV1),
	}
	req := &message.ReasonRequestPayload{RequestID: "req-8", BaseTriples: base}

	result, err := p.engine.Reason(context.Background(), base)
	require.NoError(t, err)

	response := p.buildResponse(runJob{runID: "run", request: req}, result)
	assert.Empty(t, response.Explanations)
}

func TestBuildResponseDefaultExplanations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultExplanations = true
	p := NewProcessor(&natsclient.Client{}, &cfg)
	require.NoError(t, p.Initialize())

	base := []message.Triple{
		rel(docV1, vocabulary.DcReplaces, docDraft),
		rel(docV2, vocabulary.DcReplaces, docV1),
	}
	req := &message.ReasonRequestPayload{RequestID: "req-9", BaseTriples: base}

	result, err := p.engine.Reason(context.Background(), base)
	require.NoError(t, err)

	response := p.buildResponse(runJob{runID: "run", request: req}, result)
	assert.Len(t, response.Explanations, len(result.Inferred))
}
