package reason

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/message"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/testutil"
	"github.com/c360/semreason/vocabulary"
)

// These tests drive the handlers through an in-memory pub/sub client the way
// the NATS subscriptions do, without standing up a server.

func TestBatchDispatchThroughMockClient(t *testing.T) {
	p := NewProcessor(&natsclient.Client{}, nil)
	p.batchCache = mustSimpleCache(t)

	client := testutil.NewMockNATSClient()
	subject := "reason.triples"
	err := client.Subscribe(context.Background(), subject, func(ctx context.Context, data []byte) {
		p.handleBatch(ctx, subject, data)
	})
	require.NoError(t, err)

	first := &message.TripleBatchPayload{
		Items:   []message.Triple{rel(docV1, vocabulary.DcReplaces, docDraft)},
		Context: "ctx-dispatch",
	}
	second := &message.TripleBatchPayload{
		Items:   []message.Triple{rel(docV2, vocabulary.DcReplaces, docV1)},
		Context: "ctx-dispatch",
	}

	require.NoError(t, client.Publish(context.Background(), subject, envelope(t, first)))
	require.NoError(t, client.Publish(context.Background(), subject, envelope(t, second)))

	testutil.WaitForMessageCount(t, client, subject, 2, time.Second)

	accumulated, ok := p.batchCache.Get("ctx-dispatch")
	require.True(t, ok)
	require.Len(t, accumulated, 2)
	assert.Equal(t, first.Items[0], accumulated[0])
	assert.Equal(t, second.Items[0], accumulated[1])
	assert.Equal(t, int64(2), p.batchesAccumulated)
	assert.Equal(t, int64(0), p.errorCount)
}

func TestBatchFixturesAccumulateByContext(t *testing.T) {
	p := NewProcessor(&natsclient.Client{}, nil)
	p.batchCache = mustSimpleCache(t)

	client := testutil.NewMockNATSClient()
	subject := "reason.triples"
	err := client.Subscribe(context.Background(), subject, func(ctx context.Context, data []byte) {
		p.handleBatch(ctx, subject, data)
	})
	require.NoError(t, err)

	// The raw fixtures are bare payloads, wrap each in a message envelope
	// the way producers on the triple port do.
	perContext := make(map[string]int)
	for _, raw := range testutil.TestTripleBatches {
		var batch message.TripleBatchPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &batch))
		perContext[batch.Context] += len(batch.Items)

		require.NoError(t, client.Publish(context.Background(), subject, envelope(t, &batch)))
	}

	testutil.WaitForMessageCount(t, client, subject, len(testutil.TestTripleBatches), time.Second)
	testutil.AssertMessageReceived(t, client, subject)

	assert.Equal(t, int64(len(testutil.TestTripleBatches)), p.batchesAccumulated)
	assert.Equal(t, int64(0), p.errorCount)
	for ctx, want := range perContext {
		accumulated, ok := p.batchCache.Get(ctx)
		require.True(t, ok, "context %s missing from cache", ctx)
		assert.Len(t, accumulated, want, "context %s", ctx)
	}
}

func TestUnrelatedSubjectStaysSilent(t *testing.T) {
	p := NewProcessor(&natsclient.Client{}, nil)
	p.batchCache = mustSimpleCache(t)

	client := testutil.NewMockNATSClient()
	err := client.Subscribe(context.Background(), "reason.triples", func(ctx context.Context, data []byte) {
		p.handleBatch(ctx, "reason.triples", data)
	})
	require.NoError(t, err)

	// Publishing elsewhere must not reach the handler
	require.NoError(t, client.Publish(context.Background(), "events.other", []byte("{}")))

	testutil.AssertNoMessages(t, client, "reason.triples")
	assert.Equal(t, int64(0), p.batchesAccumulated)
	assert.Zero(t, p.batchCache.Size())
}
