//go:build integration

package natsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemporalBucket(t *testing.T, name string) jetstream.KeyValue {
	t.Helper()

	tc := NewTestClient(t, WithKV())
	ctx := context.Background()

	js, err := tc.Client.JetStream()
	require.NoError(t, err)

	bucket, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  name,
		History: 64,
	})
	require.NoError(t, err)

	return bucket
}

// writeRevisions writes n numbered JSON revisions of key, pausing so
// each revision gets a distinct Created timestamp.
func writeRevisions(t *testing.T, bucket jetstream.KeyValue, key string, n int) {
	t.Helper()
	ctx := context.Background()

	for i := range n {
		data, err := json.Marshal(map[string]any{"id": key, "value": i})
		require.NoError(t, err)
		_, err = bucket.Put(ctx, key, data)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
}

func revisionValue(t *testing.T, entry jetstream.KeyValueEntry) float64 {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(entry.Value(), &result))
	return result["value"].(float64)
}

func TestTemporalResolver_GetAtTimestamp(t *testing.T) {
	bucket := newTemporalBucket(t, "reason_temporal")
	ctx := context.Background()

	const entityID = "entity.alice"
	writeRevisions(t, bucket, entityID, 50)

	resolver := NewTemporalResolver(ctx, bucket)
	defer resolver.Close()

	history, err := bucket.History(ctx, entityID)
	require.NoError(t, err)
	require.Len(t, history, 50)

	t.Run("before all history returns oldest", func(t *testing.T) {
		target := history[0].Created().Add(-time.Hour)
		entry, err := resolver.GetAtTimestamp(ctx, entityID, target)
		require.NoError(t, err)
		assert.Equal(t, float64(0), revisionValue(t, entry))
	})

	t.Run("after all history returns newest", func(t *testing.T) {
		target := time.Now().Add(time.Hour)
		entry, err := resolver.GetAtTimestamp(ctx, entityID, target)
		require.NoError(t, err)
		assert.Equal(t, float64(49), revisionValue(t, entry))
	})

	t.Run("exact revision timestamp", func(t *testing.T) {
		mid := len(history) / 2
		entry, err := resolver.GetAtTimestamp(ctx, entityID, history[mid].Created())
		require.NoError(t, err)
		assert.Equal(t, float64(mid), revisionValue(t, entry))
	})

	t.Run("between revisions returns the floor", func(t *testing.T) {
		gap := history[11].Created().Sub(history[10].Created())
		target := history[10].Created().Add(gap / 2)

		entry, err := resolver.GetAtTimestamp(ctx, entityID, target)
		require.NoError(t, err)
		assert.Equal(t, float64(10), revisionValue(t, entry))
	})

	t.Run("missing key", func(t *testing.T) {
		entry, err := resolver.GetAtTimestamp(ctx, "entity.nobody", time.Now())
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, ErrKVKeyNotFound)
	})
}

func TestTemporalResolver_TimeRange(t *testing.T) {
	bucket := newTemporalBucket(t, "reason_ranges")
	ctx := context.Background()

	const entityID = "entity.bob"
	writeRevisions(t, bucket, entityID, 40)

	resolver := NewTemporalResolver(ctx, bucket)
	defer resolver.Close()

	history, err := bucket.History(ctx, entityID)
	require.NoError(t, err)
	require.Len(t, history, 40)

	t.Run("window bounds", func(t *testing.T) {
		start := history[20].Created()
		end := history[30].Created()

		entries, err := resolver.GetInTimeRange(ctx, entityID, start, end)
		require.NoError(t, err)

		// (start, end]: start itself is excluded, end included
		assert.GreaterOrEqual(t, len(entries), 10)
		assert.LessOrEqual(t, len(entries), 11)

		for _, entry := range entries {
			assert.True(t, entry.Created().After(start))
			assert.False(t, entry.Created().After(end))
		}
	})

	t.Run("empty window", func(t *testing.T) {
		past := history[0].Created().Add(-2 * time.Hour)
		entries, err := resolver.GetInTimeRange(ctx, entityID, past, past.Add(time.Minute))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestTemporalResolver_RangeQueries(t *testing.T) {
	bucket := newTemporalBucket(t, "reason_multi")
	ctx := context.Background()

	entities := []string{"entity.alice", "entity.bob", "entity.carol"}
	for _, entityID := range entities {
		writeRevisions(t, bucket, entityID, 10)
	}

	resolver := NewTemporalResolver(ctx, bucket)
	defer resolver.Close()

	t.Run("snapshot across entities", func(t *testing.T) {
		results, err := resolver.GetRangeAtTimestamp(ctx, entities, time.Now())
		require.NoError(t, err)

		assert.Len(t, results, 3)
		for _, entityID := range entities {
			assert.Contains(t, results, entityID)
		}
	})

	t.Run("missing keys are skipped", func(t *testing.T) {
		keys := append([]string{"entity.nobody"}, entities...)
		results, err := resolver.GetRangeAtTimestamp(ctx, keys, time.Now())
		require.NoError(t, err)

		assert.Len(t, results, 3)
		assert.NotContains(t, results, "entity.nobody")
	})

	t.Run("revisions across entities in a window", func(t *testing.T) {
		start := time.Now().Add(-time.Hour)
		end := time.Now()

		results, err := resolver.GetRangeInTimeRange(ctx, entities, start, end)
		require.NoError(t, err)

		assert.Len(t, results, 3)
		for _, entityID := range entities {
			assert.NotEmpty(t, results[entityID])
		}
	})
}

func TestTemporalResolver_Cache(t *testing.T) {
	bucket := newTemporalBucket(t, "reason_cache")
	ctx := context.Background()

	resolver := NewTemporalResolver(ctx, bucket)
	defer resolver.Close()

	before := resolver.GetStats().CurrentSize()

	for i := range 10 {
		key := fmt.Sprintf("entity.cached-%d", i)
		_, err := bucket.Put(ctx, key, []byte("state"))
		require.NoError(t, err)

		_, err = resolver.GetAtTimestamp(ctx, key, time.Now())
		require.NoError(t, err)
	}

	after := resolver.GetStats().CurrentSize()
	assert.Greater(t, after, before)

	// Past the 5s TTL the janitor drops the histories
	time.Sleep(6 * time.Second)

	_, err := resolver.GetAtTimestamp(ctx, "entity.cached-0", time.Now())
	require.NoError(t, err)

	assert.LessOrEqual(t, resolver.GetStats().CurrentSize(), after)
}

func TestTemporalResolver_QueryLatency(t *testing.T) {
	bucket := newTemporalBucket(t, "reason_latency")
	ctx := context.Background()

	const entityID = "entity.hot"
	writeRevisions(t, bucket, entityID, 64)

	resolver := NewTemporalResolver(ctx, bucket)
	defer resolver.Close()

	target := time.Now().Add(-30 * time.Minute)

	start := time.Now()
	const iterations = 1000
	for range iterations {
		_, err := resolver.GetAtTimestamp(ctx, entityID, target)
		require.NoError(t, err)
	}
	avg := time.Since(start) / iterations

	t.Logf("average query latency: %v", avg)
	assert.Less(t, avg, 10*time.Millisecond, "cached binary search should stay fast")
}
