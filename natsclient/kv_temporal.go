package natsclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/semreason/pkg/cache"
)

// TemporalResolver answers "what was this key's value at time T" queries
// against a KV bucket's revision history. Histories are cached with a
// short TTL so repeated queries for the same key stay cheap.
type TemporalResolver struct {
	bucket    jetstream.KeyValue
	histories cache.Cache[[]jetstream.KeyValueEntry]
}

// NewTemporalResolver creates a resolver with a 5s history cache. The
// context bounds the cache cleanup goroutine.
func NewTemporalResolver(ctx context.Context, bucket jetstream.KeyValue) *TemporalResolver {
	return newResolver(ctx, bucket, 5*time.Second)
}

// NewTemporalResolverWithCache creates a resolver with a custom history
// cache TTL. The context bounds the cache cleanup goroutine.
func NewTemporalResolverWithCache(ctx context.Context, bucket jetstream.KeyValue, cacheTTL time.Duration) *TemporalResolver {
	return newResolver(ctx, bucket, cacheTTL)
}

func newResolver(ctx context.Context, bucket jetstream.KeyValue, ttl time.Duration) *TemporalResolver {
	cleanup := max(ttl/5, time.Second)

	histories, err := cache.NewTTL[[]jetstream.KeyValueEntry](ctx, ttl, cleanup)
	if err != nil {
		// Only invalid TTL/interval values fail, and ours are clamped
		panic(fmt.Sprintf("temporal resolver cache: %v", err))
	}

	return &TemporalResolver{
		bucket:    bucket,
		histories: histories,
	}
}

func (tr *TemporalResolver) history(ctx context.Context, key string) ([]jetstream.KeyValueEntry, error) {
	if cached, ok := tr.histories.Get(key); ok {
		return cached, nil
	}

	history, err := tr.bucket.History(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrKVKeyNotFound
		}
		return nil, fmt.Errorf("get history: %w", err)
	}

	tr.histories.Set(key, history)
	return history, nil
}

// GetAtTimestamp returns the revision that was current at targetTime,
// found by binary search over the key's history. A target before the
// first revision returns the oldest entry; a target at or after the
// last returns the newest.
func (tr *TemporalResolver) GetAtTimestamp(ctx context.Context, key string, targetTime time.Time) (jetstream.KeyValueEntry, error) {
	history, err := tr.history(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrKVKeyNotFound
	}

	if targetTime.Before(history[0].Created()) {
		return history[0], nil
	}
	last := len(history) - 1
	if !targetTime.Before(history[last].Created()) {
		return history[last], nil
	}

	// Find the newest entry created at or before targetTime. The
	// midpoint rounds up so the search converges on the floor entry.
	left, right := 0, last
	for left < right {
		mid := left + (right-left+1)/2
		if history[mid].Created().After(targetTime) {
			right = mid - 1
		} else {
			left = mid
		}
	}

	return history[left], nil
}

// GetRangeAtTimestamp resolves several keys at the same instant. Keys
// with no history at that time are omitted from the result.
func (tr *TemporalResolver) GetRangeAtTimestamp(ctx context.Context, keys []string, targetTime time.Time) (map[string]jetstream.KeyValueEntry, error) {
	results := make(map[string]jetstream.KeyValueEntry)

	for _, key := range keys {
		entry, err := tr.GetAtTimestamp(ctx, key, targetTime)
		if err != nil {
			if errors.Is(err, ErrKVKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get %s at timestamp: %w", key, err)
		}
		results[key] = entry
	}

	return results, nil
}

// GetInTimeRange returns the revisions of key created in (startTime,
// endTime], oldest first.
func (tr *TemporalResolver) GetInTimeRange(ctx context.Context, key string, startTime, endTime time.Time) ([]jetstream.KeyValueEntry, error) {
	history, err := tr.history(ctx, key)
	if err != nil {
		return nil, err
	}

	var results []jetstream.KeyValueEntry
	for _, entry := range history {
		created := entry.Created()
		if created.After(startTime) && !created.After(endTime) {
			results = append(results, entry)
		}
	}

	return results, nil
}

// GetRangeInTimeRange applies GetInTimeRange to several keys. Keys with
// no revisions in the window are omitted.
func (tr *TemporalResolver) GetRangeInTimeRange(ctx context.Context, keys []string, startTime, endTime time.Time) (map[string][]jetstream.KeyValueEntry, error) {
	results := make(map[string][]jetstream.KeyValueEntry)

	for _, key := range keys {
		entries, err := tr.GetInTimeRange(ctx, key, startTime, endTime)
		if err != nil {
			if errors.Is(err, ErrKVKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get %s in range: %w", key, err)
		}
		if len(entries) > 0 {
			results[key] = entries
		}
	}

	return results, nil
}

// GetStats exposes history cache statistics
func (tr *TemporalResolver) GetStats() *cache.Statistics {
	return tr.histories.Stats()
}

// Close releases the history cache
func (tr *TemporalResolver) Close() error {
	return tr.histories.Close()
}
