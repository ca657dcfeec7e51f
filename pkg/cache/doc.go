// Package cache provides the generic in-memory cache used across the
// platform: the reason processor parks early-arriving triple batches in a
// TTL cache until their request claims them, and the temporal KV resolver
// caches revision histories.
//
// One store backs every strategy. Capacity and TTL are both optional and
// compose:
//
//   - simple: no capacity, no TTL (grows until Cleared)
//   - lru:    capacity only, least-recently-used eviction
//   - ttl:    TTL only, background sweep of expired entries
//   - hybrid: both
//
// Construct directly (NewSimple, NewLRU, NewTTL) or from a Config via
// NewFromConfig, which is how component configs wire caches; a disabled
// Config yields the no-op cache so call sites never branch on "caching
// on". Statistics are always collected; WithMetrics additionally exports
// them to Prometheus. All implementations are safe for concurrent use.
package cache
