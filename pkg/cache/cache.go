package cache

import (
	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/metric"
)

// Cache is the contract every strategy satisfies, parameterized by the
// stored value type.
type Cache[V any] interface {
	// Get retrieves a value by key.
	Get(key string) (V, bool)

	// Set stores a value. It reports whether a new entry was created
	// (false means an existing entry was updated).
	Set(key string, value V) (bool, error)

	// Delete removes an entry, reporting whether it existed.
	Delete(key string) (bool, error)

	// Clear removes every entry.
	Clear() error

	// Size returns the current entry count.
	Size() int

	// Keys returns the keys of all live entries.
	Keys() []string

	// Stats returns the cache's statistics, nil for the no-op cache.
	Stats() *Statistics

	// Close releases background resources (the TTL sweep goroutine).
	Close() error
}

// EvictCallback observes entries leaving the cache through expiry,
// capacity eviction, Delete or Clear. It runs outside the cache lock.
type EvictCallback[V any] func(key string, value V)

// Option configures a cache at construction.
type Option[V any] func(*options[V])

type options[V any] struct {
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
	evictFn       EvictCallback[V]
}

// WithMetrics exports the cache's statistics as Prometheus metrics
// labeled with prefix. Ignored when registry is nil.
func WithMetrics[V any](registry *metric.MetricsRegistry, prefix string) Option[V] {
	return func(o *options[V]) {
		if registry != nil && prefix != "" {
			o.metricsReg = registry
			o.metricsPrefix = prefix
		}
	}
}

// WithEvictionCallback registers an observer for evicted entries.
func WithEvictionCallback[V any](fn EvictCallback[V]) Option[V] {
	return func(o *options[V]) {
		o.evictFn = fn
	}
}

func applyOptions[V any](opts []Option[V]) *options[V] {
	o := &options[V]{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}

// NewNoop returns a cache that stores nothing and always misses. It backs
// configs with caching disabled.
func NewNoop[V any]() Cache[V] {
	return noopCache[V]{}
}

type noopCache[V any] struct{}

func (noopCache[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (noopCache[V]) Set(string, V) (bool, error) { return false, nil }

func (noopCache[V]) Delete(string) (bool, error) { return false, nil }

func (noopCache[V]) Clear() error { return nil }

func (noopCache[V]) Size() int { return 0 }

func (noopCache[V]) Keys() []string { return nil }

func (noopCache[V]) Stats() *Statistics { return nil }

func (noopCache[V]) Close() error { return nil }
