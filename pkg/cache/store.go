package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/c360/semreason/errors"
)

// store is the single implementation behind every strategy. Capacity 0
// means unbounded; TTL 0 means entries never expire. The recency list is
// maintained regardless of capacity so a later config change to LRU does
// not alter Get/Set semantics.
type store[V any] struct {
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front = most recently used

	stats   *Statistics
	metrics *cacheMetrics
	evictFn EvictCallback[V]

	quit      chan struct{}
	sweepDone chan struct{} // nil when no sweeper runs
	closeOnce sync.Once
}

type storeEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // zero means never
}

func (e *storeEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewSimple builds an unbounded cache with no expiry.
func NewSimple[V any](opts ...Option[V]) (Cache[V], error) {
	return newStore(context.Background(), 0, 0, 0, applyOptions(opts))
}

// NewLRU builds a capacity-bounded cache evicting the least recently used
// entry on overflow.
func NewLRU[V any](maxSize int, opts ...Option[V]) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "cache", "NewLRU",
			fmt.Sprintf("max size must be positive, got %d", maxSize))
	}
	return newStore(context.Background(), maxSize, 0, 0, applyOptions(opts))
}

// NewTTL builds a cache whose entries expire after ttl, swept in the
// background every cleanupInterval. The sweeper stops when ctx is
// cancelled or the cache is Closed.
func NewTTL[V any](ctx context.Context, ttl, cleanupInterval time.Duration, opts ...Option[V]) (Cache[V], error) {
	if ttl <= 0 || cleanupInterval <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "cache", "NewTTL",
			fmt.Sprintf("ttl and cleanup interval must be positive, got %v/%v", ttl, cleanupInterval))
	}
	return newStore(ctx, 0, ttl, cleanupInterval, applyOptions(opts))
}

func newStore[V any](ctx context.Context, capacity int, ttl, cleanupInterval time.Duration, opts *options[V]) (*store[V], error) {
	var metrics *cacheMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "newStore", "metrics registration")
		}
	}

	s := &store[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		stats:    NewStatistics(),
		metrics:  metrics,
		evictFn:  opts.evictFn,
		quit:     make(chan struct{}),
	}

	if ttl > 0 && cleanupInterval > 0 {
		s.sweepDone = make(chan struct{})
		go s.sweep(ctx, cleanupInterval)
	}
	return s, nil
}

func (s *store[V]) Get(key string) (V, bool) {
	var zero V

	s.mu.Lock()
	elem, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		s.stats.Miss()
		s.metrics.recordMiss()
		return zero, false
	}

	e := elem.Value.(*storeEntry[V])
	if e.expired(time.Now()) {
		s.removeLocked(elem, e)
		size := len(s.items)
		s.mu.Unlock()

		s.noteEviction(1, size)
		s.stats.Miss()
		s.metrics.recordMiss()
		s.callEvict(e)
		return zero, false
	}

	s.order.MoveToFront(elem)
	s.mu.Unlock()

	s.stats.Hit()
	s.metrics.recordHit()
	return e.value, true
}

func (s *store[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	var evicted *storeEntry[V]
	elem, exists := s.items[key]
	if exists {
		e := elem.Value.(*storeEntry[V])
		e.value = value
		e.expiresAt = expiresAt
		s.order.MoveToFront(elem)
	} else {
		e := &storeEntry[V]{key: key, value: value, expiresAt: expiresAt}
		s.items[key] = s.order.PushFront(e)

		if s.capacity > 0 && len(s.items) > s.capacity {
			oldest := s.order.Back()
			old := oldest.Value.(*storeEntry[V])
			s.removeLocked(oldest, old)
			evicted = old
		}
	}
	size := len(s.items)
	s.mu.Unlock()

	s.stats.Set()
	s.stats.UpdateSize(int64(size))
	s.metrics.recordSet()
	s.metrics.updateSize(size)
	if evicted != nil {
		s.noteEviction(1, size)
		s.callEvict(evicted)
	}
	return !exists, nil
}

func (s *store[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	s.mu.Lock()
	elem, exists := s.items[key]
	var e *storeEntry[V]
	if exists {
		e = elem.Value.(*storeEntry[V])
		s.removeLocked(elem, e)
	}
	size := len(s.items)
	s.mu.Unlock()

	if !exists {
		return false, nil
	}
	s.stats.Delete()
	s.stats.UpdateSize(int64(size))
	s.metrics.recordDelete()
	s.metrics.updateSize(size)
	s.callEvict(e)
	return true, nil
}

func (s *store[V]) Clear() error {
	s.mu.Lock()
	var removed []*storeEntry[V]
	if s.evictFn != nil {
		removed = make([]*storeEntry[V], 0, len(s.items))
		for elem := s.order.Front(); elem != nil; elem = elem.Next() {
			removed = append(removed, elem.Value.(*storeEntry[V]))
		}
	}
	s.items = make(map[string]*list.Element)
	s.order.Init()
	s.mu.Unlock()

	s.stats.UpdateSize(0)
	s.metrics.updateSize(0)
	for _, e := range removed {
		s.callEvict(e)
	}
	return nil
}

func (s *store[V]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Keys lists live entries only; expired entries awaiting the sweeper are
// skipped.
func (s *store[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(s.items))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if e := elem.Value.(*storeEntry[V]); !e.expired(now) {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (s *store[V]) Stats() *Statistics {
	return s.stats
}

// Close stops the sweeper, if any, and waits for it to exit.
func (s *store[V]) Close() error {
	s.closeOnce.Do(func() { close(s.quit) })
	if s.sweepDone == nil {
		return nil
	}
	select {
	case <-s.sweepDone:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for cache sweeper to finish")
	}
}

// removeLocked unlinks an entry; the caller holds s.mu and is responsible
// for stats and the eviction callback.
func (s *store[V]) removeLocked(elem *list.Element, e *storeEntry[V]) {
	s.order.Remove(elem)
	delete(s.items, e.key)
}

func (s *store[V]) callEvict(e *storeEntry[V]) {
	if s.evictFn != nil {
		s.evictFn(e.key, e.value)
	}
}

func (s *store[V]) noteEviction(n, size int) {
	for range n {
		s.stats.Eviction()
		s.metrics.recordEviction()
	}
	s.stats.UpdateSize(int64(size))
	s.metrics.updateSize(size)
}

func (s *store[V]) sweep(ctx context.Context, interval time.Duration) {
	defer close(s.sweepDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *store[V]) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	var expired []*storeEntry[V]
	var next *list.Element
	for elem := s.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		if e := elem.Value.(*storeEntry[V]); e.expired(now) {
			s.removeLocked(elem, e)
			expired = append(expired, e)
		}
	}
	size := len(s.items)
	s.mu.Unlock()

	if len(expired) == 0 {
		return
	}
	s.noteEviction(len(expired), size)
	for _, e := range expired {
		s.callEvict(e)
	}
}
