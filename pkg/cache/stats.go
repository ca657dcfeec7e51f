package cache

import (
	"sync/atomic"
	"time"
)

// Statistics counts cache operations. Collection is unconditional; the
// optional Prometheus export mirrors these counters.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64

	currentSize atomic.Int64
	maxSize     atomic.Int64

	startTime time.Time
}

// NewStatistics starts a fresh counter set.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Hit records a lookup that found a live entry.
func (s *Statistics) Hit() { s.hits.Add(1) }

// Miss records a lookup that found nothing, or only an expired entry.
func (s *Statistics) Miss() { s.misses.Add(1) }

// Set records a store operation.
func (s *Statistics) Set() { s.sets.Add(1) }

// Delete records an explicit removal.
func (s *Statistics) Delete() { s.deletes.Add(1) }

// Eviction records an entry removed by expiry or capacity pressure.
func (s *Statistics) Eviction() { s.evictions.Add(1) }

// UpdateSize records the current entry count and tracks the high-water
// mark.
func (s *Statistics) UpdateSize(size int64) {
	s.currentSize.Store(size)
	for {
		max := s.maxSize.Load()
		if size <= max || s.maxSize.CompareAndSwap(max, size) {
			return
		}
	}
}

// Hits returns the hit count.
func (s *Statistics) Hits() int64 { return s.hits.Load() }

// Misses returns the miss count.
func (s *Statistics) Misses() int64 { return s.misses.Load() }

// Sets returns the set count.
func (s *Statistics) Sets() int64 { return s.sets.Load() }

// Deletes returns the delete count.
func (s *Statistics) Deletes() int64 { return s.deletes.Load() }

// Evictions returns the eviction count.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// CurrentSize returns the entry count as of the last update.
func (s *Statistics) CurrentSize() int64 { return s.currentSize.Load() }

// MaxSize returns the largest entry count observed.
func (s *Statistics) MaxSize() int64 { return s.maxSize.Load() }

// HitRatio returns hits/(hits+misses) in [0,1], 0 when nothing was looked
// up yet.
func (s *Statistics) HitRatio() float64 {
	hits, misses := s.Hits(), s.Misses()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Uptime returns the time since the statistics were created.
func (s *Statistics) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Summary is a point-in-time snapshot for health and debug endpoints.
type Summary struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	Deletes     int64   `json:"deletes"`
	Evictions   int64   `json:"evictions"`
	CurrentSize int64   `json:"current_size"`
	MaxSize     int64   `json:"max_size"`
	HitRatio    float64 `json:"hit_ratio"`
}

// Summary snapshots all counters at once.
func (s *Statistics) Summary() Summary {
	return Summary{
		Hits:        s.Hits(),
		Misses:      s.Misses(),
		Sets:        s.Sets(),
		Deletes:     s.Deletes(),
		Evictions:   s.Evictions(),
		CurrentSize: s.CurrentSize(),
		MaxSize:     s.MaxSize(),
		HitRatio:    s.HitRatio(),
	}
}
