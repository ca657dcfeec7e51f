package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/semreason/errors"
)

// Strategy selects the eviction behavior a Config builds.
type Strategy string

const (
	// StrategySimple stores entries until they are deleted or cleared.
	StrategySimple Strategy = "simple"

	// StrategyLRU bounds entry count, evicting the least recently used.
	StrategyLRU Strategy = "lru"

	// StrategyTTL expires entries after a fixed lifetime.
	StrategyTTL Strategy = "ttl"

	// StrategyHybrid combines the LRU bound with TTL expiry.
	StrategyHybrid Strategy = "hybrid"
)

// Config is the declarative cache shape embedded in component configs.
// The schema tags drive the configuration UI.
type Config struct {
	// Enabled turns the cache on. When false, NewFromConfig returns the
	// no-op cache.
	Enabled bool `json:"enabled" schema:"editable,type:bool,description:Enable caching"`

	// Strategy selects the eviction behavior.
	Strategy Strategy `json:"strategy" schema:"editable,type:enum,description:Cache eviction strategy,enum:simple|lru|ttl|hybrid"`

	// MaxSize bounds entry count for lru and hybrid.
	MaxSize int `json:"max_size" schema:"editable,type:int,description:Maximum number of cache entries (for LRU and Hybrid),min:1"`

	// TTL is the entry lifetime for ttl and hybrid.
	TTL time.Duration `json:"ttl" schema:"editable,type:string,description:Time-to-live for entries (for TTL and Hybrid)"`

	// CleanupInterval is the expired-entry sweep period for ttl and
	// hybrid.
	CleanupInterval time.Duration `json:"cleanup_interval" schema:"editable,type:string,description:How often to sweep expired entries (for TTL and Hybrid)"`
}

// DefaultConfig is an enabled LRU cache of 1000 entries.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Strategy:        StrategyLRU,
		MaxSize:         1000,
		TTL:             5 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// Validate checks the fields the chosen strategy depends on. A disabled
// config is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	needSize := c.Strategy == StrategyLRU || c.Strategy == StrategyHybrid
	needTTL := c.Strategy == StrategyTTL || c.Strategy == StrategyHybrid

	switch c.Strategy {
	case StrategySimple, StrategyLRU, StrategyTTL, StrategyHybrid:
	default:
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
			fmt.Sprintf("unknown cache strategy: %s", c.Strategy))
	}

	if needSize && c.MaxSize <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
			fmt.Sprintf("max_size must be positive for %s cache, got %d", c.Strategy, c.MaxSize))
	}
	if needTTL {
		if c.TTL <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
				fmt.Sprintf("ttl must be positive for %s cache, got %v", c.Strategy, c.TTL))
		}
		if c.CleanupInterval <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Validate",
				fmt.Sprintf("cleanup_interval must be positive for %s cache, got %v", c.Strategy, c.CleanupInterval))
		}
	}
	return nil
}

// NewFromConfig builds the cache a Config describes. A disabled config
// yields the no-op cache. ctx bounds the background sweeper of ttl and
// hybrid caches.
func NewFromConfig[V any](ctx context.Context, config Config, opts ...Option[V]) (Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "cache", "NewFromConfig", "config validation failed")
	}
	if !config.Enabled {
		return NewNoop[V](), nil
	}

	switch config.Strategy {
	case StrategySimple:
		return NewSimple(opts...)
	case StrategyLRU:
		return NewLRU(config.MaxSize, opts...)
	case StrategyTTL:
		return NewTTL(ctx, config.TTL, config.CleanupInterval, opts...)
	case StrategyHybrid:
		return newStore(ctx, config.MaxSize, config.TTL, config.CleanupInterval, applyOptions(opts))
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "cache", "NewFromConfig",
			fmt.Sprintf("unsupported cache strategy: %s", config.Strategy))
	}
}

// UnmarshalJSON accepts the duration fields as either Go duration strings
// ("5m", "30s") or integer nanoseconds, the form older configs carry.
func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	aux := &struct {
		TTL             json.RawMessage `json:"ttl,omitempty"`
		CleanupInterval json.RawMessage `json:"cleanup_interval,omitempty"`
		*alias
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if c.TTL, err = parseDurationField(aux.TTL, "ttl", c.TTL); err != nil {
		return err
	}
	c.CleanupInterval, err = parseDurationField(aux.CleanupInterval, "cleanup_interval", c.CleanupInterval)
	return err
}

func parseDurationField(data json.RawMessage, field string, current time.Duration) (time.Duration, error) {
	if len(data) == 0 {
		return current, nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		d, err := time.ParseDuration(str)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", field, err)
		}
		return d, nil
	}

	var nsec int64
	if err := json.Unmarshal(data, &nsec); err != nil {
		return 0, fmt.Errorf("field %s must be a duration string (e.g. '5m') or integer nanoseconds", field)
	}
	return time.Duration(nsec), nil
}
