package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/types"
)

// kvBucket is the JetStream KV bucket holding runtime configuration.
// History depth lets an operator roll back a bad edit from the NATS CLI.
const (
	kvBucket     = "semreason_config"
	kvHistory    = 5
	kvVersionKey = "version"
)

// Update is delivered to OnChange subscribers when a watched key changes.
// Path is the KV key that changed; Config is the full configuration after
// the change was applied.
type Update struct {
	Path   string
	Config *SafeConfig
}

// Manager keeps the in-memory configuration in sync with the
// semreason_config KV bucket and fans change notifications out to
// subscribers. The file config seeds the bucket on first boot; after
// that the bucket is the source of truth and edits made through it
// (UI, NATS CLI) flow back into the running process.
type Manager struct {
	config  *SafeConfig
	kv      jetstream.KeyValue
	kvStore *natsclient.KVStore
	logger  *slog.Logger

	mu          sync.RWMutex
	subscribers map[string][]chan Update

	watchers   []jetstream.KeyWatcher
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	stopped    atomic.Bool
}

// NewConfigManager binds a configuration to the KV bucket, creating the
// bucket if it does not exist yet.
func NewConfigManager(cfg *Config, natsClient *natsclient.Client, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if natsClient == nil {
		return nil, fmt.Errorf("nats client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := natsClient.CreateKeyValueBucket(context.Background(), jetstream.KeyValueConfig{
		Bucket:      kvBucket,
		Description: "SemReason runtime configuration",
		History:     kvHistory,
	})
	if err != nil {
		return nil, fmt.Errorf("create/get KV bucket: %w", err)
	}

	return &Manager{
		config:      NewSafeConfig(cfg),
		kv:          kv,
		kvStore:     natsClient.NewKVStore(kv),
		logger:      logger,
		subscribers: make(map[string][]chan Update),
	}, nil
}

// GetConfig returns the thread-safe view of the current configuration.
func (cm *Manager) GetConfig() *SafeConfig {
	return cm.config
}

// OnChange subscribes to configuration changes matching pattern and
// returns a channel that receives an Update per change. The current
// configuration is delivered immediately so subscribers need no separate
// bootstrap read.
//
// Patterns:
//   - "services.metrics"      exact key
//   - "services.*"            everything under services
//   - "components.reason-*"   keys with a given prefix
//
// The channel has a buffer of one; a subscriber that falls behind misses
// intermediate updates but always sees a fresh Config on the next one.
func (cm *Manager) OnChange(pattern string) <-chan Update {
	ch := make(chan Update, 1)

	cm.mu.Lock()
	cm.subscribers[pattern] = append(cm.subscribers[pattern], ch)
	cm.mu.Unlock()

	select {
	case ch <- Update{Path: pattern, Config: cm.config}:
	default:
	}

	return ch
}

// Start reconciles the file config with the KV bucket, then begins
// watching the bucket for changes. The watch covers the two-part roster
// keys ("services.x", "components.y") and the two singleton keys;
// property-level keys written by partial-update tooling are ignored.
func (cm *Manager) Start(ctx context.Context) error {
	cm.shutdownCh = make(chan struct{})

	cm.reconcileKV(ctx)

	// Single-level wildcards keep "services.metrics.enabled"-style keys
	// out of the watch.
	patterns := []string{"services.*", "components.*", "platform", "nats"}

	cm.watchers = make([]jetstream.KeyWatcher, 0, len(patterns))
	for _, pattern := range patterns {
		// UpdatesOnly: existing values were already applied by the
		// reconcile pass.
		watcher, err := cm.kv.Watch(ctx, pattern, jetstream.UpdatesOnly())
		if err != nil {
			cm.logger.Debug("Failed to create watcher", "pattern", pattern, "error", err)
			continue
		}
		cm.watchers = append(cm.watchers, watcher)
	}

	if len(cm.watchers) == 0 {
		return fmt.Errorf("failed to create any watchers")
	}

	for _, watcher := range cm.watchers {
		cm.wg.Add(1)
		go cm.watchLoop(ctx, watcher)
	}

	return nil
}

// reconcileKV decides the sync direction on startup. An empty bucket is
// first boot: seed it from the file. Otherwise the semver in the bucket
// is compared with the file's; the newer side wins, and a tie syncs from
// KV because the UI may have edited individual keys without bumping the
// version. Reconciliation failures are logged, never fatal: the process
// can run on its file config alone.
func (cm *Manager) reconcileKV(ctx context.Context) {
	hasConfig, err := cm.hasKVConfig(ctx)
	if err != nil {
		cm.logger.Warn("Failed to check KV config existence", "error", err)
		hasConfig = false
	}

	if !hasConfig {
		cm.logger.Info("First boot detected, pushing config to KV")
		if err := cm.PushToKV(ctx); err != nil {
			cm.logger.Error("Failed to push initial config to KV", "error", err)
		}
		return
	}

	fileVersion := cm.config.Get().Version
	kvVersion := cm.getKVVersion(ctx)

	cmp, err := CompareVersions(fileVersion, kvVersion)
	if err != nil {
		cm.logger.Warn("Failed to compare versions, syncing from KV",
			"file_version", fileVersion, "kv_version", kvVersion, "error", err)
		if err := cm.syncFromKV(ctx); err != nil {
			cm.logger.Warn("Failed to sync from KV on startup", "error", err)
		}
		return
	}

	switch {
	case cmp > 0:
		cm.logger.Info("File version is newer than KV, updating KV",
			"file_version", fileVersion, "kv_version", kvVersion)
		if err := cm.PushToKV(ctx); err != nil {
			cm.logger.Error("Failed to update KV with newer config", "error", err)
		}
	case cmp < 0:
		cm.logger.Warn("File version is older than KV, using KV config",
			"file_version", fileVersion, "kv_version", kvVersion,
			"hint", "bump file version to update KV")
		fallthrough
	default:
		if err := cm.syncFromKV(ctx); err != nil {
			cm.logger.Warn("Failed to sync from KV on startup", "error", err)
		}
	}
}

// Stop shuts the watchers down, waits up to timeout for their loops to
// drain, and then closes every subscriber channel. Safe to call more
// than once.
func (cm *Manager) Stop(timeout time.Duration) error {
	if !cm.stopped.CompareAndSwap(false, true) {
		return nil
	}

	if cm.shutdownCh != nil {
		close(cm.shutdownCh)
	}
	for _, watcher := range cm.watchers {
		if watcher != nil {
			_ = watcher.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		cm.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		cm.logger.Warn("Manager shutdown timeout", "timeout", timeout)
	}

	// Channels close only after the watch loops have stopped, so no
	// dispatch can race a closed channel.
	cm.mu.Lock()
	for _, channels := range cm.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	cm.subscribers = make(map[string][]chan Update)
	cm.mu.Unlock()

	return nil
}

func (cm *Manager) watchLoop(ctx context.Context, watcher jetstream.KeyWatcher) {
	defer cm.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cm.shutdownCh:
			return
		case entry := <-watcher.Updates():
			if entry != nil {
				cm.dispatch(entry.Key(), entry.Value())
			}
		}
	}
}

// dispatch applies a KV update to the in-memory config and notifies
// matching subscribers. Sends are non-blocking: a slow consumer misses
// this Update but the next send carries the latest config anyway.
func (cm *Manager) dispatch(key string, value []byte) {
	if cm.stopped.Load() {
		return
	}

	if err := cm.applyKey(key, value); err != nil {
		cm.logger.Error("Failed to update configuration", "key", key, "error", err)
		return
	}

	update := Update{Path: key, Config: cm.config}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for pattern, channels := range cm.subscribers {
		if !cm.matchesPattern(key, pattern) {
			continue
		}
		for _, ch := range channels {
			if cm.stopped.Load() {
				return
			}
			select {
			case ch <- update:
			default:
			}
		}
	}
}

// matchesPattern reports whether a KV key matches a subscription
// pattern: exact, ".*" suffix (single level), or "prefix-*".
func (cm *Manager) matchesPattern(key, pattern string) bool {
	if pattern == key {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
		return strings.HasPrefix(key, prefix+".")
	}
	if prefix, _, ok := strings.Cut(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return false
}

// applyKey folds one KV entry into the configuration. An empty value is
// a deletion for roster keys. The result goes through SafeConfig.Update,
// so a KV edit that fails validation is rejected without disturbing the
// running config.
func (cm *Manager) applyKey(key string, value []byte) error {
	if len(value) > 0 {
		if len(value) > maxConfigSize {
			return fmt.Errorf("config value too large: %d bytes > %d", len(value), maxConfigSize)
		}
		if err := validateJSONDepth(value); err != nil {
			return fmt.Errorf("invalid JSON structure in KV update: %w", err)
		}
	}

	section, name, nested := strings.Cut(key, ".")
	current := cm.config.Get()

	switch section {
	case "services":
		if !nested || strings.Contains(name, ".") {
			return fmt.Errorf("invalid service key format: %s", key)
		}
		if len(value) == 0 {
			delete(current.Services, name)
			break
		}
		var svc types.ServiceConfig
		if err := json.Unmarshal(value, &svc); err != nil {
			return fmt.Errorf("parse service config: %w", err)
		}
		if current.Services == nil {
			current.Services = make(types.ServiceConfigs)
		}
		current.Services[name] = svc

	case "components":
		if !nested || strings.Contains(name, ".") {
			return fmt.Errorf("invalid component key format: %s", key)
		}
		if len(value) == 0 {
			delete(current.Components, name)
			break
		}
		var comp types.ComponentConfig
		if err := json.Unmarshal(value, &comp); err != nil {
			return fmt.Errorf("parse component config: %w", err)
		}
		if current.Components == nil {
			current.Components = make(ComponentConfigs)
		}
		current.Components[name] = comp

	case "platform":
		if err := json.Unmarshal(value, &current.Platform); err != nil {
			return fmt.Errorf("parse platform config: %w", err)
		}

	case "nats":
		if err := json.Unmarshal(value, &current.NATS); err != nil {
			return fmt.Errorf("parse NATS config: %w", err)
		}

	default:
		// Unknown top-level keys (version, future sections) are not an
		// error, just not ours to apply.
		return nil
	}

	return cm.config.Update(current)
}

// sanitizeNATSKey maps instance names onto valid NATS KV keys. Spaces
// are the only character operators have put in names so far.
func sanitizeNATSKey(key string) string {
	return strings.ReplaceAll(key, " ", "_")
}

// PushToKV writes the entire current configuration into the bucket:
// the version key first, then one key per service and component, then
// the platform and nats singletons.
func (cm *Manager) PushToKV(ctx context.Context) error {
	cfg := cm.config.Get()

	if cfg.Version == "" {
		cm.logger.Warn("Config version is empty, not pushing to KV")
	} else {
		data, err := json.Marshal(cfg.Version)
		if err != nil {
			return fmt.Errorf("marshal version: %w", err)
		}
		cm.logger.Info("Pushing version to KV", "version", cfg.Version)
		if _, err := cm.kvStore.Put(ctx, kvVersionKey, data); err != nil {
			return fmt.Errorf("push version: %w", err)
		}
	}

	for name, svc := range cfg.Services {
		data, err := json.Marshal(svc)
		if err != nil {
			return fmt.Errorf("marshal service %s: %w", name, err)
		}
		key := "services." + sanitizeNATSKey(name)
		if _, err := cm.kvStore.Put(ctx, key, data); err != nil {
			return fmt.Errorf("push service %s: %w", name, err)
		}
	}

	for name, comp := range cfg.Components {
		data, err := json.Marshal(comp)
		if err != nil {
			return fmt.Errorf("marshal component %s: %w", name, err)
		}
		key := "components." + sanitizeNATSKey(name)
		if _, err := cm.kvStore.Put(ctx, key, data); err != nil {
			return fmt.Errorf("push component %s: %w", name, err)
		}
	}

	// len > 2 skips empty "{}" sections.
	if data, err := json.Marshal(cfg.Platform); err == nil && len(data) > 2 {
		if _, err := cm.kvStore.Put(ctx, "platform", data); err != nil {
			return fmt.Errorf("push platform: %w", err)
		}
	}
	if data, err := json.Marshal(cfg.NATS); err == nil && len(data) > 2 {
		if _, err := cm.kvStore.Put(ctx, "nats", data); err != nil {
			return fmt.Errorf("push nats: %w", err)
		}
	}

	return nil
}

func (cm *Manager) hasKVConfig(ctx context.Context) (bool, error) {
	keys, err := cm.kv.Keys(ctx)
	if err != nil {
		return false, fmt.Errorf("list KV keys: %w", err)
	}
	return len(keys) > 0, nil
}

// getKVVersion reads the bucket's version key. A missing or unparsable
// key reads as "0.0.0" so pre-versioning buckets lose the comparison to
// any real file version.
func (cm *Manager) getKVVersion(ctx context.Context) string {
	entry, err := cm.kv.Get(ctx, kvVersionKey)
	if err != nil {
		return "0.0.0"
	}
	var version string
	if err := json.Unmarshal(entry.Value(), &version); err != nil {
		cm.logger.Warn("Failed to parse version from KV, treating as 0.0.0", "error", err)
		return "0.0.0"
	}
	return version
}

// syncFromKV applies every two-part (or singleton) key in the bucket to
// the in-memory config. Individual failures are logged and skipped so
// one bad key cannot block the rest of the sync.
func (cm *Manager) syncFromKV(ctx context.Context) error {
	keys, err := cm.kv.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list KV keys: %w", err)
	}

	for _, key := range keys {
		if strings.Count(key, ".") > 1 {
			cm.logger.Debug("Skipping property-level key during sync", "key", key)
			continue
		}
		entry, err := cm.kv.Get(ctx, key)
		if err != nil {
			cm.logger.Warn("Failed to get KV entry during sync", "key", key, "error", err)
			continue
		}
		if err := cm.applyKey(key, entry.Value()); err != nil {
			cm.logger.Warn("Failed to apply KV config during sync", "key", key, "error", err)
		}
	}

	cm.logger.Info("Synced configuration from KV", "keys", len(keys))
	return nil
}
