package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/config"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/service"
	"github.com/c360/semreason/types"
)

// requireIntegrationEnv skips tests that need a Docker-backed NATS container.
// The in-package TestMain owns the shared container; external tests start
// their own, so they gate on the same environment variable.
func requireIntegrationEnv(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run NATS container tests")
	}
}

// watchComponent is a lifecycle component created through the config watcher.
type watchComponent struct {
	initialized atomic.Bool
	started     atomic.Bool
	stopped     atomic.Bool
}

func (c *watchComponent) Meta() component.Metadata {
	return component.Metadata{
		Name:        "watch-proc",
		Type:        string(types.ComponentTypeProcessor),
		Description: "Config watch test component",
		Version:     "1.0.0",
	}
}

func (c *watchComponent) InputPorts() []component.Port  { return nil }
func (c *watchComponent) OutputPorts() []component.Port { return nil }

func (c *watchComponent) ConfigSchema() component.ConfigSchema {
	return component.ConfigSchema{
		Properties: map[string]component.PropertySchema{
			"setting": {Type: "string", Description: "Arbitrary test setting"},
		},
	}
}

func (c *watchComponent) Health() component.HealthStatus {
	return component.HealthStatus{Healthy: !c.stopped.Load(), LastCheck: time.Now()}
}

func (c *watchComponent) DataFlow() component.FlowMetrics { return component.FlowMetrics{} }

func (c *watchComponent) Initialize() error {
	c.initialized.Store(true)
	return nil
}

func (c *watchComponent) Start(context.Context) error {
	c.started.Store(true)
	return nil
}

func (c *watchComponent) Stop(time.Duration) error {
	c.stopped.Store(true)
	return nil
}

// watchFactory builds watchComponents and records what it was asked to build.
// The config watcher calls it from a background goroutine.
type watchFactory struct {
	mu         sync.Mutex
	calls      int
	lastConfig json.RawMessage
	last       *watchComponent
	failing    atomic.Bool
}

func (f *watchFactory) create(cfg json.RawMessage, _ component.Dependencies) (component.Discoverable, error) {
	if f.failing.Load() {
		return nil, errors.New("factory unavailable")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastConfig = cfg
	f.last = &watchComponent{}
	return f.last, nil
}

func (f *watchFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *watchFactory) lastCreated() *watchComponent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *watchFactory) lastConfigString() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.lastConfig)
}

func registerWatchFactory(t *testing.T, registry *component.Registry, name string, f *watchFactory) {
	t.Helper()
	err := registry.RegisterFactory(name, &component.Registration{
		Name:        name,
		Type:        string(types.ComponentTypeProcessor),
		Protocol:    "test",
		Description: "Config watch test factory",
		Version:     "1.0.0",
		Factory:     f.create,
	})
	require.NoError(t, err)
}

// watchEnv is a running config manager plus component manager wired to a
// dedicated NATS container, with direct KV access for pushing updates.
type watchEnv struct {
	t  *testing.T
	kv jetstream.KeyValue
	cm *service.ComponentManager
}

func startWatchEnv(t *testing.T, registry *component.Registry) *watchEnv {
	t.Helper()
	requireIntegrationEnv(t)

	ctx := context.Background()
	testClient := natsclient.NewTestClient(t, natsclient.WithKV())

	configManager, err := config.NewConfigManager(&config.Config{
		Platform: config.PlatformConfig{
			Org:         "test",
			ID:          "test-platform",
			InstanceID:  "test-001",
			Environment: "test",
		},
	}, testClient.Client, slog.Default())
	require.NoError(t, err)

	// Watchers only deliver updates for keys that exist, so seed KV before
	// starting the manager.
	require.NoError(t, configManager.PushToKV(ctx))
	require.NoError(t, configManager.Start(ctx))
	t.Cleanup(func() { _ = configManager.Stop(5 * time.Second) })

	kv, err := testClient.Client.GetKeyValueBucket(ctx, "semreason_config")
	require.NoError(t, err)

	deps := &service.Dependencies{
		NATSClient:        testClient.Client,
		Manager:           configManager,
		Logger:            slog.Default(),
		ComponentRegistry: registry,
	}

	svc, err := service.NewComponentManager(json.RawMessage(`{"watch_config": true}`), deps)
	require.NoError(t, err)
	cm := svc.(*service.ComponentManager)

	require.NoError(t, cm.Initialize())
	require.NoError(t, cm.Start(ctx))
	t.Cleanup(func() { _ = cm.Stop(5 * time.Second) })

	return &watchEnv{t: t, kv: kv, cm: cm}
}

func (e *watchEnv) putComponent(name string, cfg types.ComponentConfig) {
	e.t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(e.t, err)
	_, err = e.kv.Put(context.Background(), "components."+name, data)
	require.NoError(e.t, err)
}

func (e *watchEnv) deleteComponent(name string) {
	e.t.Helper()
	require.NoError(e.t, e.kv.Delete(context.Background(), "components."+name))
}

func (e *watchEnv) hasComponent(name string) func() bool {
	return func() bool {
		_, ok := e.cm.ListComponents()[name]
		return ok
	}
}

func (e *watchEnv) missingComponent(name string) func() bool {
	return func() bool {
		_, ok := e.cm.ListComponents()[name]
		return !ok
	}
}

func TestComponentConfigWatch(t *testing.T) {
	factory := &watchFactory{}
	registry := component.NewRegistry()
	registerWatchFactory(t, registry, "watch-proc", factory)

	env := startWatchEnv(t, registry)

	processorConfig := func(setting string, enabled bool) types.ComponentConfig {
		return types.ComponentConfig{
			Type:    types.ComponentTypeProcessor,
			Name:    "watch-proc",
			Enabled: enabled,
			Config:  json.RawMessage(`{"setting":"` + setting + `"}`),
		}
	}

	t.Run("add component", func(t *testing.T) {
		env.putComponent("watch-1", processorConfig("value1", true))

		assert.Eventually(t, env.hasComponent("watch-1"), 5*time.Second, 50*time.Millisecond,
			"component should be created from the config update")
		assert.Equal(t, 1, factory.callCount())
		assert.JSONEq(t, `{"setting":"value1"}`, factory.lastConfigString())

		created := factory.lastCreated()
		require.NotNil(t, created)
		assert.True(t, created.initialized.Load())
		assert.Eventually(t, created.started.Load, 5*time.Second, 50*time.Millisecond,
			"running manager should start the new component")
	})

	t.Run("config change restarts component", func(t *testing.T) {
		previous := factory.lastCreated()
		env.putComponent("watch-1", processorConfig("value2", true))

		assert.Eventually(t, func() bool { return factory.callCount() == 2 },
			5*time.Second, 50*time.Millisecond, "factory should build the replacement")
		assert.JSONEq(t, `{"setting":"value2"}`, factory.lastConfigString())
		assert.True(t, env.hasComponent("watch-1")())
		assert.True(t, previous.stopped.Load(), "old instance should be stopped")
	})

	t.Run("disable stops and removes", func(t *testing.T) {
		current := factory.lastCreated()
		env.putComponent("watch-1", processorConfig("value2", false))

		assert.Eventually(t, env.missingComponent("watch-1"), 5*time.Second, 50*time.Millisecond,
			"disabled component should be removed")
		assert.True(t, current.stopped.Load())
	})

	t.Run("key deletion removes", func(t *testing.T) {
		env.putComponent("watch-2", processorConfig("value3", true))
		assert.Eventually(t, env.hasComponent("watch-2"), 5*time.Second, 50*time.Millisecond)

		env.deleteComponent("watch-2")
		assert.Eventually(t, env.missingComponent("watch-2"), 5*time.Second, 50*time.Millisecond,
			"component should be removed when its key is deleted")
	})

	t.Run("bulk add skips disabled", func(t *testing.T) {
		env.putComponent("bulk-1", processorConfig("a", true))
		env.putComponent("bulk-2", processorConfig("b", true))
		env.putComponent("bulk-3", processorConfig("c", false))

		assert.Eventually(t, env.hasComponent("bulk-1"), 5*time.Second, 50*time.Millisecond)
		assert.Eventually(t, env.hasComponent("bulk-2"), 5*time.Second, 50*time.Millisecond)
		assert.Never(t, env.hasComponent("bulk-3"), time.Second, 100*time.Millisecond,
			"disabled component should never be created")
	})
}

func TestComponentConfigWatchResilience(t *testing.T) {
	factory := &watchFactory{}
	registry := component.NewRegistry()
	registerWatchFactory(t, registry, "flaky-proc", factory)

	env := startWatchEnv(t, registry)

	cfg := types.ComponentConfig{
		Type:    types.ComponentTypeProcessor,
		Name:    "flaky-proc",
		Enabled: true,
		Config:  json.RawMessage(`{}`),
	}

	// A failing factory must not take down the watcher.
	factory.failing.Store(true)
	env.putComponent("flaky-1", cfg)

	assert.Never(t, env.hasComponent("flaky-1"), time.Second, 100*time.Millisecond,
		"failed component should not appear")
	assert.NotNil(t, env.cm.ListComponents(), "manager should stay operational")

	// The next config write for the same component retries creation.
	factory.failing.Store(false)
	env.putComponent("flaky-1", cfg)

	assert.Eventually(t, env.hasComponent("flaky-1"), 5*time.Second, 50*time.Millisecond,
		"component should be created once the factory recovers")
}
