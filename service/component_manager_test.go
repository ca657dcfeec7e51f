package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/config"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/types"
)

func TestComponentManagerConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &ComponentManagerConfig{}
		require.NoError(t, json.Unmarshal([]byte(`{}`), cfg))

		assert.False(t, cfg.WatchConfig)
		assert.Empty(t, cfg.EnabledComponents)
	})

	t.Run("full config", func(t *testing.T) {
		jsonData := []byte(`{
			"watch_config": true,
			"enabled_components": ["component1", "component2"]
		}`)

		cfg := &ComponentManagerConfig{}
		require.NoError(t, json.Unmarshal(jsonData, cfg))

		assert.True(t, cfg.WatchConfig)
		assert.Equal(t, []string{"component1", "component2"}, cfg.EnabledComponents)
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		jsonData := []byte(`{
			"enabled": true,
			"watch_config": true,
			"enabled_components": ["comp1"],
			"unknown_field": "ignored"
		}`)

		cfg := &ComponentManagerConfig{}
		require.NoError(t, json.Unmarshal(jsonData, cfg))

		assert.True(t, cfg.WatchConfig)
		assert.Equal(t, []string{"comp1"}, cfg.EnabledComponents)
	})
}

func TestNewComponentManager(t *testing.T) {
	t.Run("creates with minimal dependencies", func(t *testing.T) {
		rawConfig, err := json.Marshal(ComponentManagerConfig{
			WatchConfig:       true,
			EnabledComponents: []string{"test-component"},
		})
		require.NoError(t, err)

		service, err := NewComponentManager(rawConfig, &Dependencies{})
		require.NoError(t, err)

		cm, ok := service.(*ComponentManager)
		require.True(t, ok, "service should be a ComponentManager")
		assert.True(t, cm.IsInitialized())
		assert.False(t, cm.IsStarted())
	})

	// The component manager is mandatory, so any config variant must yield
	// a working instance.
	t.Run("always created", func(t *testing.T) {
		configs := []string{
			`{}`,
			`{"watch_config": true}`,
			`{"enabled": true}`,
			`{"enabled": false}`,
			`{"unknown": "value"}`,
		}

		for _, configJSON := range configs {
			service, err := NewComponentManager(json.RawMessage(configJSON), &Dependencies{})
			require.NoError(t, err, "config: %s", configJSON)
			assert.NotNil(t, service, "config: %s", configJSON)
		}
	})

	t.Run("nil config and dependencies", func(t *testing.T) {
		service, err := NewComponentManager(nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("malformed config", func(t *testing.T) {
		_, err := NewComponentManager(json.RawMessage(`{not json`), &Dependencies{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse component-manager config")
	})
}

func TestComponentManager_Initialize(t *testing.T) {
	t.Run("skips disabled and unknown factories", func(t *testing.T) {
		cm := createTestComponentManager(t)
		cm.componentConfigs = config.ComponentConfigs{
			"unknown-comp": {
				Type:    types.ComponentTypeProcessor,
				Name:    "never-registered",
				Enabled: true,
				Config:  json.RawMessage(`{}`),
			},
			"disabled-comp": {
				Type:    types.ComponentTypeProcessor,
				Name:    "never-registered",
				Enabled: false,
				Config:  json.RawMessage(`{}`),
			},
		}

		assert.Empty(t, cm.components)

		// Creation failures are logged and skipped so the platform can come up.
		require.NoError(t, cm.Initialize())

		assert.Empty(t, cm.components)
		assert.True(t, cm.IsInitialized())
	})

	t.Run("creates enabled components", func(t *testing.T) {
		cm, mock := newLifecycleTestManager(t, nil)

		require.NoError(t, cm.Initialize())

		assert.True(t, mock.initialized.Load())
		managed := cm.GetManagedComponents()
		require.Contains(t, managed, "proc-a")
		assert.Equal(t, component.StateInitialized, managed["proc-a"].State)
	})

	t.Run("idempotent", func(t *testing.T) {
		cm, _ := newLifecycleTestManager(t, nil)

		require.NoError(t, cm.Initialize())
		require.NoError(t, cm.Initialize())
		assert.Len(t, cm.GetManagedComponents(), 1)
	})
}

func TestComponentManager_StartStop(t *testing.T) {
	t.Run("start requires initialization", func(t *testing.T) {
		cm := createTestComponentManager(t)

		err := cm.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not initialized")
	})

	t.Run("starts and stops components", func(t *testing.T) {
		cm, mock := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, cm.Start(ctx))
		assert.True(t, cm.IsStarted())

		assert.Eventually(t, mock.started.Load, 2*time.Second, 10*time.Millisecond,
			"component should be started")
		assert.Eventually(t, func() bool {
			return cm.GetManagedComponents()["proc-a"].State == component.StateStarted
		}, 2*time.Second, 10*time.Millisecond)

		require.NoError(t, cm.Stop(5*time.Second))
		assert.True(t, mock.stopped.Load())
		assert.False(t, cm.IsStarted())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		cm, _ := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		ctx := context.Background()
		require.NoError(t, cm.Start(ctx))
		require.NoError(t, cm.Start(ctx))

		require.NoError(t, cm.Stop(5*time.Second))
	})

	t.Run("stop before start", func(t *testing.T) {
		cm, _ := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		require.NoError(t, cm.Stop(time.Second))
	})
}

func TestComponentManager_LifecycleHooks(t *testing.T) {
	t.Run("start and stop hooks", func(t *testing.T) {
		cm, _ := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		started := make(chan string, 1)
		stopped := make(chan string, 1)
		cm.RegisterComponentStartHook(func(_ context.Context, name string, _ component.Discoverable) {
			started <- name
		})
		cm.RegisterComponentStopHook(func(_ context.Context, name string, reason string) {
			stopped <- name + ":" + reason
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, cm.Start(ctx))
		select {
		case name := <-started:
			assert.Equal(t, "proc-a", name)
		case <-time.After(2 * time.Second):
			t.Fatal("start hook never fired")
		}

		require.NoError(t, cm.Stop(5*time.Second))
		select {
		case event := <-stopped:
			assert.Equal(t, "proc-a:graceful", event)
		case <-time.After(2 * time.Second):
			t.Fatal("stop hook never fired")
		}
	})

	t.Run("error hook on failed start", func(t *testing.T) {
		cm, mock := newLifecycleTestManager(t, errors.New("bind failed"))
		require.NoError(t, cm.Initialize())

		failures := make(chan error, 1)
		cm.RegisterComponentErrorHook(func(_ context.Context, _ string, err error) {
			failures <- err
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, cm.Start(ctx))
		select {
		case err := <-failures:
			assert.ErrorContains(t, err, "bind failed")
		case <-time.After(2 * time.Second):
			t.Fatal("error hook never fired")
		}

		assert.Eventually(t, func() bool {
			return cm.GetManagedComponents()["proc-a"].State == component.StateFailed
		}, 2*time.Second, 10*time.Millisecond)
		assert.False(t, mock.started.Load())

		require.NoError(t, cm.Stop(5*time.Second))
	})
}

func TestComponentManager_RemoveComponent(t *testing.T) {
	cm, mock := newLifecycleTestManager(t, nil)
	require.NoError(t, cm.Initialize())

	require.NoError(t, cm.RemoveComponent("proc-a"))
	assert.True(t, mock.stopped.Load(), "removal should stop the component")
	assert.Nil(t, cm.Component("proc-a"))
	assert.Empty(t, cm.GetManagedComponents())

	err := cm.RemoveComponent("proc-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.Error(t, cm.RemoveComponent(""))
}

func TestComponentManager_ComponentLookup(t *testing.T) {
	cm := createTestComponentManager(t)

	mockComp := &mockDiscoverableComponent{
		metadata: component.Metadata{Name: "test-get", Type: "processor"},
	}
	require.NoError(t, cm.registry.RegisterInstance("test-get", mockComp))

	assert.NotNil(t, cm.Component("test-get"))
	assert.Nil(t, cm.Component("non-existent"))
}

func TestComponentManager_ListComponents(t *testing.T) {
	cm := createTestComponentManager(t)

	assert.Empty(t, cm.ListComponents())

	for _, name := range []string{"comp1", "comp2", "comp3"} {
		comp := &mockDiscoverableComponent{metadata: component.Metadata{Name: name}}
		require.NoError(t, cm.registry.RegisterInstance(name, comp))
	}

	list := cm.ListComponents()
	assert.Len(t, list, 3)
	assert.Contains(t, list, "comp1")
	assert.Contains(t, list, "comp2")
	assert.Contains(t, list, "comp3")
}

func TestComponentManager_GetComponentHealth(t *testing.T) {
	cm := createTestComponentManager(t)

	cm.components["healthy"] = &component.ManagedComponent{
		Component: &mockDiscoverableComponent{metadata: component.Metadata{Name: "healthy"}},
	}
	cm.components["unhealthy"] = &component.ManagedComponent{
		Component: &mockDiscoverableComponent{metadata: component.Metadata{Name: "unhealthy"}},
	}

	health := cm.GetComponentHealth()
	assert.Len(t, health, 2)
	assert.Contains(t, health, "healthy")
	assert.Contains(t, health, "unhealthy")
}

func TestComponentManager_PortConflicts(t *testing.T) {
	reg := component.NewRegistry()
	require.NoError(t, reg.RegisterFactory("port-proc", &component.Registration{
		Name: "port-proc",
		Type: "processor",
		Factory: func(_ json.RawMessage, _ component.Dependencies) (component.Discoverable, error) {
			return &mockLifecycleComponent{
				mockDiscoverableComponent: mockDiscoverableComponent{
					metadata: component.Metadata{Name: "port-proc", Type: "processor"},
					inputPorts: []component.Port{
						{Name: "listen", Config: testPort{resource: "tcp:9000", exclusive: true}},
					},
				},
			}, nil
		},
	}))

	cm := createTestComponentManager(t)
	cm.registry = reg

	cfg := types.ComponentConfig{
		Type:    types.ComponentTypeProcessor,
		Name:    "port-proc",
		Enabled: true,
		Config:  json.RawMessage(`{}`),
	}
	deps := component.Dependencies{NATSClient: &natsclient.Client{}}
	ctx := context.Background()

	require.NoError(t, cm.CreateComponent(ctx, "inst-a", cfg, deps))

	// A second instance claiming the same exclusive resource is rejected.
	err := cm.CreateComponent(ctx, "inst-b", cfg, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource conflict")

	// Removal releases the resource so the port can be claimed again.
	require.NoError(t, cm.RemoveComponent("inst-a"))
	require.NoError(t, cm.CreateComponent(ctx, "inst-b", cfg, deps))
}

func TestComponentManager_GetFlowGraph(t *testing.T) {
	cm := createTestComponentManager(t)

	flowComp := &mockDiscoverableComponent{
		metadata: component.Metadata{Name: "flow-comp", Type: "processor"},
		inputPorts: []component.Port{
			{Name: "input", Description: "Input port"},
		},
		outputPorts: []component.Port{
			{Name: "output", Description: "Output port"},
		},
	}
	cm.components["flow-comp"] = &component.ManagedComponent{Component: flowComp}

	graph := cm.GetFlowGraph()
	require.NotNil(t, graph)
	assert.Contains(t, graph.GetNodes(), "flow-comp")

	// Repeated calls serve the cached graph until invalidation.
	assert.Same(t, graph, cm.GetFlowGraph())

	cm.invalidateFlowGraph()
	rebuilt := cm.GetFlowGraph()
	assert.NotSame(t, graph, rebuilt)
	assert.Contains(t, rebuilt.GetNodes(), "flow-comp")
}

func TestComponentManager_ValidateFlowConnectivity(t *testing.T) {
	cm := createTestComponentManager(t)

	result := cm.ValidateFlowConnectivity()
	require.NotNil(t, result)
	assert.Equal(t, "healthy", result.ValidationStatus)
	assert.Empty(t, result.DisconnectedNodes)
	assert.Empty(t, result.OrphanedPorts)

	// Analysis is cached alongside the graph.
	assert.Same(t, result, cm.ValidateFlowConnectivity())
}

func TestComponentManager_GetFlowPaths(t *testing.T) {
	cm := createTestComponentManager(t)

	paths := cm.GetFlowPaths()
	assert.NotNil(t, paths)
	assert.Empty(t, paths)
}

func TestComponentManager_BuildComponentDependencies(t *testing.T) {
	cm := createTestComponentManager(t)
	cm.platform = types.PlatformMeta{Org: "c360", Platform: "platform1"}

	deps := cm.buildComponentDependencies()
	assert.Nil(t, deps.NATSClient)
	assert.NotNil(t, deps.Logger)
	assert.Equal(t, "c360", deps.Platform.Org)
	assert.Equal(t, "platform1", deps.Platform.Platform)
}

func TestComponentManager_ConfigUpdateHandling(t *testing.T) {
	t.Run("disable removes component", func(t *testing.T) {
		cm, mock := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		cm.handleComponentConfigUpdate(context.Background(), "proc-a", types.ComponentConfig{
			Type:    types.ComponentTypeProcessor,
			Name:    "mock-proc",
			Enabled: false,
		})

		assert.True(t, mock.stopped.Load())
		assert.Empty(t, cm.GetManagedComponents())
	})

	t.Run("removal handles deleted config", func(t *testing.T) {
		cm, mock := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		cm.handleComponentRemoval(context.Background(), "proc-a")
		assert.True(t, mock.stopped.Load())
		assert.Empty(t, cm.GetManagedComponents())

		// Removing a component that is already gone is a no-op.
		cm.handleComponentRemoval(context.Background(), "proc-a")
	})

	t.Run("create failure leaves manager operational", func(t *testing.T) {
		cm, _ := newLifecycleTestManager(t, nil)
		require.NoError(t, cm.Initialize())

		cm.handleComponentConfigUpdate(context.Background(), "ghost", types.ComponentConfig{
			Type:    types.ComponentTypeProcessor,
			Name:    "never-registered",
			Enabled: true,
			Config:  json.RawMessage(`{}`),
		})

		assert.NotContains(t, cm.GetManagedComponents(), "ghost")
		assert.NotNil(t, cm.ListComponents())
	})
}

func TestComponentManager_ErrorResilience(t *testing.T) {
	cm := createTestComponentManager(t)

	t.Run("CreateComponent rejects bad input", func(t *testing.T) {
		err := cm.CreateComponent(context.Background(), "fail", types.ComponentConfig{
			Type: types.ComponentType("invalid-type"),
			Name: "invalid-name",
		}, component.Dependencies{})
		require.Error(t, err)
		assert.NotNil(t, cm.ListComponents())
	})

	t.Run("restart of missing component", func(t *testing.T) {
		err := cm.restartComponentWithNewConfig(context.Background(), "non-existent", types.ComponentConfig{
			Type:    types.ComponentTypeProcessor,
			Name:    "test",
			Enabled: true,
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("stop of missing component", func(t *testing.T) {
		err := cm.stopAndRemoveComponent(context.Background(), "non-existent", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

// Test helpers

// mockDiscoverableComponent implements component.Discoverable.
type mockDiscoverableComponent struct {
	metadata    component.Metadata
	inputPorts  []component.Port
	outputPorts []component.Port
}

func (m *mockDiscoverableComponent) Meta() component.Metadata {
	return m.metadata
}

func (m *mockDiscoverableComponent) InputPorts() []component.Port {
	return m.inputPorts
}

func (m *mockDiscoverableComponent) OutputPorts() []component.Port {
	return m.outputPorts
}

func (m *mockDiscoverableComponent) ConfigSchema() component.ConfigSchema {
	return component.ConfigSchema{}
}

func (m *mockDiscoverableComponent) Health() component.HealthStatus {
	return component.HealthStatus{Healthy: true}
}

func (m *mockDiscoverableComponent) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{}
}

// mockLifecycleComponent adds lifecycle methods so the manager can drive it.
type mockLifecycleComponent struct {
	mockDiscoverableComponent
	initialized atomic.Bool
	started     atomic.Bool
	stopped     atomic.Bool
	startErr    error
}

func (m *mockLifecycleComponent) Initialize() error {
	m.initialized.Store(true)
	return nil
}

func (m *mockLifecycleComponent) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started.Store(true)
	return nil
}

func (m *mockLifecycleComponent) Stop(_ time.Duration) error {
	m.stopped.Store(true)
	return nil
}

// testPort is a minimal Portable for resource conflict tests.
type testPort struct {
	resource  string
	exclusive bool
}

func (p testPort) ResourceID() string { return p.resource }
func (p testPort) IsExclusive() bool  { return p.exclusive }
func (p testPort) Type() string       { return "test" }

func createTestComponentManager(_ *testing.T) *ComponentManager {
	return &ComponentManager{
		BaseService: NewBaseServiceWithOptions("component-manager", nil),
		components:  make(map[string]*component.ManagedComponent),
		registry:    component.NewRegistry(),
	}
}

// newLifecycleTestManager builds a manager whose config declares one enabled
// component "proc-a" backed by the returned mock. Initialize creates it.
func newLifecycleTestManager(t *testing.T, startErr error) (*ComponentManager, *mockLifecycleComponent) {
	t.Helper()

	mock := &mockLifecycleComponent{
		mockDiscoverableComponent: mockDiscoverableComponent{
			metadata: component.Metadata{Name: "mock-proc", Type: "processor"},
		},
		startErr: startErr,
	}

	reg := component.NewRegistry()
	require.NoError(t, reg.RegisterFactory("mock-proc", &component.Registration{
		Name: "mock-proc",
		Type: "processor",
		Factory: func(_ json.RawMessage, _ component.Dependencies) (component.Discoverable, error) {
			return mock, nil
		},
	}))

	cm := &ComponentManager{
		BaseService: NewBaseServiceWithOptions("component-manager", nil),
		components:  make(map[string]*component.ManagedComponent),
		registry:    reg,
		natsClient:  &natsclient.Client{},
		componentConfigs: config.ComponentConfigs{
			"proc-a": {
				Type:    types.ComponentTypeProcessor,
				Name:    "mock-proc",
				Enabled: true,
				Config:  json.RawMessage(`{}`),
			},
		},
	}
	return cm, mock
}
