package service_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/componentregistry"
	"github.com/c360/semreason/config"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/service"
	"github.com/c360/semreason/types"
)

func startConfigManager(t *testing.T, cfg *config.Config, client *natsclient.Client) *config.Manager {
	t.Helper()
	ctx := context.Background()

	configManager, err := config.NewConfigManager(cfg, client, slog.Default())
	require.NoError(t, err)
	require.NoError(t, configManager.Start(ctx))
	t.Cleanup(func() { _ = configManager.Stop(5 * time.Second) })
	return configManager
}

// Initialize builds every enabled component from configuration, using the
// real reason-processor factory against a live NATS server.
func TestComponentManagerInitializeCreatesComponents(t *testing.T) {
	requireIntegrationEnv(t)
	ctx := context.Background()

	testClient := natsclient.NewTestClient(t, natsclient.WithKV())

	registry := component.NewRegistry()
	require.NoError(t, componentregistry.Register(registry))

	configManager := startConfigManager(t, &config.Config{
		Platform: config.PlatformConfig{
			Org:         "test",
			ID:          "test-platform",
			InstanceID:  "test-001",
			Environment: "test",
		},
		Components: config.ComponentConfigs{
			"reason-1": types.ComponentConfig{
				Type:    types.ComponentTypeProcessor,
				Name:    "reason-processor",
				Enabled: true,
				Config:  json.RawMessage(`{"workers": 2}`),
			},
			"reason-2": types.ComponentConfig{
				Type:    types.ComponentTypeProcessor,
				Name:    "reason-processor",
				Enabled: true,
				Config:  json.RawMessage(`{}`),
			},
			"reason-disabled": types.ComponentConfig{
				Type:    types.ComponentTypeProcessor,
				Name:    "reason-processor",
				Enabled: false,
				Config:  json.RawMessage(`{}`),
			},
		},
	}, testClient.Client)

	deps := &service.Dependencies{
		NATSClient:        testClient.Client,
		Manager:           configManager,
		ComponentRegistry: registry,
	}

	svc, err := service.NewComponentManager(json.RawMessage(`{}`), deps)
	require.NoError(t, err)
	cm := svc.(*service.ComponentManager)

	assert.Empty(t, cm.ListComponents(), "no components before Initialize")

	require.NoError(t, cm.Initialize())
	assert.True(t, cm.IsInitialized())

	components := cm.ListComponents()
	assert.Contains(t, components, "reason-1")
	assert.Contains(t, components, "reason-2")
	assert.NotContains(t, components, "reason-disabled")

	// Components exist but have not been started.
	require.NoError(t, cm.Start(ctx))
	t.Cleanup(func() { _ = cm.Stop(5 * time.Second) })
	assert.True(t, cm.IsStarted())

	// Both processors report health once running.
	assert.Eventually(t, func() bool {
		health := cm.GetComponentHealth()
		return health["reason-1"].Healthy && health["reason-2"].Healthy
	}, 10*time.Second, 100*time.Millisecond, "processors should report healthy")
}

func TestComponentManagerLifecycleWithNATS(t *testing.T) {
	requireIntegrationEnv(t)
	ctx := context.Background()

	testClient := natsclient.NewTestClient(t, natsclient.WithJetStream())

	configManager := startConfigManager(t, &config.Config{
		Platform: config.PlatformConfig{
			Org:         "test",
			ID:          "test-platform",
			InstanceID:  "test-001",
			Environment: "test",
		},
	}, testClient.Client)

	deps := &service.Dependencies{
		NATSClient: testClient.Client,
		Manager:    configManager,
	}

	svc, err := service.NewComponentManager(json.RawMessage(`{}`), deps)
	require.NoError(t, err)
	cm := svc.(*service.ComponentManager)

	require.NoError(t, cm.Initialize())
	assert.True(t, cm.IsInitialized())

	require.NoError(t, cm.Start(ctx))
	assert.True(t, cm.IsStarted())

	assert.NotNil(t, cm.GetComponentHealth())
	assert.NotNil(t, cm.ListComponents())

	require.NoError(t, cm.Stop(5*time.Second))
	assert.False(t, cm.IsStarted())
}

// A created processor shows up in the flow graph with its NATS ports.
func TestComponentManagerFlowGraphWithProcessor(t *testing.T) {
	requireIntegrationEnv(t)
	ctx := context.Background()

	testClient := natsclient.NewTestClient(t, natsclient.WithKV())

	registry := component.NewRegistry()
	require.NoError(t, componentregistry.Register(registry))

	configManager := startConfigManager(t, &config.Config{
		Platform: config.PlatformConfig{
			Org:         "test",
			ID:          "test-platform",
			InstanceID:  "test-001",
			Environment: "test",
		},
		Components: config.ComponentConfigs{
			"reason-main": types.ComponentConfig{
				Type:    types.ComponentTypeProcessor,
				Name:    "reason-processor",
				Enabled: true,
				Config:  json.RawMessage(`{}`),
			},
		},
	}, testClient.Client)

	deps := &service.Dependencies{
		NATSClient:        testClient.Client,
		Manager:           configManager,
		ComponentRegistry: registry,
	}

	svc, err := service.NewComponentManager(json.RawMessage(`{}`), deps)
	require.NoError(t, err)
	cm := svc.(*service.ComponentManager)

	require.NoError(t, cm.Initialize())
	require.NoError(t, cm.Start(ctx))
	t.Cleanup(func() { _ = cm.Stop(5 * time.Second) })

	graph := cm.GetFlowGraph()
	require.NotNil(t, graph)
	assert.Contains(t, graph.GetNodes(), "reason-main")

	result := cm.ValidateFlowConnectivity()
	require.NotNil(t, result)
	assert.NotNil(t, result.ConnectedComponents)
	assert.NotNil(t, result.DisconnectedNodes)
	assert.NotNil(t, result.OrphanedPorts)

	paths := cm.GetFlowPaths()
	assert.NotNil(t, paths)
}

// The service manager creates component-manager on StartAll even when the
// configuration does not mention it, and refuses to stop it afterwards.
func TestServiceManagerMandatoryService(t *testing.T) {
	requireIntegrationEnv(t)
	ctx := context.Background()

	testClient := natsclient.NewTestClient(t, natsclient.WithJetStream())

	configManager := startConfigManager(t, &config.Config{
		Platform: config.PlatformConfig{
			Org:         "test",
			ID:          "test-platform",
			InstanceID:  "test-001",
			Environment: "test",
		},
		Services: types.ServiceConfigs{
			"service-manager": types.ServiceConfig{
				Name:    "service-manager",
				Enabled: true,
				Config:  json.RawMessage(`{"http_port": 18080}`),
			},
		},
	}, testClient.Client)

	deps := &service.Dependencies{
		NATSClient: testClient.Client,
		Manager:    configManager,
	}

	registry := service.NewServiceRegistry()
	require.NoError(t, registry.Register("component-manager", service.NewComponentManager))

	manager := service.NewServiceManager(registry)
	services := configManager.GetConfig().Get().Services
	require.NoError(t, manager.ConfigureFromServices(services, deps))

	require.NoError(t, manager.StartAll(ctx))
	t.Cleanup(func() { _ = manager.StopAll(5 * time.Second) })

	svc, exists := manager.GetService("component-manager")
	require.True(t, exists, "component-manager should be created as a mandatory service")
	_, ok := svc.(*service.ComponentManager)
	assert.True(t, ok)

	err := manager.StopService("component-manager", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandatory")
}
