package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/config"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/pkg/retry"
	"github.com/c360/semreason/pkg/security"
	"github.com/c360/semreason/types"
)

// ComponentManagerConfig configures the ComponentManager service.
type ComponentManagerConfig struct {
	WatchConfig       bool     `json:"watch_config"`       // Watch KV for component config changes
	EnabledComponents []string `json:"enabled_components"` // Empty means all configured components
}

// Validate checks if the configuration is valid.
func (c ComponentManagerConfig) Validate() error {
	// Component names are validated when components are created.
	return nil
}

// ComponentManager owns the lifecycle of all components (inputs, processors,
// outputs, storage) registered with the platform.
//
// Lifecycle:
//
//	Initialize() - create configured components without starting them
//	Start(ctx)   - start initialized components, each under a child context
//	Stop()       - stop components in reverse start order
type ComponentManager struct {
	*BaseService

	config ComponentManagerConfig

	registry         *component.Registry
	componentConfigs config.ComponentConfigs
	platform         types.PlatformMeta
	components       map[string]*component.ManagedComponent
	startOrder       []string // for reverse-order stop

	natsClient    *natsclient.Client
	configManager *config.Manager
	configUpdates <-chan config.Update

	graphCache flowGraphCache

	// Lifecycle hooks for monitoring. Read under mu.
	onComponentStart func(ctx context.Context, name string, comp component.Discoverable)
	onComponentStop  func(ctx context.Context, name string, reason string)
	onComponentError func(ctx context.Context, name string, err error)

	mu          sync.RWMutex
	initialized atomic.Bool
	initMu      sync.Mutex
	started     atomic.Bool
	startMu     sync.Mutex

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewComponentManager creates a ComponentManager using the standard service
// constructor signature. Components declared in the platform config are
// created immediately; Start brings them up.
func NewComponentManager(rawConfig json.RawMessage, deps *Dependencies) (Service, error) {
	var cfg ComponentManagerConfig
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("parse component-manager config: %w", err)
		}
	}
	if cfg.EnabledComponents == nil {
		cfg.EnabledComponents = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate component-manager config: %w", err)
	}

	// Pull initial component configs from the config manager when present.
	var componentConfigs config.ComponentConfigs
	var configUpdates <-chan config.Update
	var configManager *config.Manager
	if deps != nil && deps.Manager != nil {
		configManager = deps.Manager
		if full := configManager.GetConfig(); full != nil {
			componentConfigs = full.Get().Components
		}
		if cfg.WatchConfig {
			configUpdates = configManager.OnChange("components.*")
		}
	}
	if componentConfigs == nil {
		componentConfigs = make(config.ComponentConfigs)
	}

	var opts []Option
	if deps != nil {
		if deps.Logger != nil {
			opts = append(opts, WithLogger(deps.Logger))
		}
		if deps.MetricsRegistry != nil {
			opts = append(opts, WithMetrics(deps.MetricsRegistry))
		}
	}

	var platform types.PlatformMeta
	var registry *component.Registry
	if deps != nil {
		platform = deps.Platform
		registry = deps.ComponentRegistry
	}
	if registry == nil {
		registry = component.NewRegistry()
	}

	cm := &ComponentManager{
		BaseService:      NewBaseServiceWithOptions("component-manager", nil, opts...),
		config:           cfg,
		registry:         registry,
		componentConfigs: componentConfigs,
		platform:         platform,
		components:       make(map[string]*component.ManagedComponent),
		startOrder:       make([]string, 0),
		configManager:    configManager,
		configUpdates:    configUpdates,
	}
	if deps != nil && deps.NATSClient != nil {
		cm.natsClient = deps.NATSClient
	}
	cm.SetHealthCheck(cm.healthCheck)

	if err := cm.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize component manager: %w", err)
	}
	return cm, nil
}

// Initialize creates all configured components without starting them.
// Idempotent; a component that fails to create is logged and skipped so the
// rest of the platform can come up.
func (cm *ComponentManager) Initialize() error {
	cm.initMu.Lock()
	defer cm.initMu.Unlock()

	if cm.initialized.Load() {
		return nil
	}
	if cm.componentConfigs == nil {
		cm.initialized.Store(true)
		return nil
	}

	// Guard against a zero-value manager constructed without NewComponentManager.
	if cm.components == nil {
		cm.components = make(map[string]*component.ManagedComponent)
	}
	cm.startOrder = make([]string, 0)

	for instanceName, componentConfig := range cm.componentConfigs {
		if !componentConfig.Enabled {
			cm.logger.Debug("Skipping disabled component", "instance", instanceName)
			continue
		}

		deps := cm.buildComponentDependencies()
		if err := cm.CreateComponent(context.Background(), instanceName, componentConfig, deps); err != nil {
			cm.logger.Error("Failed to create component from config",
				"instance", instanceName,
				"factory", componentConfig.Name,
				"type", componentConfig.Type,
				"error", err)
			continue
		}

		cm.logger.Info("Component created from config",
			"instance", instanceName,
			"factory", componentConfig.Name,
			"type", componentConfig.Type)
	}

	cm.initialized.Store(true)
	return nil
}

// Start starts all initialized components, each under its own child context.
func (cm *ComponentManager) Start(ctx context.Context) error {
	cm.startMu.Lock()
	defer cm.startMu.Unlock()

	if !cm.initialized.Load() {
		return errors.New("component manager not initialized")
	}
	if cm.started.Load() {
		return nil
	}

	cm.shutdown = make(chan struct{})

	if cm.configUpdates != nil {
		cm.wg.Add(1)
		go func() {
			defer cm.wg.Done()
			cm.watchConfigUpdates(ctx)
		}()
	}

	type pendingStart struct {
		name      string
		mc        *component.ManagedComponent
		lifecycle component.LifecycleComponent
	}

	cm.mu.Lock()
	onStart, onError := cm.onComponentStart, cm.onComponentError
	cm.startOrder = make([]string, 0)
	pending := make([]pendingStart, 0, len(cm.components))
	for name, mc := range cm.components {
		lifecycle, ok := component.AsLifecycleComponent(mc.Component)
		if !ok {
			continue
		}
		childCtx, cancel := context.WithCancel(ctx)
		mc.Context = childCtx
		mc.Cancel = cancel
		mc.StartOrder = len(cm.startOrder)
		cm.startOrder = append(cm.startOrder, name)
		pending = append(pending, pendingStart{name, mc, lifecycle})
	}
	cm.mu.Unlock()

	// Start components without holding the lock; each start runs concurrently.
	for _, p := range pending {
		cm.wg.Add(1)
		go func(name string, mc *component.ManagedComponent, lc component.LifecycleComponent) {
			defer cm.wg.Done()

			cm.logger.Info("Starting component", "name", name, "type", mc.Component.Meta().Type)
			if err := lc.Start(mc.Context); err != nil {
				cm.updateComponentState(name, component.StateFailed, err)
				cm.logger.Error("Component failed to start",
					"name", name, "type", mc.Component.Meta().Type, "error", err)
				if onError != nil {
					onError(mc.Context, name, err)
				}
				return
			}

			cm.updateComponentState(name, component.StateStarted, nil)
			cm.logger.Info("Component started", "name", name, "type", mc.Component.Meta().Type)
			if onStart != nil {
				onStart(mc.Context, name, mc.Component)
			}
		}(p.name, p.mc, p.lifecycle)
	}

	cm.started.Store(true)

	// Base service last so health checks see components already starting.
	if err := cm.BaseService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start base service: %w", err)
	}
	return nil
}

// Stop gracefully stops all components in reverse order of startup.
func (cm *ComponentManager) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if !cm.started.Load() {
		return cm.BaseService.Stop(timeout)
	}

	select {
	case <-cm.shutdown:
		return nil // already shutting down
	default:
		close(cm.shutdown)
	}

	stopErrs := cm.stopAllComponents(ctx)

	waitDone := make(chan struct{})
	go func() {
		cm.wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(10 * time.Second):
		cm.logger.Warn("Component stop timeout, forcing shutdown")
		return errors.New("timeout waiting for components to stop")
	case <-ctx.Done():
		return fmt.Errorf("component stop cancelled: %w", ctx.Err())
	}

	cm.started.Store(false)

	if baseErr := cm.BaseService.Stop(timeout); baseErr != nil {
		stopErrs = append(stopErrs, fmt.Errorf("failed to stop base service: %w", baseErr))
	}
	if len(stopErrs) > 0 {
		return fmt.Errorf("failed to stop %d components: %v", len(stopErrs), stopErrs)
	}
	return nil
}

// stopAllComponents cancels component contexts in reverse start order, then
// stops every component in parallel. It snapshots the component set under the
// lock and releases it before stopping, since the stop path updates component
// state through cm.mu.
func (cm *ComponentManager) stopAllComponents(ctx context.Context) []error {
	cm.mu.Lock()
	stopOrder := make([]string, len(cm.startOrder))
	copy(stopOrder, cm.startOrder)

	snapshot := make(map[string]*component.ManagedComponent, len(stopOrder))
	for i := len(stopOrder) - 1; i >= 0; i-- {
		if mc, exists := cm.components[stopOrder[i]]; exists {
			snapshot[stopOrder[i]] = mc
			cm.cancelComponentContext(mc)
		}
	}
	cm.mu.Unlock()

	errCh := make(chan error, len(stopOrder))
	var wg sync.WaitGroup
	for i := len(stopOrder) - 1; i >= 0; i-- {
		name := stopOrder[i]
		mc, exists := snapshot[name]
		if !exists {
			continue
		}
		wg.Add(1)
		go func(name string, mc *component.ManagedComponent) {
			defer wg.Done()
			if err := cm.stopSingleComponent(ctx, name, mc); err != nil {
				errCh <- err
			}
		}(name, mc)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errs
}

// cancelComponentContext cancels and clears the component's context.
// Safe during shutdown when nothing else uses the context.
func (cm *ComponentManager) cancelComponentContext(mc *component.ManagedComponent) {
	if mc.Cancel != nil {
		mc.Cancel()
		mc.Cancel = nil
		mc.Context = nil
	}
}

func (cm *ComponentManager) stopSingleComponent(
	ctx context.Context, name string, mc *component.ManagedComponent,
) error {
	if lifecycle, ok := component.AsLifecycleComponent(mc.Component); ok {
		return cm.stopLifecycleComponent(ctx, name, lifecycle)
	}
	cm.markComponentStopped(ctx, name, "no-lifecycle")
	return nil
}

func (cm *ComponentManager) stopLifecycleComponent(
	ctx context.Context, name string, lifecycle component.LifecycleComponent,
) error {
	timeout := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	if err := lifecycle.Stop(timeout); err != nil {
		cm.updateComponentState(name, component.StateFailed, err)
		cm.mu.RLock()
		onError := cm.onComponentError
		cm.mu.RUnlock()
		if onError != nil {
			go onError(ctx, name, err)
		}
		return fmt.Errorf("component '%s': %w", name, err)
	}

	cm.markComponentStopped(ctx, name, "graceful")
	return nil
}

func (cm *ComponentManager) markComponentStopped(ctx context.Context, name, reason string) {
	cm.updateComponentState(name, component.StateStopped, nil)

	cm.mu.RLock()
	onStop := cm.onComponentStop
	cm.mu.RUnlock()
	if onStop != nil {
		select {
		case <-ctx.Done():
			cm.logger.Warn("Skipping stop hook due to context cancellation", "component", name)
		default:
			go onStop(ctx, name, reason)
		}
	}
}

// updateComponentState records the new state and error for a component.
func (cm *ComponentManager) updateComponentState(name string, state component.State, err error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if mc, exists := cm.components[name]; exists {
		mc.State = state
		mc.LastError = err
	}
}

// Component retrieves a component instance by name, or nil if not registered.
func (cm *ComponentManager) Component(name string) component.Discoverable {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.registry.Component(name)
}

// ListComponents returns all registered component instances.
func (cm *ComponentManager) ListComponents() map[string]component.Discoverable {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.registry.ListComponents()
}

// GetRegistry returns the component registry for schema introspection.
func (cm *ComponentManager) GetRegistry() *component.Registry {
	return cm.registry
}

// CreateComponent creates a component instance through the registry, which
// rejects exclusive port resource conflicts, and registers it as managed.
// Used both during Initialize and for runtime creation via config updates.
func (cm *ComponentManager) CreateComponent(
	ctx context.Context, instanceName string, cfg types.ComponentConfig, deps component.Dependencies,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if instanceName == "" {
		return errors.New("instance name cannot be empty")
	}
	if cfg.Name == "" {
		return errors.New("component factory name cannot be empty")
	}
	if cfg.Type == "" {
		return errors.New("component type cannot be empty")
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.components[instanceName]; exists {
		return fmt.Errorf("component '%s' already exists", instanceName)
	}

	comp, err := cm.registry.CreateComponent(instanceName, cfg, deps)
	if err != nil {
		return err
	}

	mc := &component.ManagedComponent{
		Component: comp,
		State:     component.StateCreated,
	}

	if lifecycle, ok := component.AsLifecycleComponent(comp); ok {
		if err := lifecycle.Initialize(); err != nil {
			// Unregistering releases the instance's port resource claims.
			cm.registry.UnregisterInstance(instanceName)
			return fmt.Errorf("failed to initialize component '%s': %w", instanceName, err)
		}
		mc.State = component.StateInitialized
	}

	cm.components[instanceName] = mc
	cm.invalidateFlowGraph()
	return nil
}

// RemoveComponent stops a component and removes it from tracking.
func (cm *ComponentManager) RemoveComponent(instanceName string) error {
	if instanceName == "" {
		return errors.New("instance name cannot be empty")
	}

	cm.mu.RLock()
	mc, exists := cm.components[instanceName]
	cm.mu.RUnlock()
	if !exists {
		return fmt.Errorf("component '%s' not found", instanceName)
	}

	if lifecycle, ok := component.AsLifecycleComponent(mc.Component); ok {
		if err := lifecycle.Stop(30 * time.Second); err != nil {
			cm.updateComponentState(instanceName, component.StateFailed, err)
			return fmt.Errorf("failed to stop component '%s': %w", instanceName, err)
		}
	}

	cm.detachComponent(instanceName, mc)
	return nil
}

// IsInitialized reports whether Initialize has completed.
func (cm *ComponentManager) IsInitialized() bool {
	return cm.initialized.Load()
}

// IsStarted reports whether Start has completed.
func (cm *ComponentManager) IsStarted() bool {
	return cm.started.Load()
}

// GetManagedComponents returns a copy of all managed components with their state.
func (cm *ComponentManager) GetManagedComponents() map[string]*component.ManagedComponent {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	result := make(map[string]*component.ManagedComponent, len(cm.components))
	for name, mc := range cm.components {
		result[name] = &component.ManagedComponent{
			Component:  mc.Component,
			State:      mc.State,
			Context:    mc.Context,
			Cancel:     mc.Cancel,
			StartOrder: mc.StartOrder,
			LastError:  mc.LastError,
		}
	}
	return result
}

// GetComponentHealth returns each managed component's self-reported health.
func (cm *ComponentManager) GetComponentHealth() map[string]component.HealthStatus {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	result := make(map[string]component.HealthStatus)
	for name, mc := range cm.components {
		if mc.Component != nil {
			result[name] = mc.Component.Health()
		}
	}
	return result
}

// healthCheck runs from BaseService health monitoring and must not block.
func (cm *ComponentManager) healthCheck() error {
	if !cm.initialized.Load() {
		return errors.New("component manager not initialized")
	}
	if !cm.started.Load() {
		return nil // still starting up
	}
	return cm.checkComponentFailures()
}

// checkComponentFailures scans for failed components. Uses TryRLock so the
// health loop never blocks behind a long-running component operation.
func (cm *ComponentManager) checkComponentFailures() error {
	if !cm.mu.TryRLock() {
		return nil // contended, assume healthy rather than stall the health loop
	}
	defer cm.mu.RUnlock()

	for name, mc := range cm.components {
		if mc.Component == nil {
			return fmt.Errorf("component %s has nil implementation", name)
		}
		if mc.Context != nil && mc.Context.Err() != nil {
			return fmt.Errorf("component %s context cancelled: %w", name, mc.Context.Err())
		}
	}
	return nil
}

// RegisterComponentStartHook registers a callback for component start events.
func (cm *ComponentManager) RegisterComponentStartHook(
	hook func(ctx context.Context, name string, comp component.Discoverable),
) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onComponentStart = hook
}

// RegisterComponentStopHook registers a callback for component stop events.
func (cm *ComponentManager) RegisterComponentStopHook(hook func(ctx context.Context, name string, reason string)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onComponentStop = hook
}

// RegisterComponentErrorHook registers a callback for component error events.
func (cm *ComponentManager) RegisterComponentErrorHook(hook func(ctx context.Context, name string, err error)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onComponentError = hook
}

// watchConfigUpdates reacts to component config changes published by the
// config manager until the context is cancelled or the channel closes.
func (cm *ComponentManager) watchConfigUpdates(ctx context.Context) {
	for {
		select {
		case update, ok := <-cm.configUpdates:
			if !ok {
				return
			}

			prefix, name, found := strings.Cut(update.Path, ".")
			if !found || prefix != "components" || strings.Contains(name, ".") {
				continue
			}
			if name == "*" {
				continue // wildcard paths carry no component
			}

			fullConfig := update.Config.Get()
			if compConfig, exists := fullConfig.Components[name]; exists {
				cm.logger.Info("Component config changed",
					"component", name,
					"enabled", compConfig.Enabled)
				cm.handleComponentConfigUpdate(ctx, name, compConfig)
			} else {
				cm.logger.Info("Component removed from config", "component", name)
				cm.handleComponentRemoval(ctx, name)
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleComponentConfigUpdate creates, restarts, or disables a component to
// match its new configuration. Failures are logged rather than propagated so
// one bad component cannot take down the config watcher.
func (cm *ComponentManager) handleComponentConfigUpdate(ctx context.Context, name string, cfg types.ComponentConfig) {
	cm.mu.RLock()
	existing, exists := cm.components[name]
	cm.mu.RUnlock()

	switch {
	case cfg.Enabled && exists:
		if err := cm.restartComponentWithNewConfig(ctx, name, cfg, existing); err != nil {
			// Component keeps running with its old config.
			cm.logger.Error("Failed to restart component with new config",
				"component", name, "error", err)
		}
	case cfg.Enabled:
		if err := cm.createAndStartComponent(ctx, name, cfg); err != nil {
			// Retried on the next config update for this component.
			cm.logger.Error("Failed to create new component",
				"component", name, "error", err)
		}
	case exists:
		cm.logger.Info("Component disabled via config", "component", name)
		if err := cm.stopAndRemoveComponent(ctx, name, existing); err != nil {
			cm.logger.Error("Failed to stop component cleanly",
				"component", name, "error", err)
		}
	}
}

// handleComponentRemoval stops and removes a component whose configuration
// was deleted.
func (cm *ComponentManager) handleComponentRemoval(ctx context.Context, name string) {
	cm.mu.RLock()
	existing, exists := cm.components[name]
	cm.mu.RUnlock()
	if !exists {
		return
	}

	if err := cm.stopAndRemoveComponent(ctx, name, existing); err != nil {
		cm.logger.Error("Failed to remove component cleanly",
			"component", name, "error", err)
	}
}

// restartComponentWithNewConfig stops the existing component, recreates it
// with the new configuration, and starts it again if the manager is running.
func (cm *ComponentManager) restartComponentWithNewConfig(
	ctx context.Context, name string, cfg types.ComponentConfig, existing *component.ManagedComponent,
) error {
	if existing == nil {
		return fmt.Errorf("cannot restart component %s: component not found", name)
	}

	if lifecycle, ok := component.AsLifecycleComponent(existing.Component); ok {
		if err := lifecycle.Stop(30 * time.Second); err != nil {
			return fmt.Errorf("failed to stop existing component: %w", err)
		}
	}

	cm.detachComponent(name, existing)

	deps := cm.buildComponentDependencies()
	if err := cm.CreateComponent(ctx, name, cfg, deps); err != nil {
		return fmt.Errorf("failed to create component with new config: %w", err)
	}

	if cm.started.Load() {
		if err := cm.startSingleComponent(ctx, name); err != nil {
			return fmt.Errorf("failed to start restarted component: %w", err)
		}
	}

	cm.logger.Info("Component restarted with new config", "component", name)
	return nil
}

// createAndStartComponent creates a component and starts it if the manager
// is already running.
func (cm *ComponentManager) createAndStartComponent(ctx context.Context, name string, cfg types.ComponentConfig) error {
	deps := cm.buildComponentDependencies()
	if err := cm.CreateComponent(ctx, name, cfg, deps); err != nil {
		return fmt.Errorf("failed to create component: %w", err)
	}

	if cm.started.Load() {
		if err := cm.startSingleComponent(ctx, name); err != nil {
			// Roll back so the next config update can retry cleanly.
			cm.mu.RLock()
			mc := cm.components[name]
			cm.mu.RUnlock()
			if mc != nil {
				cm.detachComponent(name, mc)
			}
			return fmt.Errorf("failed to start new component: %w", err)
		}
	}

	cm.logger.Info("Component created from config update", "component", name)
	return nil
}

// stopAndRemoveComponent gracefully stops a component and removes it from
// tracking. A stop failure is logged and removal proceeds anyway.
func (cm *ComponentManager) stopAndRemoveComponent(
	ctx context.Context, name string, existing *component.ManagedComponent,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if existing == nil {
		return fmt.Errorf("cannot stop component %s: component not found", name)
	}

	if lifecycle, ok := component.AsLifecycleComponent(existing.Component); ok {
		if err := lifecycle.Stop(30 * time.Second); err != nil {
			cm.logger.Warn("Component stop returned error, continuing with removal",
				"component", name, "error", err)
		}
	}

	cm.detachComponent(name, existing)

	cm.logger.Info("Component stopped and removed", "component", name)
	return nil
}

// detachComponent cancels the component's context and drops it from tracking
// and the registry, which releases its port resource claims. The component
// must already be stopped.
func (cm *ComponentManager) detachComponent(name string, mc *component.ManagedComponent) {
	if mc != nil {
		cm.cancelComponentContext(mc)
	}

	cm.mu.Lock()
	delete(cm.components, name)
	cm.removeFromStartOrder(name)
	cm.mu.Unlock()

	cm.registry.UnregisterInstance(name)
	cm.invalidateFlowGraph()
}

// removeFromStartOrder removes a component from the start order slice.
// Caller must hold cm.mu.
func (cm *ComponentManager) removeFromStartOrder(name string) {
	for i, n := range cm.startOrder {
		if n == name {
			cm.startOrder = append(cm.startOrder[:i], cm.startOrder[i+1:]...)
			break
		}
	}
}

// startSingleComponent starts an already-created component in the background.
// Startup uses a short retry window since component dependencies may still be
// coming up.
func (cm *ComponentManager) startSingleComponent(ctx context.Context, name string) error {
	cm.mu.Lock()
	mc, exists := cm.components[name]
	if !exists {
		cm.mu.Unlock()
		return fmt.Errorf("component %s not found", name)
	}

	lifecycle, ok := component.AsLifecycleComponent(mc.Component)
	if !ok {
		cm.mu.Unlock()
		return nil // nothing to start
	}

	childCtx, cancel := context.WithCancel(ctx)
	mc.Context = childCtx
	mc.Cancel = cancel
	mc.StartOrder = len(cm.startOrder)
	cm.startOrder = append(cm.startOrder, name)
	onStart, onError := cm.onComponentStart, cm.onComponentError
	comp := mc.Component
	cm.mu.Unlock()

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()

		startErr := retry.Do(childCtx, retry.Quick(), func() error {
			if err := lifecycle.Start(childCtx); err != nil {
				cm.logger.Debug("Component start attempt failed, will retry",
					"component", name, "error", err)
				return err
			}
			return nil
		})
		if startErr != nil {
			cm.updateComponentState(name, component.StateFailed, startErr)
			if onError != nil {
				onError(childCtx, name, startErr)
			}
			cm.logger.Error("Component start failed after retries",
				"component", name, "error", startErr)
			return
		}

		cm.updateComponentState(name, component.StateStarted, nil)
		if onStart != nil {
			onStart(childCtx, name, comp)
		}
		cm.logger.Info("Component started", "component", name)
	}()

	return nil
}

// buildComponentDependencies assembles the Dependencies handed to component
// factories from the manager's own wiring.
func (cm *ComponentManager) buildComponentDependencies() component.Dependencies {
	var securityCfg security.Config
	if cm.configManager != nil {
		if full := cm.configManager.GetConfig(); full != nil {
			securityCfg = full.Get().Security
		}
	}

	return component.Dependencies{
		NATSClient:      cm.natsClient,
		MetricsRegistry: cm.BaseService.metricsRegistry,
		Logger:          cm.BaseService.logger,
		Platform: component.PlatformMeta{
			Org:      cm.platform.Org,
			Platform: cm.platform.Platform,
		},
		Security: securityCfg,
	}
}
