// Package reason provides the forward-chaining inference component. It
// accepts reasoning requests and triple batches over NATS, runs the rule
// chain from the reasoner package to a fixed point, and publishes inferred
// triples and correlated responses.
package reason

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/message"
	"github.com/c360/semreason/metric"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/pkg/cache"
	"github.com/c360/semreason/pkg/worker"
	"github.com/c360/semreason/reasoner"
)

// Static interface checks - compile-time verification
var _ component.Discoverable = (*Processor)(nil)

// schema defines the configuration schema for the reasoning processor
// Generated from Config struct tags using reflection
var schema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// ReasonMetrics and newReasonMetrics are in metrics.go
// Config and DefaultConfig are in config.go

// Processor runs forward-chaining inference for the mesh
type Processor struct {
	// Component interface implementation
	metadata    component.Metadata
	inputPorts  []component.Port
	outputPorts []component.Port
	health      component.HealthStatus
	flowMetrics component.FlowMetrics

	// Reasoning resources
	natsClient *natsclient.Client
	engine     *reasoner.Engine
	profile    *reasoner.Profile

	// Per-context triple accumulation
	batchCache cache.Cache[[]message.Triple]

	// Run execution
	pool      *worker.Pool[runJob]
	limiter   *rate.Limiter
	entropy   *ulid.MonotonicEntropy
	entropyMu sync.Mutex

	// Configuration
	config *Config

	// Dependencies
	metricsRegistry *metric.MetricsRegistry

	// Runtime state
	shutdown           chan struct{}
	done               chan struct{}
	startTime          time.Time
	runsStarted        int64
	runsCompleted      int64
	runsFailed         int64
	batchesAccumulated int64
	triplesInferred    int64
	errorCount         int64
	lastError          string
	lastActivity       time.Time
	mu                 sync.RWMutex

	// Active subscriptions flag
	isSubscribed bool

	// Prometheus metrics
	metrics *ReasonMetrics

	// Loggers: logger is the local structured log, meshLog mirrors
	// lifecycle and run events onto "logs.reason-processor"
	logger  *slog.Logger
	meshLog *component.Logger
}

// NewProcessor creates a new reasoning processor
func NewProcessor(natsClient *natsclient.Client, config *Config) *Processor {
	return NewProcessorWithMetrics(natsClient, config, nil)
}

// NewProcessorWithMetrics creates a new reasoning processor with optional metrics
func NewProcessorWithMetrics(natsClient *natsclient.Client, config *Config, metricsRegistry *metric.MetricsRegistry) *Processor {
	if config == nil {
		defaultConfig := DefaultConfig()
		config = &defaultConfig
	}

	p := &Processor{
		metadata: component.Metadata{
			Name:        "reason-processor",
			Type:        "processor",
			Description: "Runs forward-chaining inference over triple batches and reasoning requests",
			Version:     "1.0.0",
		},
		natsClient: natsClient,
		// Cache is initialized with context in Start()
		batchCache:      cache.NewNoop[[]message.Triple](),
		entropy:         ulid.Monotonic(rand.Reader, 0),
		config:          config,
		metricsRegistry: metricsRegistry,
		health: component.HealthStatus{
			Healthy:    true,
			LastCheck:  time.Now(),
			ErrorCount: 0,
			Uptime:     0,
		},
		flowMetrics: component.FlowMetrics{
			MessagesPerSecond: 0,
			BytesPerSecond:    0,
			ErrorRate:         0,
			LastActivity:      time.Now(),
		},
		isSubscribed: false,
		metrics:      newReasonMetrics(metricsRegistry, "reason"),
		logger:       slog.Default().With("component", "reason-processor"),
		// Disabled until Start attaches the live connection
		meshLog: component.NewLogger("reason-processor", nil, nil),
	}

	// Set up input and output ports
	p.setupPorts()

	return p
}

// setupPorts builds the declared port lists from config. A config without
// ports gets the default wiring, so a partial Config stays constructible.
func (p *Processor) setupPorts() {
	if p.config.Ports == nil {
		defaults := DefaultConfig()
		p.config.Ports = defaults.Ports
	}

	p.inputPorts = make([]component.Port, len(p.config.Ports.Inputs))
	for i, def := range p.config.Ports.Inputs {
		p.inputPorts[i] = component.BuildPortFromDefinition(def, component.DirectionInput)
	}

	p.outputPorts = make([]component.Port, len(p.config.Ports.Outputs))
	for i, def := range p.config.Ports.Outputs {
		p.outputPorts[i] = component.BuildPortFromDefinition(def, component.DirectionOutput)
	}
}

// Meta returns component metadata
func (p *Processor) Meta() component.Metadata {
	return p.metadata
}

// InputPorts returns declared input ports
func (p *Processor) InputPorts() []component.Port {
	return p.inputPorts
}

// OutputPorts returns declared output ports
func (p *Processor) OutputPorts() []component.Port {
	return p.outputPorts
}

// ConfigSchema returns configuration schema for component interface
func (p *Processor) ConfigSchema() component.ConfigSchema {
	return schema
}

// Health returns current health status
func (p *Processor) Health() component.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	p.health.LastCheck = time.Now()
	p.health.ErrorCount = int(atomic.LoadInt64(&p.errorCount))
	if !p.startTime.IsZero() {
		p.health.Uptime = time.Since(p.startTime)
	}

	return p.health
}

// DataFlow returns current data flow metrics
func (p *Processor) DataFlow() component.FlowMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	// Completed runs drive the throughput estimate
	completed := atomic.LoadInt64(&p.runsCompleted)
	if !p.startTime.IsZero() && completed > 0 {
		duration := time.Since(p.startTime).Seconds()
		if duration > 0 {
			p.flowMetrics.MessagesPerSecond = float64(completed) / duration
		}
	}

	// Error rate calculation
	started := atomic.LoadInt64(&p.runsStarted)
	if started > 0 {
		p.flowMetrics.ErrorRate = float64(atomic.LoadInt64(&p.runsFailed)) / float64(started)
	}

	p.flowMetrics.LastActivity = p.lastActivity

	return p.flowMetrics
}

// Initialize resolves the rule profile and builds the inference engine
func (p *Processor) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.buildEngine(); err != nil {
		return err
	}

	p.logger.Info("Reasoning processor initialized",
		"profile", p.profile.Name,
		"rules", len(p.engine.Rules()),
		"max_iterations", p.profile.MaxIterations)
	return nil
}

// buildEngine resolves config.Profile and assembles the default engine.
// Callers must hold p.mu.
func (p *Processor) buildEngine() error {
	profile, err := reasoner.ResolveProfile(p.config.Profile)
	if err != nil {
		return errors.WrapInvalid(err, "ReasonProcessor", "Initialize", "resolve rule profile")
	}

	engine, err := profile.Build(p.engineOptions()...)
	if err != nil {
		return errors.WrapInvalid(err, "ReasonProcessor", "Initialize", "build rule chain")
	}

	p.profile = profile
	p.engine = engine
	return nil
}

// engineOptions translates config overrides into engine options. Options are
// applied after the profile's own settings, so they win.
func (p *Processor) engineOptions() []reasoner.EngineOption {
	var opts []reasoner.EngineOption
	if p.config.MaxIterations > 0 {
		opts = append(opts, reasoner.WithMaxIterations(p.config.MaxIterations))
	}
	if p.config.Permissive {
		opts = append(opts, reasoner.WithPermissiveMode())
	}
	if p.config.Parallel {
		opts = append(opts, reasoner.WithParallelRules())
	}
	return opts
}

// run is the main background goroutine that handles processor lifecycle.
// The shutdown and done channels are passed in so Stop can release the
// processor's references without racing this goroutine.
func (p *Processor) run(ctx context.Context, shutdown <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// Subscribe to input subjects
	if err := p.setupSubscriptions(ctx); err != nil {
		p.logger.Error("Failed to setup subscriptions", "error", err)
		p.meshLog.ErrorContext(ctx, "subscription setup failed", err)
		return
	}

	// Wait for shutdown signal or context cancellation
	select {
	case <-shutdown:
		p.logger.Info("Reasoning processor shutdown requested")
	case <-ctx.Done():
		p.logger.Info("Reasoning processor context cancelled", "error", ctx.Err())
	}
}

// Start begins accepting reasoning requests and triple batches
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "ReasonProcessor", "Start", "check processor state")
	}

	if ctx == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ReasonProcessor", "Start", "context cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "ReasonProcessor", "Start", "context already cancelled or timed out")
	}

	// Allow Start without a prior Initialize call
	if p.engine == nil {
		if err := p.buildEngine(); err != nil {
			return err
		}
	}

	// Initialize batch cache with context and metrics
	batchCache, err := cache.NewFromConfig[[]message.Triple](ctx, p.config.BatchCache,
		cache.WithMetrics[[]message.Triple](p.metricsRegistry, "reason_batches"),
	)
	if err != nil {
		p.logger.Warn("Failed to create batch cache, using noop cache", "error", err)
		batchCache = cache.NewNoop[[]message.Triple]()
	}
	p.batchCache = batchCache

	// Start the run worker pool
	pool := worker.NewPool(p.config.Workers, p.config.QueueSize, p.executeRun,
		worker.WithMetricsRegistry[runJob](p.metricsRegistry, "reason_runs"),
	)
	if err := pool.Start(ctx); err != nil {
		return errors.Wrap(err, "ReasonProcessor", "Start", "start worker pool")
	}
	p.pool = pool

	// Admission control for request storms
	limit := rate.Limit(p.config.RequestsPerSecond)
	if p.config.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	p.limiter = rate.NewLimiter(limit, max(p.config.RequestBurst, 1))

	// Attach the live connection so run events reach the mesh log stream
	p.meshLog = component.NewLogger(p.metadata.Name, p.natsClient.GetConnection(), nil)

	// Create shutdown and done channels for coordination
	p.shutdown = make(chan struct{})
	p.done = make(chan struct{})
	p.startTime = time.Now()
	p.health.Healthy = true

	// Start background goroutine with context
	go p.run(ctx, p.shutdown, p.done)

	p.isSubscribed = true

	p.logger.Info("Reasoning processor started",
		"profile", p.profile.Name,
		"workers", p.config.Workers,
		"queue_size", p.config.QueueSize)
	p.meshLog.InfoContext(ctx, fmt.Sprintf("started with profile %s", p.profile.Name))
	return nil
}

// setupSubscriptions creates NATS subscriptions for input subjects
func (p *Processor) setupSubscriptions(ctx context.Context) error {
	if !p.natsClient.IsHealthy() {
		return errors.WrapFatal(errors.ErrNoConnection, "ReasonProcessor", "Start", "check NATS health")
	}

	for _, port := range p.config.Ports.Inputs {
		if port.Type != "nats" || port.Subject == "" {
			continue
		}

		var handler func(context.Context, string, []byte)
		switch port.Name {
		case "requests":
			handler = p.handleRequest
		case "triples":
			handler = p.handleBatch
		default:
			p.logger.Warn("Ignoring unrecognized input port", "port", port.Name, "subject", port.Subject)
			continue
		}

		subject := port.Subject
		err := p.natsClient.Subscribe(ctx, subject, func(msgCtx context.Context, data []byte) {
			handler(msgCtx, subject, data)
		})
		if err != nil {
			return errors.Wrap(err, "ReasonProcessor", "Start", fmt.Sprintf("subscribe to %s", subject))
		}

		p.logger.Info("Reasoning processor subscribed", "port", port.Name, "subject", subject)
	}

	return nil
}

// Message handling functions (handleRequest, handleBatch, mergeAccumulated,
// recordError) are in handler.go

// Stop stops the processor and cleans up resources
func (p *Processor) Stop(timeout time.Duration) error {
	p.mu.Lock()
	if p.shutdown == nil {
		p.mu.Unlock()
		return nil // Already stopped
	}

	// Take ownership of the running state under one lock so a concurrent
	// Stop cannot close the channel twice and late handlers observe nil
	// resources rather than half-released ones.
	close(p.shutdown)
	done := p.done
	pool := p.pool
	batchCache := p.batchCache
	meshLog := p.meshLog
	p.shutdown = nil
	p.done = nil
	p.pool = nil
	p.batchCache = nil
	p.isSubscribed = false
	p.health.Healthy = false
	p.mu.Unlock()

	// Wait for graceful shutdown with timeout
	select {
	case <-done:
		// Clean shutdown
	case <-time.After(timeout):
		p.logger.Warn("Reasoning processor shutdown timeout", "timeout", timeout)
	}

	// Drain in-flight runs before releasing the cache they may read
	if pool != nil {
		if err := pool.Stop(timeout); err != nil {
			p.logger.Warn("Worker pool stop returned error", "error", err)
		}
	}

	// Note: NATS client handles unsubscription during context cancellation

	if batchCache != nil {
		if err := batchCache.Close(); err != nil {
			p.logger.Warn("Failed to close batch cache", "error", err)
		}
	}

	p.logger.Info("Reasoning processor stopped")
	meshLog.Info("stopped")
	return nil
}

// Run execution functions (runJob, newRunID, engineFor, executeRun,
// finishRun, buildResponse) are in runner.go

// Publishing functions (publishResponse, publishErrorResponse,
// publishInferred) are in publisher.go

// GetRunMetrics returns counters for diagnostics endpoints
func (p *Processor) GetRunMetrics() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	metrics := map[string]any{
		"runs_started":        atomic.LoadInt64(&p.runsStarted),
		"runs_completed":      atomic.LoadInt64(&p.runsCompleted),
		"runs_failed":         atomic.LoadInt64(&p.runsFailed),
		"batches_accumulated": atomic.LoadInt64(&p.batchesAccumulated),
		"triples_inferred":    atomic.LoadInt64(&p.triplesInferred),
		"error_count":         atomic.LoadInt64(&p.errorCount),
	}

	if p.batchCache != nil {
		metrics["active_contexts"] = p.batchCache.Size()
	}
	if p.pool != nil {
		metrics["queue_depth"] = p.pool.Stats().QueueDepth
	}

	return metrics
}

// Register and CreateReasonProcessor are in factory.go
