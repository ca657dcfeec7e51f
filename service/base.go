package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/semreason/config"
	"github.com/c360/semreason/health"
	"github.com/c360/semreason/metric"
	"github.com/c360/semreason/natsclient"
)

// Status is the lifecycle state of a service.
type Status int32

const (
	StatusStopped Status = iota
	StatusStarting
	StatusRunning
	StatusStopping
)

var statusNames = [...]string{"stopped", "starting", "running", "stopping"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Info is a point-in-time snapshot of a service's runtime counters.
type Info struct {
	Name               string        `json:"name"`
	Status             Status        `json:"status"`
	Uptime             time.Duration `json:"uptime"`
	StartTime          time.Time     `json:"start_time"`
	MessagesProcessed  int64         `json:"messages_processed"`
	LastActivity       time.Time     `json:"last_activity"`
	HealthChecks       int64         `json:"health_checks"`
	FailedHealthChecks int64         `json:"failed_health_checks"`
}

// HealthCheckFunc reports nil when the service is healthy.
type HealthCheckFunc func() error

// Option configures a BaseService at construction time.
type Option func(*BaseService)

// BaseService implements the Service lifecycle so concrete services only
// have to add their own behavior. It runs a periodic health check, watches
// the parent context for cancellation, and mirrors status changes into the
// core metrics when a registry is attached.
type BaseService struct {
	name            string
	config          *config.Config
	nats            *natsclient.Client
	metricsRegistry *metric.MetricsRegistry
	logger          *slog.Logger

	status  atomic.Int32
	healthy atomic.Bool

	startTime    atomicTime
	lastActivity atomicTime

	messagesProcessed  atomic.Int64
	healthChecks       atomic.Int64
	failedHealthChecks atomic.Int64

	healthCheckFunc HealthCheckFunc
	healthInterval  time.Duration
	healthTicker    *time.Ticker
	onHealthChange  func(bool)

	done      chan struct{}
	closeDone func()
	waitGroup sync.WaitGroup
	mu        sync.RWMutex
}

// NewBaseServiceWithOptions creates a base service. Without options it gets
// a 30s health interval and the default logger tagged with the service name.
func NewBaseServiceWithOptions(name string, cfg *config.Config, opts ...Option) *BaseService {
	s := &BaseService{
		name:           name,
		config:         cfg,
		healthInterval: 30 * time.Second,
		logger:         slog.Default().With("service", name),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setStatus(StatusStopped)
	return s
}

// WithNATS attaches the NATS client used for the default health check.
func WithNATS(client *natsclient.Client) Option {
	return func(s *BaseService) { s.nats = client }
}

// WithMetrics attaches the registry that receives status gauge updates.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(s *BaseService) { s.metricsRegistry = registry }
}

// WithLogger replaces the default logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *BaseService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthCheck sets a custom health check run before the built-in ones.
func WithHealthCheck(fn HealthCheckFunc) Option {
	return func(s *BaseService) { s.healthCheckFunc = fn }
}

// WithHealthInterval overrides the periodic health check interval. Zero
// disables the monitor.
func WithHealthInterval(interval time.Duration) Option {
	return func(s *BaseService) { s.healthInterval = interval }
}

// OnHealthChange registers a callback fired on healthy/unhealthy flips.
func OnHealthChange(fn func(bool)) Option {
	return func(s *BaseService) { s.onHealthChange = fn }
}

// Name returns the service name.
func (s *BaseService) Name() string { return s.name }

// Status returns the current lifecycle state.
func (s *BaseService) Status() Status { return Status(s.status.Load()) }

// IsHealthy reports the result of the most recent health check.
func (s *BaseService) IsHealthy() bool { return s.healthy.Load() }

// setStatus stores the lifecycle state and mirrors it to the metrics gauge.
func (s *BaseService) setStatus(st Status) {
	s.status.Store(int32(st))
	s.recordStatus(st)
}

func (s *BaseService) recordStatus(st Status) {
	if s.metricsRegistry != nil {
		s.metricsRegistry.CoreMetrics().RecordServiceStatus(s.name, int(st))
	}
}

// Health converts the service state into the platform health model.
func (s *BaseService) Health() health.Status {
	if !s.healthy.Load() {
		message := fmt.Sprintf("Service is unhealthy (failed checks: %d)", s.failedHealthChecks.Load())
		return health.NewUnhealthy(s.name, message)
	}

	switch st := s.Status(); st {
	case StatusRunning:
		return health.NewHealthy(s.name, "Service operating normally")
	case StatusStarting:
		return health.NewDegraded(s.name, "Service is starting")
	case StatusStopping:
		return health.NewDegraded(s.name, "Service is stopping")
	case StatusStopped:
		return health.NewUnhealthy(s.name, "Service is stopped")
	default:
		return health.NewUnhealthy(s.name, fmt.Sprintf("Unknown status: %v", st))
	}
}

// Start begins health monitoring and context supervision. Calling Start on
// a running service is a no-op.
func (s *BaseService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.Status(); st == StatusRunning || st == StatusStarting {
		return nil
	}
	s.setStatus(StatusStarting)

	done := make(chan struct{})
	s.done = done
	s.closeDone = sync.OnceFunc(func() { close(done) })

	now := time.Now()
	s.startTime.Store(now)
	s.lastActivity.Store(now)

	if s.healthInterval > 0 {
		s.healthTicker = time.NewTicker(s.healthInterval)
		s.waitGroup.Add(1)
		go s.healthMonitor(done)

		// First check runs shortly after start so services that spin up
		// goroutines of their own do not report an immediate failure.
		s.waitGroup.Add(1)
		go func() {
			defer s.waitGroup.Done()
			select {
			case <-time.After(200 * time.Millisecond):
				s.performHealthCheck()
			case <-done:
			}
		}()
	}

	s.waitGroup.Add(1)
	go s.contextMonitor(ctx, done)

	s.setStatus(StatusRunning)
	return nil
}

// Stop shuts the service down, waiting up to timeout for its goroutines.
// A zero timeout means 5 seconds. Stopping a stopped service is a no-op.
func (s *BaseService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.Status(); st == StatusStopped || st == StatusStopping {
		return nil
	}
	s.setStatus(StatusStopping)

	if s.closeDone != nil {
		s.closeDone()
	}
	if s.healthTicker != nil {
		s.healthTicker.Stop()
	}

	if timeout == 0 {
		timeout = 5 * time.Second
	}

	finished := make(chan struct{})
	go func() {
		s.waitGroup.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(timeout):
		s.logger.Warn("Timed out waiting for service goroutines", "timeout", timeout)
	}

	s.setStatus(StatusStopped)
	s.healthy.Store(false)
	return nil
}

// SetHealthCheck replaces the custom health check after construction.
func (s *BaseService) SetHealthCheck(fn HealthCheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthCheckFunc = fn
}

// OnHealthChange replaces the health change callback after construction.
func (s *BaseService) OnHealthChange(callback func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHealthChange = callback
}

// RecordActivity counts n processed messages against the service counters.
func (s *BaseService) RecordActivity(n int64) {
	s.messagesProcessed.Add(n)
	s.lastActivity.Store(time.Now())
}

// GetStatus returns a snapshot of the runtime counters.
func (s *BaseService) GetStatus() Info {
	startTime := s.startTime.Load()

	var uptime time.Duration
	if !startTime.IsZero() && s.Status() == StatusRunning {
		uptime = time.Since(startTime)
	}

	return Info{
		Name:               s.name,
		Status:             s.Status(),
		Uptime:             uptime,
		StartTime:          startTime,
		MessagesProcessed:  s.messagesProcessed.Load(),
		LastActivity:       s.lastActivity.Load(),
		HealthChecks:       s.healthChecks.Load(),
		FailedHealthChecks: s.failedHealthChecks.Load(),
	}
}

// RegisterMetrics is a no-op; services with their own metrics override it.
func (s *BaseService) RegisterMetrics(_ metric.MetricsRegistrar) error {
	return nil
}

func (s *BaseService) healthMonitor(done <-chan struct{}) {
	defer s.waitGroup.Done()

	for {
		select {
		case <-done:
			return
		case <-s.healthTicker.C:
			s.performHealthCheck()
		}
	}
}

// performHealthCheck runs the custom check first, then the built-in NATS
// connectivity check, and fires the change callback on transitions.
func (s *BaseService) performHealthCheck() {
	s.healthChecks.Add(1)

	var err error
	if s.healthCheckFunc != nil {
		err = s.healthCheckFunc()
	}
	if err == nil && s.nats != nil && !s.nats.IsHealthy() {
		err = natsclient.ErrNotConnected
	}

	if err != nil {
		s.failedHealthChecks.Add(1)
	}

	wasHealthy := s.healthy.Load()
	isHealthy := err == nil
	s.healthy.Store(isHealthy)

	if s.metricsRegistry != nil {
		s.metricsRegistry.CoreMetrics().RecordHealthStatus(s.name, isHealthy)
	}

	if wasHealthy != isHealthy && s.onHealthChange != nil {
		go s.onHealthChange(isHealthy)
	}
}

func (s *BaseService) contextMonitor(ctx context.Context, done <-chan struct{}) {
	defer s.waitGroup.Done()

	select {
	case <-ctx.Done():
		s.shutdownOnCancel()
	case <-done:
	}
}

// shutdownOnCancel moves a running service straight to stopped when the
// parent context is canceled. The CAS settles the race against a concurrent
// Stop: whoever leaves StatusRunning first finishes the shutdown.
func (s *BaseService) shutdownOnCancel() {
	if !s.status.CompareAndSwap(int32(StatusRunning), int32(StatusStopping)) {
		return
	}
	s.recordStatus(StatusStopping)

	if s.healthTicker != nil {
		s.healthTicker.Stop()
	}
	if s.closeDone != nil {
		s.closeDone()
	}

	s.setStatus(StatusStopped)
	s.healthy.Store(false)
}

// Service is the lifecycle contract the manager drives.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
	Status() Status
	IsHealthy() bool
	GetStatus() Info
	Health() health.Status
	RegisterMetrics(registrar metric.MetricsRegistrar) error
}

// atomicTime stores a time.Time without a lock. The zero value reads as the
// zero time.
type atomicTime struct {
	ns atomic.Int64
}

func (t *atomicTime) Store(v time.Time) {
	if v.IsZero() {
		t.ns.Store(0)
		return
	}
	t.ns.Store(v.UnixNano())
}

func (t *atomicTime) Load() time.Time {
	ns := t.ns.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
