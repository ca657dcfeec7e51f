package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/semreason/errors"
)

// ConnectionStatus represents the state of the NATS connection
type ConnectionStatus int

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusCircuitOpen
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// Well-known connection errors
var (
	ErrNotConnected      = stderrors.New("not connected to NATS")
	ErrCircuitOpen       = stderrors.New("circuit breaker is open")
	ErrConnectionTimeout = stderrors.New("connection timeout")
)

// Status holds a point-in-time snapshot of the connection state
type Status struct {
	Status          ConnectionStatus
	FailureCount    int32
	LastFailureTime time.Time
	Reconnects      int32
	RTT             time.Duration
}

// Client manages a NATS connection with circuit breaker protection.
// All methods are safe for concurrent use.
type Client struct {
	url    string
	logger Logger

	status  atomic.Value // ConnectionStatus
	breaker *breaker
	closed  atomic.Bool
	closeMu sync.Mutex // Close runs its teardown exactly once

	mu   sync.RWMutex
	conn *nats.Conn
	js   jetstream.JetStream
	subs []*nats.Subscription

	consumersMu sync.RWMutex
	consumers   map[string]jetstream.ConsumeContext

	// dial configuration
	maxReconnects int
	reconnectWait time.Duration
	pingInterval  time.Duration
	timeout       time.Duration
	drainTimeout  time.Duration
	clientName    string
	compression   bool

	// circuit breaker configuration, consumed when the breaker is built
	circuitThreshold int32
	maxBackoff       time.Duration

	// credentials, cleared from memory on Close
	username string
	password string
	token    string

	tls tlsSettings

	// callbacks
	onDisconnect     func(error)
	onReconnect      func()
	onHealthChange   func(bool)
	onConnectionLost func(error)

	// health monitoring
	healthInterval time.Duration
	healthTicker   *time.Ticker
	healthDone     chan struct{}

	// JetStream metrics
	jsMetrics       *jetstreamMetrics
	metricsInterval time.Duration
	metricsCancel   context.CancelFunc
}

// NewClient creates a NATS client for the given server URL. The client
// does not connect until Connect is called.
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:              url,
		logger:           &defaultLogger{},
		maxReconnects:    -1, // reconnect forever
		reconnectWait:    2 * time.Second,
		pingInterval:     30 * time.Second,
		healthInterval:   10 * time.Second,
		circuitThreshold: 5,
		maxBackoff:       time.Minute,
		timeout:          5 * time.Second,
		drainTimeout:     30 * time.Second,
		metricsInterval:  30 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}

	// Options may have adjusted the threshold or cap, so the breaker is
	// built after they run.
	c.breaker = newBreaker(c.circuitThreshold, c.maxBackoff)
	c.status.Store(StatusDisconnected)

	c.logger.Debugf("Created NATS client for %s", url)

	return c, nil
}

// URL returns the NATS server URL
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status
func (c *Client) Status() ConnectionStatus {
	val := c.status.Load()
	if val == nil {
		return StatusDisconnected
	}
	return val.(ConnectionStatus)
}

func (c *Client) setStatus(status ConnectionStatus) {
	c.status.Store(status)
}

// IsHealthy reports whether the connection is established and usable
func (c *Client) IsHealthy() bool {
	return c.Status() == StatusConnected
}

// GetConnection returns the underlying NATS connection
func (c *Client) GetConnection() *nats.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// SetConnection injects a NATS connection directly. Intended for tests.
func (c *Client) SetConnection(conn *nats.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	if conn != nil && conn.IsConnected() {
		c.setStatus(StatusConnected)
	}
}

// Failures returns the failure count since the circuit last reset
func (c *Client) Failures() int32 {
	return c.breaker.failures()
}

// Backoff returns the current circuit breaker backoff duration
func (c *Client) Backoff() time.Duration {
	return c.breaker.wait()
}

// recordFailure feeds the breaker and opens the circuit when a round of
// failures crosses the threshold.
func (c *Client) recordFailure() {
	if !c.breaker.record() {
		c.logger.Debugf("Recorded failure %d", c.breaker.failures())
		return
	}

	cur := c.Status()
	if cur != StatusCircuitOpen {
		// Only one goroutine wins the transition and schedules the probe.
		if c.status.CompareAndSwap(cur, StatusCircuitOpen) {
			wait := c.breaker.grow()
			c.logger.Printf("Circuit breaker opened after %d failures, backing off for %v",
				c.breaker.threshold, wait)
			time.AfterFunc(wait, c.probeCircuit)
		}
		return
	}

	// Circuit already open and failures keep coming: stretch the backoff.
	c.breaker.grow()
	c.logger.Printf("Circuit breaker still open, increased backoff to %v", c.breaker.wait())
}

// resetCircuit clears breaker state after a successful operation
func (c *Client) resetCircuit() {
	c.breaker.reset()

	// Leave a live connection's status alone
	if c.Status() == StatusCircuitOpen {
		c.setStatus(StatusDisconnected)
	}
}

// probeCircuit fires after the backoff elapses and lets connection
// attempts through again.
func (c *Client) probeCircuit() {
	if c.Status() == StatusCircuitOpen {
		c.logger.Debugf("Circuit breaker backoff elapsed, allowing connection attempts")
		c.setStatus(StatusDisconnected)
	}
}

// WaitForConnection blocks until the connection is healthy or the
// context expires.
func (c *Client) WaitForConnection(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrConnectionTimeout, ctx.Err())
		case <-ticker.C:
			if c.IsHealthy() {
				return nil
			}
		}
	}
}

// MaxReconnects returns the configured reconnection attempt limit
func (c *Client) MaxReconnects() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxReconnects
}

// ReconnectWait returns the configured wait between reconnection attempts
func (c *Client) ReconnectWait() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reconnectWait
}

// PingInterval returns the configured server ping interval
func (c *Client) PingInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pingInterval
}

// ConnectionOptions returns the nats.Option set the client dials with
func (c *Client) ConnectionOptions() []nats.Option {
	return c.dialOptions()
}

func (c *Client) dialOptions() []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(c.maxReconnects),
		nats.ReconnectWait(c.reconnectWait),
		nats.PingInterval(c.pingInterval),
		nats.Timeout(c.timeout),
		nats.DrainTimeout(c.drainTimeout),
		nats.DisconnectErrHandler(c.handleDisconnect),
		nats.ReconnectHandler(c.handleReconnect),
		nats.ClosedHandler(c.handleClosed),
		nats.ErrorHandler(c.handleError),
	}

	if c.username != "" && c.password != "" {
		opts = append(opts, nats.UserInfo(c.username, c.password))
	}
	if c.token != "" {
		opts = append(opts, nats.Token(c.token))
	}

	if c.tls.enabled {
		if c.tls.certFile != "" && c.tls.keyFile != "" {
			opts = append(opts, nats.ClientCert(c.tls.certFile, c.tls.keyFile))
		}
		if c.tls.caFile != "" {
			opts = append(opts, nats.RootCAs(c.tls.caFile))
		}
	}

	if c.clientName != "" {
		opts = append(opts, nats.Name(c.clientName))
	}
	if c.compression {
		opts = append(opts, nats.Compression(true))
	}

	return opts
}

// GetStatus returns a snapshot of connection health and failure counters
func (c *Client) GetStatus() *Status {
	status := &Status{
		Status:          c.Status(),
		FailureCount:    c.breaker.failures(),
		LastFailureTime: c.breaker.lastFailure(),
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn != nil && conn.IsConnected() {
		if rtt, err := conn.RTT(); err == nil {
			status.RTT = rtt
		}
	}

	return status
}

// Connect establishes the connection to the NATS server. It fails fast
// with ErrCircuitOpen while the circuit breaker is open.
func (c *Client) Connect(ctx context.Context) error {
	if c.Status() == StatusCircuitOpen {
		c.logger.Debugf("Circuit breaker is open, skipping connection attempt")
		return ErrCircuitOpen
	}

	c.setStatus(StatusConnecting)
	c.logger.Printf("Connecting to NATS at %s", c.url)

	// nats.Connect has its own timeout but no context support, so the
	// dial runs in a goroutine and the select honors cancellation.
	dialDone := make(chan error, 1)
	go func() {
		conn, err := nats.Connect(c.url, c.dialOptions()...)
		if err != nil {
			dialDone <- err
			return
		}

		js, jsErr := jetstream.New(conn)
		if jsErr != nil {
			c.logger.Errorf("JetStream init failed: %v", jsErr)
		}

		c.mu.Lock()
		c.conn = conn
		if jsErr == nil {
			c.js = js
		}
		c.mu.Unlock()

		dialDone <- nil
	}()

	select {
	case err := <-dialDone:
		if err != nil {
			c.connectFailed()

			if c.Status() == StatusCircuitOpen {
				return ErrCircuitOpen
			}
			return errors.WrapTransient(err, "Client", "Connect", "establish connection")
		}
	case <-ctx.Done():
		c.connectFailed()
		return errors.WrapTransient(ctx.Err(), "Client", "Connect", "connection cancelled")
	}

	c.setStatus(StatusConnected)
	c.resetCircuit()

	c.logger.Printf("Successfully connected to NATS at %s", c.url)

	if c.healthInterval > 0 {
		c.logger.Debugf("Starting health monitoring with interval %v", c.healthInterval)
		c.startHealthMonitoring()
	}

	if c.jsMetrics != nil && c.metricsInterval > 0 {
		c.logger.Debugf("Starting JetStream metrics polling with interval %v", c.metricsInterval)
		c.metricsCancel = c.jsMetrics.startPoller(context.Background(), c.metricsInterval)
	}

	if c.onHealthChange != nil {
		c.onHealthChange(true)
	}

	return nil
}

// connectFailed records a dial failure without clobbering a circuit
// that opened as a result of it.
func (c *Client) connectFailed() {
	c.recordFailure()
	if c.Status() != StatusCircuitOpen {
		c.setStatus(StatusDisconnected)
	}
}

// Close drains and closes the connection, stopping all consumers and
// subscriptions. Subsequent calls are no-ops.
func (c *Client) Close(ctx context.Context) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return nil
	}
	c.closed.Store(true)

	// Health monitoring holds the main mutex, so stop it first
	c.stopHealthMonitoring()

	if c.metricsCancel != nil {
		c.metricsCancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.consumersMu.Lock()
	for name, consumer := range c.consumers {
		consumer.Stop()
		c.logger.Debugf("Stopped consumer: %s", name)
	}
	c.consumers = nil
	c.consumersMu.Unlock()

	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			errs = append(errs, errors.Wrap(err, "Client", "Close", "unsubscribe"))
			c.logger.Errorf("Failed to unsubscribe: %v", err)
		}
	}
	c.subs = nil

	if c.conn != nil {
		if err := c.drainConn(ctx); err != nil {
			errs = append(errs, err)
		}
		c.conn.Close()
		c.conn = nil
	}

	// Credentials have no business staying in memory after close
	c.username = ""
	c.password = ""
	c.token = ""

	c.setStatus(StatusDisconnected)

	return stderrors.Join(errs...)
}

// drainConn drains the connection, bounded by the configured drain
// timeout or the context deadline, whichever is shorter.
func (c *Client) drainConn(ctx context.Context) error {
	drainTimeout := c.drainTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < drainTimeout {
			drainTimeout = remaining
		}
	}

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- c.conn.Drain()
	}()

	select {
	case err := <-drainDone:
		if err != nil {
			c.logger.Errorf("Drain error: %v", err)
			return errors.Wrap(err, "Client", "Close", "drain connection")
		}
		return nil
	case <-time.After(drainTimeout):
		c.logger.Errorf("Drain timeout after %v, force closing", drainTimeout)
		return errors.WrapTransient(
			fmt.Errorf("drain timeout after %v", drainTimeout),
			"Client", "Close", "drain timeout")
	case <-ctx.Done():
		c.logger.Errorf("Context cancelled during drain, force closing")
		return errors.Wrap(ctx.Err(), "Client", "Close", "context cancelled during drain")
	}
}

// RTT returns the measured round-trip time to the NATS server
func (c *Client) RTT() (time.Duration, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return 0, ErrNotConnected
	}

	return conn.RTT()
}

// Subscribe subscribes to a subject. Each handler invocation receives a
// context derived from the parent with a 30-second processing timeout.
func (c *Client) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || !c.conn.IsConnected() {
		return ErrNotConnected
	}

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		msgCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		handler(msgCtx, msg.Data)
	})
	if err != nil {
		return err
	}

	c.subs = append(c.subs, sub)
	return nil
}

// Publish publishes a message to a subject
func (c *Client) Publish(_ context.Context, subject string, data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return ErrNotConnected
	}

	return conn.Publish(subject, data)
}

// OnHealthChange sets a callback for health status changes
func (c *Client) OnHealthChange(fn func(bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHealthChange = fn
}

// WithHealthCheck enables health monitoring with the given interval
func (c *Client) WithHealthCheck(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthInterval = interval
}

// Connection event handlers registered with the NATS client.

func (c *Client) handleDisconnect(_ *nats.Conn, err error) {
	c.setStatus(StatusReconnecting)

	c.mu.RLock()
	onDisconnect := c.onDisconnect
	onHealthChange := c.onHealthChange
	c.mu.RUnlock()

	if onDisconnect != nil {
		go onDisconnect(err)
	}
	if onHealthChange != nil {
		go onHealthChange(false)
	}
}

func (c *Client) handleReconnect(_ *nats.Conn) {
	c.setStatus(StatusConnected)
	c.resetCircuit()

	c.mu.RLock()
	onReconnect := c.onReconnect
	onHealthChange := c.onHealthChange
	c.mu.RUnlock()

	if onReconnect != nil {
		go onReconnect()
	}
	if onHealthChange != nil {
		go onHealthChange(true)
	}
}

// handleClosed fires when NATS gives up for good, meaning reconnect
// attempts are exhausted or the connection was closed deliberately.
func (c *Client) handleClosed(conn *nats.Conn) {
	c.setStatus(StatusDisconnected)

	c.mu.RLock()
	onConnectionLost := c.onConnectionLost
	onHealthChange := c.onHealthChange
	c.mu.RUnlock()

	if onConnectionLost != nil {
		go onConnectionLost(conn.LastError())
	}
	if onHealthChange != nil {
		go onHealthChange(false)
	}
}

func (c *Client) handleError(_ *nats.Conn, _ *nats.Subscription, err error) {
	// Async errors include subscription slow-consumer cases, which are
	// not connection failures, so the breaker is left alone.
	c.logger.Errorf("NATS error: %v", err)
}

// startHealthMonitoring launches the periodic health probe goroutine
func (c *Client) startHealthMonitoring() {
	c.stopHealthMonitoring()

	c.mu.Lock()
	c.healthTicker = time.NewTicker(c.healthInterval)
	c.healthDone = make(chan struct{})
	ticker, done := c.healthTicker, c.healthDone
	c.mu.Unlock()

	go c.healthLoop(ticker, done)
}

func (c *Client) healthLoop(ticker *time.Ticker, done chan struct{}) {
	defer ticker.Stop()
	lastHealthy := c.IsHealthy()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				continue
			}

			healthy := conn.IsConnected()
			if _, err := conn.RTT(); err != nil {
				healthy = false
			}

			switch {
			case healthy && c.Status() != StatusConnected:
				c.setStatus(StatusConnected)
			case !healthy && c.Status() == StatusConnected:
				c.setStatus(StatusReconnecting)
			}

			if healthy != lastHealthy && c.onHealthChange != nil {
				c.onHealthChange(healthy)
			}
			lastHealthy = healthy
		}
	}
}

func (c *Client) stopHealthMonitoring() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.healthTicker != nil {
		c.healthTicker.Stop()
		c.healthTicker = nil
	}
	if c.healthDone != nil {
		close(c.healthDone)
		c.healthDone = nil
	}
}
