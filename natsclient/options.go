package natsclient

import (
	"log"
	"time"

	"github.com/c360/semreason/metric"
)

// Logger is the logging interface the client writes through. Printf is
// informational, Errorf is for failures, Debugf is verbose detail.
type Logger interface {
	Printf(format string, v ...any)
	Errorf(format string, v ...any)
	Debugf(format string, v ...any)
}

// defaultLogger routes Printf and Errorf to the standard library logger
// and swallows debug output.
type defaultLogger struct{}

func (l *defaultLogger) Printf(format string, v ...any) { log.Printf("[NATS] "+format, v...) }
func (l *defaultLogger) Errorf(format string, v ...any) { log.Printf("[NATS ERROR] "+format, v...) }
func (l *defaultLogger) Debugf(_ string, _ ...any)      {}

// tlsSettings holds the file paths WithTLS collects; Connect turns them
// into nats.Secure options.
type tlsSettings struct {
	enabled  bool
	certFile string
	keyFile  string
	caFile   string
}

// ClientOption configures a Client during NewClient.
type ClientOption func(*Client) error

// set adapts an infallible field assignment into a ClientOption.
func set(fn func(*Client)) ClientOption {
	return func(c *Client) error {
		fn(c)
		return nil
	}
}

// WithLogger replaces the default logger. A nil logger restores the default.
func WithLogger(logger Logger) ClientOption {
	return set(func(c *Client) {
		if logger == nil {
			logger = &defaultLogger{}
		}
		c.logger = logger
	})
}

// WithName sets the client name reported to the NATS server.
func WithName(name string) ClientOption {
	return set(func(c *Client) { c.clientName = name })
}

// WithMaxReconnects sets the reconnection attempt limit. -1 means
// reconnect forever.
func WithMaxReconnects(n int) ClientOption {
	return set(func(c *Client) { c.maxReconnects = n })
}

// WithReconnectWait sets the wait between reconnection attempts.
func WithReconnectWait(d time.Duration) ClientOption {
	return set(func(c *Client) { c.reconnectWait = d })
}

// WithPingInterval sets how often the client pings the server.
func WithPingInterval(d time.Duration) ClientOption {
	return set(func(c *Client) { c.pingInterval = d })
}

// WithTimeout sets the connection timeout.
func WithTimeout(d time.Duration) ClientOption {
	return set(func(c *Client) { c.timeout = d })
}

// WithDrainTimeout bounds how long Close waits for in-flight messages.
func WithDrainTimeout(d time.Duration) ClientOption {
	return set(func(c *Client) { c.drainTimeout = d })
}

// WithHealthInterval sets the health probe interval. Zero disables the
// probe goroutine entirely.
func WithHealthInterval(d time.Duration) ClientOption {
	return set(func(c *Client) { c.healthInterval = d })
}

// WithCompression enables wire compression.
func WithCompression(enabled bool) ClientOption {
	return set(func(c *Client) { c.compression = enabled })
}

// WithCircuitBreakerThreshold sets how many failures in a round open the
// circuit. Values below 1 fall back to the default of 5.
func WithCircuitBreakerThreshold(threshold int32) ClientOption {
	return set(func(c *Client) {
		if threshold < 1 {
			threshold = 5
		}
		c.circuitThreshold = threshold
	})
}

// WithMaxBackoff caps the circuit breaker backoff. Values below one
// second fall back to the default of one minute.
func WithMaxBackoff(d time.Duration) ClientOption {
	return set(func(c *Client) {
		if d < time.Second {
			d = time.Minute
		}
		c.maxBackoff = d
	})
}

// WithCredentials sets username and password authentication.
func WithCredentials(username, password string) ClientOption {
	return set(func(c *Client) {
		c.username = username
		c.password = password
	})
}

// WithToken sets token authentication.
func WithToken(token string) ClientOption {
	return set(func(c *Client) { c.token = token })
}

// WithTLS enables TLS. Empty paths skip the corresponding certificate;
// passing only caFile gives server verification without a client cert.
func WithTLS(certFile, keyFile, caFile string) ClientOption {
	return set(func(c *Client) {
		c.tls = tlsSettings{enabled: true, certFile: certFile, keyFile: keyFile, caFile: caFile}
	})
}

// WithDisconnectCallback registers a callback for disconnect events,
// invoked in addition to the client's own state handling.
func WithDisconnectCallback(fn func(error)) ClientOption {
	return set(func(c *Client) { c.onDisconnect = fn })
}

// WithReconnectCallback registers a callback for successful reconnects.
func WithReconnectCallback(fn func()) ClientOption {
	return set(func(c *Client) { c.onReconnect = fn })
}

// WithHealthChangeCallback registers a callback for health transitions.
func WithHealthChangeCallback(fn func(healthy bool)) ClientOption {
	return set(func(c *Client) { c.onHealthChange = fn })
}

// WithConnectionLostCallback registers a callback for when the
// connection closes permanently and no further reconnects will happen.
func WithConnectionLostCallback(fn func(error)) ClientOption {
	return set(func(c *Client) { c.onConnectionLost = fn })
}

// WithMetrics enables JetStream metrics collection through the given
// registry. Streams and consumers created through this client are
// tracked; a nil registry leaves metrics disabled.
func WithMetrics(registry *metric.MetricsRegistry) ClientOption {
	return func(c *Client) error {
		if registry == nil {
			return nil
		}
		metrics, err := newJetStreamMetrics(registry)
		if err != nil {
			return err
		}
		c.jsMetrics = metrics
		return nil
	}
}
