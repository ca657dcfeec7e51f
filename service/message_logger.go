package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/message"
	"github.com/c360/semreason/metric"
	"github.com/c360/semreason/natsclient"
)

// MessageLoggerConfig configures the message observation service.
type MessageLoggerConfig struct {
	// MonitorSubjects lists the NATS subjects to observe.
	MonitorSubjects []string `json:"monitor_subjects"`

	// MaxEntries bounds the in-memory ring buffer.
	MaxEntries int `json:"max_entries"`

	// OutputToStdout echoes observed messages to stdout.
	OutputToStdout bool `json:"output_to_stdout"`

	// LogLevel is the threshold for log output (DEBUG, INFO, WARN, ERROR).
	LogLevel string `json:"log_level"`
}

// Validate bounds the buffer size. Empty subjects and log level are fine;
// they get defaults.
func (c MessageLoggerConfig) Validate() error {
	if c.MaxEntries < 0 {
		return errors.New("max_entries cannot be negative")
	}
	if c.MaxEntries > 100000 {
		return errors.New("max_entries cannot exceed 100000")
	}
	return nil
}

// DefaultMessageLoggerConfig returns the stock configuration.
func DefaultMessageLoggerConfig() MessageLoggerConfig {
	return MessageLoggerConfig{
		MonitorSubjects: []string{"reason.>", "events.>"},
		MaxEntries:      10000,
		OutputToStdout:  false,
		LogLevel:        "INFO",
	}
}

// MessageLogEntry is one observed message.
type MessageLogEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Subject     string          `json:"subject"`
	MessageType string          `json:"message_type,omitempty"`
	MessageID   string          `json:"message_id,omitempty"`
	Summary     string          `json:"summary"`
	RawData     json.RawMessage `json:"raw_data,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// MessageLogger observes NATS traffic on configured subjects and keeps the
// most recent messages in a ring buffer for the HTTP query endpoints.
//
// Locking: stateMu guards config, running, and subscriptions; entriesMu
// guards the ring buffer. stateMu is always taken before entriesMu.
type MessageLogger struct {
	*BaseService

	config MessageLoggerConfig

	natsClient    *natsclient.Client
	subscriptions map[string]bool

	entries      []MessageLogEntry
	entriesIndex int
	entriesMu    sync.RWMutex

	stats struct {
		totalMessages   atomic.Int64
		validMessages   atomic.Int64
		invalidMessages atomic.Int64
		startTime       time.Time
		lastMessageTime atomicTime
	}

	stateMu sync.RWMutex
	running bool
}

// NewMessageLoggerService is the registry constructor for MessageLogger.
func NewMessageLoggerService(rawConfig json.RawMessage, deps *Dependencies) (Service, error) {
	var cfg MessageLoggerConfig
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("parse message-logger config: %w", err)
		}
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 10000
	}
	if len(cfg.MonitorSubjects) == 0 {
		cfg.MonitorSubjects = []string{"reason.>", "events.>"}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate message-logger config: %w", err)
	}

	if deps == nil || deps.NATSClient == nil {
		return nil, errors.New("message-logger requires NATS client")
	}

	var opts []Option
	if deps.Logger != nil {
		opts = append(opts, WithLogger(deps.Logger))
	}
	if deps.MetricsRegistry != nil {
		opts = append(opts, WithMetrics(deps.MetricsRegistry))
	}

	return NewMessageLogger(&cfg, deps.NATSClient, opts...)
}

// NewMessageLogger builds a MessageLogger. A nil config means defaults.
func NewMessageLogger(
	loggerConfig *MessageLoggerConfig,
	natsClient *natsclient.Client,
	opts ...Option,
) (*MessageLogger, error) {
	if loggerConfig == nil {
		defaults := DefaultMessageLoggerConfig()
		loggerConfig = &defaults
	}

	maxEntries := loggerConfig.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	ml := &MessageLogger{
		BaseService:   NewBaseServiceWithOptions("message-logger", nil, opts...),
		config:        *loggerConfig,
		natsClient:    natsClient,
		subscriptions: make(map[string]bool),
		entries:       make([]MessageLogEntry, maxEntries),
	}
	ml.stats.startTime = time.Now()
	ml.stats.lastMessageTime.Store(time.Now())

	return ml, nil
}

// Start subscribes to the configured subjects and begins recording.
func (ml *MessageLogger) Start(ctx context.Context) error {
	if err := ml.BaseService.Start(ctx); err != nil {
		return err
	}

	ml.stateMu.Lock()
	defer ml.stateMu.Unlock()

	if ml.running {
		return errors.New("message logger already running")
	}
	ml.running = true

	ml.subscribeAll(ctx)

	ml.logger.Info("MessageLogger started",
		"monitored_subjects", len(ml.subscriptions),
		"max_entries", ml.config.MaxEntries,
		"output_to_stdout", ml.config.OutputToStdout)
	return nil
}

// Stop drops the subscription bookkeeping and stops the base lifecycle.
// Stopping an already stopped logger is a no-op.
func (ml *MessageLogger) Stop(timeout time.Duration) error {
	ml.stateMu.Lock()
	if !ml.running {
		ml.stateMu.Unlock()
		return nil
	}
	ml.running = false
	// The NATS client owns the subscriptions; they go away with the
	// connection.
	ml.subscriptions = make(map[string]bool)
	ml.stateMu.Unlock()

	ml.logger.Info("MessageLogger stopped")
	return ml.BaseService.Stop(timeout)
}

// subscribeAll subscribes to every configured subject, skipping failures.
// Caller holds stateMu.
func (ml *MessageLogger) subscribeAll(ctx context.Context) {
	for _, subject := range ml.config.MonitorSubjects {
		err := ml.natsClient.Subscribe(ctx, subject, func(msgCtx context.Context, data []byte) {
			ml.handleMessage(msgCtx, subject, data)
		})
		if err != nil {
			ml.logger.Error("Failed to subscribe to subject",
				"subject", subject,
				"error", err)
			continue
		}
		ml.subscriptions[subject] = true
		ml.logger.Info("Subscribed to subject", "subject", subject)
	}
}

func (ml *MessageLogger) handleMessage(ctx context.Context, subject string, data []byte) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	ml.stats.totalMessages.Add(1)
	ml.stats.lastMessageTime.Store(time.Now())
	ml.RecordActivity(1)

	var core *metric.Metrics
	if ml.metricsRegistry != nil {
		core = ml.metricsRegistry.CoreMetrics()
	}

	var msg message.BaseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ml.stats.invalidMessages.Add(1)
		if core != nil {
			core.RecordMessageProcessed(ml.Name(), "unknown", "invalid")
		}
		ml.logger.Debug("Failed to parse message",
			"subject", subject,
			"error", err,
			"data_len", len(data))
		return
	}
	ml.stats.validMessages.Add(1)
	if core != nil {
		core.RecordMessageReceived(ml.Name(), msg.Type().String())
		core.RecordMessageProcessed(ml.Name(), msg.Type().String(), "logged")
	}

	entry := MessageLogEntry{
		Timestamp:   time.Now(),
		Subject:     subject,
		MessageType: msg.Type().String(),
		Summary:     summarize(&msg),
		RawData:     json.RawMessage(data),
	}
	ml.storeEntry(entry)

	ml.stateMu.RLock()
	toStdout := ml.config.OutputToStdout
	ml.stateMu.RUnlock()
	if toStdout {
		fmt.Printf("[%s] %s: %s\n",
			entry.Timestamp.Format("15:04:05.000"),
			entry.Subject,
			entry.Summary)
	}
}

func summarize(msg *message.BaseMessage) string {
	summary := fmt.Sprintf("Type: %s", msg.Type())
	if payload := msg.Payload(); payload != nil {
		summary += fmt.Sprintf(", Payload: %T", payload)
	}
	return summary
}

func (ml *MessageLogger) storeEntry(entry MessageLogEntry) {
	ml.entriesMu.Lock()
	defer ml.entriesMu.Unlock()

	ml.entries[ml.entriesIndex] = entry
	ml.entriesIndex = (ml.entriesIndex + 1) % len(ml.entries)
}

// GetMessages returns all recorded entries, newest first.
func (ml *MessageLogger) GetMessages() []MessageLogEntry {
	return ml.GetLogEntries(0)
}

// GetLogEntries returns up to limit entries, newest first. A limit of zero
// or less means all.
func (ml *MessageLogger) GetLogEntries(limit int) []MessageLogEntry {
	ml.entriesMu.RLock()
	defer ml.entriesMu.RUnlock()

	return ml.snapshotLocked(limit)
}

// snapshotLocked walks the ring backwards from the most recent entry,
// skipping unused slots. Caller holds entriesMu.
func (ml *MessageLogger) snapshotLocked(limit int) []MessageLogEntry {
	n := len(ml.entries)
	if n == 0 {
		return nil
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]MessageLogEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := ((ml.entriesIndex-i)%n + n) % n
		if entry := ml.entries[idx]; !entry.Timestamp.IsZero() {
			result = append(result, entry)
		}
	}
	return result
}

// GetStatistics reports message counters for the stats endpoint.
func (ml *MessageLogger) GetStatistics() map[string]any {
	ml.stateMu.RLock()
	subjects := ml.config.MonitorSubjects
	maxEntries := ml.config.MaxEntries
	ml.stateMu.RUnlock()

	return map[string]any{
		"total_messages":     ml.stats.totalMessages.Load(),
		"valid_messages":     ml.stats.validMessages.Load(),
		"invalid_messages":   ml.stats.invalidMessages.Load(),
		"start_time":         ml.stats.startTime,
		"last_message_time":  ml.stats.lastMessageTime.Load(),
		"uptime_seconds":     time.Since(ml.stats.startTime).Seconds(),
		"monitored_subjects": subjects,
		"max_entries":        maxEntries,
	}
}

// ConfigSchema describes the message logger configuration.
func (ml *MessageLogger) ConfigSchema() ConfigSchema {
	return NewConfigSchema(map[string]PropertySchema{
		"enabled": {
			PropertySchema: component.PropertySchema{
				Type:        "bool",
				Description: "Enable or disable message logging",
				Default:     false,
			},
			Runtime:  true,
			Category: "lifecycle",
		},
		"monitor_subjects": {
			PropertySchema: component.PropertySchema{
				Type:        "array",
				Description: "NATS subjects to monitor for messages",
				Default:     []string{"reason.>", "events.>"},
			},
			Runtime:  true,
			Category: "monitoring",
		},
		"max_entries": {
			PropertySchema: component.PropertySchema{
				Type:        "integer",
				Description: "Maximum entries to keep in memory",
				Default:     10000,
				Minimum:     ptr(1000),
				Maximum:     ptr(100000),
			},
			Runtime:  true,
			Category: "storage",
		},
		"output_to_stdout": {
			PropertySchema: component.PropertySchema{
				Type:        "bool",
				Description: "Whether to output messages to stdout",
				Default:     false,
			},
			Runtime:  true,
			Category: "output",
		},
	}, nil)
}

// ValidateConfigUpdate type-checks proposed runtime changes.
func (ml *MessageLogger) ValidateConfigUpdate(changes map[string]any) error {
	for key, value := range changes {
		switch key {
		case "enabled":
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("enabled must be boolean, got %T", value)
			}

		case "monitor_subjects":
			subjects, ok := value.([]any)
			if !ok {
				return fmt.Errorf("monitor_subjects must be array, got %T", value)
			}
			if len(subjects) == 0 {
				return errors.New("monitor_subjects cannot be empty")
			}
			for i, s := range subjects {
				if _, ok := s.(string); !ok {
					return fmt.Errorf("monitor_subjects[%d] must be string, got %T", i, s)
				}
			}

		case "max_entries":
			entries, err := intFromJSON(value)
			if err != nil {
				return fmt.Errorf("max_entries must be number, got %T", value)
			}
			if entries < 1000 || entries > 100000 {
				return fmt.Errorf("max_entries must be between 1000 and 100000, got %d", entries)
			}

		case "output_to_stdout":
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("output_to_stdout must be boolean, got %T", value)
			}

		default:
			return fmt.Errorf("unknown configuration property: %s", key)
		}
	}
	return nil
}

// ApplyConfigUpdate applies previously validated runtime changes.
func (ml *MessageLogger) ApplyConfigUpdate(changes map[string]any) error {
	ml.stateMu.Lock()
	defer ml.stateMu.Unlock()

	for key, value := range changes {
		switch key {
		case "enabled":
			// The manager starts and stops the service on this flag.
			ml.logger.Info("MessageLogger enabled state changed", "enabled", value.(bool))

		case "monitor_subjects":
			raw := value.([]any)
			subjects := make([]string, 0, len(raw))
			for _, s := range raw {
				subjects = append(subjects, s.(string))
			}
			ml.config.MonitorSubjects = subjects
			if ml.running {
				ml.subscriptions = make(map[string]bool)
				ml.subscribeAll(context.Background())
			}

		case "max_entries":
			newMax, _ := intFromJSON(value)
			ml.resizeEntries(newMax)
			ml.config.MaxEntries = newMax

		case "output_to_stdout":
			ml.config.OutputToStdout = value.(bool)
		}
	}
	return nil
}

// GetRuntimeConfig reports the effective configuration.
func (ml *MessageLogger) GetRuntimeConfig() map[string]any {
	ml.stateMu.RLock()
	defer ml.stateMu.RUnlock()

	return map[string]any{
		"enabled":          true,
		"monitor_subjects": ml.config.MonitorSubjects,
		"max_entries":      ml.config.MaxEntries,
		"output_to_stdout": ml.config.OutputToStdout,
	}
}

// resizeEntries rebuilds the ring buffer, preserving the most recent
// entries in chronological order.
func (ml *MessageLogger) resizeEntries(maxEntries int) {
	ml.entriesMu.Lock()
	defer ml.entriesMu.Unlock()

	if maxEntries == len(ml.entries) {
		return
	}

	recent := ml.snapshotLocked(maxEntries)
	slices.Reverse(recent) // oldest first, so the ring index stays coherent

	fresh := make([]MessageLogEntry, maxEntries)
	kept := copy(fresh, recent)

	ml.entries = fresh
	ml.entriesIndex = kept % maxEntries
}

// intFromJSON accepts the two numeric shapes config updates arrive in.
func intFromJSON(value any) (int, error) {
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("not a number: %T", value)
	}
}
