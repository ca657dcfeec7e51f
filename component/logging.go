package component

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// LogLevel is the severity of a published log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogEntry is the wire form of a component log line. Entries are published
// on "logs.{component}" so operators can follow a processor without tailing
// its stdout. RunID ties entries to a single inference run when set.
type LogEntry struct {
	Timestamp string   `json:"timestamp"` // RFC3339Nano
	Level     LogLevel `json:"level"`
	Component string   `json:"component"`
	RunID     string   `json:"run_id,omitempty"`
	Message   string   `json:"message"`
	Detail    string   `json:"detail,omitempty"` // error detail for ERROR entries
}

// Logger mirrors log lines to NATS alongside the local slog.Logger. A nil
// NATS connection disables publishing; the local logger still receives
// every entry.
type Logger struct {
	componentName string
	runID         string
	nc            *nats.Conn
	logger        *slog.Logger
	enabled       bool
}

// NewLogger builds a logger for the named component. Either nc or logger
// may be nil.
func NewLogger(componentName string, nc *nats.Conn, logger *slog.Logger) *Logger {
	return &Logger{
		componentName: componentName,
		nc:            nc,
		logger:        logger,
		enabled:       nc != nil,
	}
}

// WithRun returns a child logger whose entries carry the given run ID.
func (cl *Logger) WithRun(runID string) *Logger {
	child := *cl
	child.runID = runID
	return &child
}

func (cl *Logger) Debug(msg string) { cl.DebugContext(context.Background(), msg) }
func (cl *Logger) Info(msg string)  { cl.InfoContext(context.Background(), msg) }
func (cl *Logger) Warn(msg string)  { cl.WarnContext(context.Background(), msg) }

func (cl *Logger) Error(msg string, err error) {
	cl.ErrorContext(context.Background(), msg, err)
}

func (cl *Logger) DebugContext(ctx context.Context, msg string) {
	cl.log(ctx, LogLevelDebug, slog.LevelDebug, msg, nil)
}

func (cl *Logger) InfoContext(ctx context.Context, msg string) {
	cl.log(ctx, LogLevelInfo, slog.LevelInfo, msg, nil)
}

func (cl *Logger) WarnContext(ctx context.Context, msg string) {
	cl.log(ctx, LogLevelWarn, slog.LevelWarn, msg, nil)
}

func (cl *Logger) ErrorContext(ctx context.Context, msg string, err error) {
	cl.log(ctx, LogLevelError, slog.LevelError, msg, err)
}

func (cl *Logger) log(ctx context.Context, level LogLevel, slogLevel slog.Level, msg string, err error) {
	detail := ""
	if err != nil {
		detail = fmt.Sprintf("%+v", err)
	}
	cl.publish(ctx, level, msg, detail)

	if cl.logger == nil {
		return
	}
	attrs := []any{"component", cl.componentName}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	cl.logger.Log(ctx, slogLevel, msg, attrs...)
}

// publish sends one entry to NATS. Publish failures are reported locally
// and never propagate: logging must not take a processor down.
func (cl *Logger) publish(ctx context.Context, level LogLevel, message, detail string) {
	if !cl.enabled {
		return
	}

	select {
	case <-ctx.Done():
		return
	default:
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Component: cl.componentName,
		RunID:     cl.runID,
		Message:   message,
		Detail:    detail,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		if cl.logger != nil {
			cl.logger.Error("Failed to marshal log entry", "error", err)
		}
		return
	}

	subject := "logs." + cl.componentName
	if err := cl.nc.Publish(subject, data); err != nil {
		if cl.logger != nil {
			cl.logger.Error("Failed to publish log entry", "error", err, "subject", subject)
		}
	}
}
