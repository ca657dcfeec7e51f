package service

import (
	"encoding/json"
	"log/slog"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/config"
	"github.com/c360/semreason/metric"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/types"
)

// Dependencies carries the shared infrastructure handed to every service
// constructor. Services talk to each other over HTTP or NATS, never through
// direct references, so this is the only injection point.
type Dependencies struct {
	NATSClient        *natsclient.Client
	MetricsRegistry   *metric.MetricsRegistry
	Logger            *slog.Logger
	Platform          types.PlatformMeta
	Manager           *config.Manager
	ComponentRegistry *component.Registry
	ServiceManager    *Manager
}

// Constructor builds a service from its raw JSON config block. Each
// constructor parses and validates its own config.
type Constructor func(rawConfig json.RawMessage, deps *Dependencies) (Service, error)
