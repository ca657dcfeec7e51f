package component

import (
	"log/slog"

	"github.com/c360/semreason/metric"
	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/pkg/security"
	"github.com/c360/semreason/types"
)

// PlatformMeta aliases the types package definition so components can name
// platform identity without importing types directly.
type PlatformMeta = types.PlatformMeta

// Dependencies carries everything a factory needs to build a component.
// Only NATSClient is mandatory; factories fall back to defaults for the
// rest.
type Dependencies struct {
	NATSClient      *natsclient.Client
	MetricsRegistry *metric.MetricsRegistry
	Logger          *slog.Logger
	Platform        PlatformMeta
	Security        security.Config
}

// GetLogger returns the configured logger, or slog.Default when none was
// injected.
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns the logger scoped to a component name.
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}
