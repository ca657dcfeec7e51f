package reason

import (
	"encoding/json"
	"fmt"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/errors"
)

// Register registers the reasoning processor component with the given registry
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "reason-processor",
		Factory:     CreateReasonProcessor,
		Schema:      schema,
		Type:        "processor",
		Protocol:    "reason",
		Domain:      "semantic",
		Description: "Forward-chaining inference processor",
		Version:     "1.0.0",
	})
}

// CreateReasonProcessor builds a reasoning processor from raw JSON config
// and shared dependencies. Defaults fill anything the config leaves unset.
func CreateReasonProcessor(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	if deps.NATSClient == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("NATS client is required"),
			"reason-processor-factory", "create", "NATS client validation")
	}

	cfg := DefaultConfig()
	if len(rawConfig) > 0 {
		var user Config
		if err := json.Unmarshal(rawConfig, &user); err != nil {
			return nil, errors.WrapInvalid(err, "reason-processor-factory", "create", "parse config")
		}
		cfg.applyOverrides(user)
	}

	processor := NewProcessorWithMetrics(deps.NATSClient, &cfg, deps.MetricsRegistry)
	processor.logger = deps.GetLoggerWithComponent("reason-processor")

	return processor, nil
}
