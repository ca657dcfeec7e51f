// Package componentregistry provides component registration for the
// SemReason framework. Components register factories here so the service
// layer can create them from configuration.
package componentregistry

import (
	"errors"

	"github.com/c360/semreason/component"
	pkgerrors "github.com/c360/semreason/errors"
	"github.com/c360/semreason/processor/reason"
)

// Register registers all SemReason framework components with the provided
// registry:
//
//   - Reason processor (forward-chaining inference over triple streams)
//
// Domain-specific ingestion components (document parsers, registry readers)
// live in separate modules and register themselves on top of this set.
func Register(registry *component.Registry) error {
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ComponentRegistry", "Register", "registry validation")
	}

	if err := reason.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "Reason processor component registration")
	}

	return nil
}
