package service

import "fmt"

// builtinServices lists the constructors every platform binary carries.
// Registration order is fixed so startup logs stay comparable across runs.
var builtinServices = []struct {
	name string
	ctor Constructor
}{
	{"metrics", NewMetrics},
	{"message-logger", NewMessageLoggerService},
	{"component-manager", NewComponentManager},
}

// RegisterAll installs the built-in service constructors.
func RegisterAll(registry *Registry) error {
	for _, svc := range builtinServices {
		if err := registry.Register(svc.name, svc.ctor); err != nil {
			return fmt.Errorf("register %s: %w", svc.name, err)
		}
	}
	return nil
}
