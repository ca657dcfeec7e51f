package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps service names to their constructors. Registration happens
// once at startup; lookups may come from any goroutine afterwards.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewServiceRegistry returns an empty registry.
func NewServiceRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under the given name. Names are unique;
// registering a name twice is an error.
func (r *Registry) Register(name string, constructor Constructor) error {
	if name == "" {
		return errors.New("service name cannot be empty")
	}
	if constructor == nil {
		return errors.New("constructor cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}
	r.constructors[name] = constructor
	return nil
}

// Constructor looks up the constructor registered under name.
func (r *Registry) Constructor(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.constructors[name]
	return c, ok
}

// Services returns the registered service names, sorted.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.constructors))
}

// Constructors returns a snapshot of the registration table.
func (r *Registry) Constructors() map[string]Constructor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.constructors)
}
