package component

import (
	"context"
	"time"
)

// State is a component's position in its lifecycle.
type State int

// Lifecycle states in transition order. StateFailed is reachable from any
// state when a lifecycle operation errors.
const (
	StateCreated State = iota
	StateInitialized
	StateStarted
	StateStopped
	StateFailed
)

var stateNames = [...]string{
	StateCreated:     "created",
	StateInitialized: "initialized",
	StateStarted:     "started",
	StateStopped:     "stopped",
	StateFailed:      "failed",
}

func (cs State) String() string {
	if cs < 0 || int(cs) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[cs]
}

// LifecycleComponent is a Discoverable whose running state the platform
// controls. Initialize allocates without doing I/O, Start receives the
// context the component must honor for cancellation, and Stop blocks up to
// the given timeout for a graceful shutdown.
type LifecycleComponent interface {
	Discoverable
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// ManagedComponent pairs a component instance with the bookkeeping the
// manager needs to run it. The manager owns the child context: it creates
// one per component, passes it to Start, and keeps the cancel func so a
// single instance can be torn down without touching its siblings.
// Components receive the context as a parameter and never store it.
type ManagedComponent struct {
	Component Discoverable
	State     State

	Context context.Context
	Cancel  context.CancelFunc

	// StartOrder preserves startup sequence so shutdown can reverse it.
	StartOrder int

	LastError error
}

// IsLifecycleComponent reports whether comp supports lifecycle management.
func IsLifecycleComponent(comp Discoverable) bool {
	_, ok := comp.(LifecycleComponent)
	return ok
}

// AsLifecycleComponent casts comp to LifecycleComponent when it supports it.
func AsLifecycleComponent(comp Discoverable) (LifecycleComponent, bool) {
	lc, ok := comp.(LifecycleComponent)
	return lc, ok
}
