package health

import (
	"sync"
	"time"
)

// Monitor is a thread-safe registry of the last reported status per
// component. The service manager records each health probe into one so
// the most recent system view survives between probes.
type Monitor struct {
	mu      sync.RWMutex
	reports map[string]Status
}

// NewMonitor returns an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{reports: make(map[string]Status)}
}

// Update records the latest status for name, stamping the component name
// and a timestamp if the caller left them unset.
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.reports[name] = status
	m.mu.Unlock()
}

// Get returns the last recorded status for name.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.reports[name]
	return status, ok
}

// Snapshot returns a copy of every recorded status.
func (m *Monitor) Snapshot() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Status, len(m.reports))
	for name, status := range m.reports {
		out[name] = status
	}
	return out
}

// Remove drops a component from the registry, typically when its service
// is removed from the manager.
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	delete(m.reports, name)
	m.mu.Unlock()
}

// Len returns the number of tracked components.
func (m *Monitor) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

// AggregateAll rolls every recorded status into a single report named
// component, using the same rules as Aggregate.
func (m *Monitor) AggregateAll(component string) Status {
	m.mu.RLock()
	subs := make([]Status, 0, len(m.reports))
	for _, status := range m.reports {
		subs = append(subs, status)
	}
	m.mu.RUnlock()

	return Aggregate(component, subs)
}
