// Package health models three-state component health and its aggregation
// into service and system level status reports.
package health

import (
	"time"

	"github.com/c360/semreason/component"
)

// The three health states, ordered by severity. Degraded means the
// component still serves requests but with reduced capability.
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

// Status is a point-in-time health report for one component, optionally
// carrying the reports of its sub-components.
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics carries the operational counters attached to a health report.
type Metrics struct {
	Uptime            time.Duration `json:"uptime"`
	ErrorCount        int           `json:"error_count"`
	MessagesProcessed int64         `json:"messages_processed,omitempty"`
	LastActivity      time.Time     `json:"last_activity,omitempty"`
}

func newStatus(component, state, message string) Status {
	return Status{
		Component: component,
		Healthy:   state == StateHealthy,
		Status:    state,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewHealthy reports a component as operating normally.
func NewHealthy(component, message string) Status {
	return newStatus(component, StateHealthy, message)
}

// NewDegraded reports a component as running with reduced capability.
func NewDegraded(component, message string) Status {
	return newStatus(component, StateDegraded, message)
}

// NewUnhealthy reports a component as not functioning.
func NewUnhealthy(component, message string) Status {
	return newStatus(component, StateUnhealthy, message)
}

// IsHealthy reports whether the status is healthy.
func (s Status) IsHealthy() bool { return s.Status == StateHealthy }

// IsDegraded reports whether the status is degraded.
func (s Status) IsDegraded() bool { return s.Status == StateDegraded }

// IsUnhealthy reports whether the status is unhealthy.
func (s Status) IsUnhealthy() bool { return s.Status == StateUnhealthy }

// WithMetrics returns a copy of the status with metrics attached.
func (s Status) WithMetrics(m *Metrics) Status {
	s.Metrics = m
	return s
}

// Aggregate rolls a set of sub-statuses into one report for component.
// Any unhealthy sub-status makes the aggregate unhealthy; otherwise any
// degraded sub-status makes it degraded.
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "No sub-components to aggregate")
	}

	worst := StateHealthy
	for _, sub := range subStatuses {
		switch {
		case sub.IsUnhealthy():
			worst = StateUnhealthy
		case sub.IsDegraded() && worst == StateHealthy:
			worst = StateDegraded
		}
	}

	var agg Status
	switch worst {
	case StateUnhealthy:
		agg = NewUnhealthy(component, "One or more sub-components are unhealthy")
	case StateDegraded:
		agg = NewDegraded(component, "One or more sub-components are degraded")
	default:
		agg = NewHealthy(component, "All sub-components are healthy")
	}

	agg.SubStatuses = append([]Status(nil), subStatuses...)
	return agg
}

// FromComponentHealth converts a component's self-reported health into a
// Status. Error text is scrubbed of endpoints, paths, and credentials
// before it can reach a health endpoint response.
func FromComponentHealth(name string, ch component.HealthStatus) Status {
	message := "Component healthy"
	if ch.LastError != "" {
		message = Redact(ch.LastError)
	}

	state := StateUnhealthy
	if ch.Healthy {
		state = StateHealthy
	}

	return newStatus(name, state, message).WithMetrics(&Metrics{
		Uptime:       ch.Uptime,
		ErrorCount:   ch.ErrorCount,
		LastActivity: ch.LastCheck,
	})
}
