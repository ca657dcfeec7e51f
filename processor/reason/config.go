package reason

import (
	"time"

	"github.com/c360/semreason/component"
	"github.com/c360/semreason/pkg/cache"
)

// Config holds configuration for the reasoning processor
type Config struct {
	// Port configuration for inputs and outputs
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration for inputs (NATS: reasoning requests and triple batches) and outputs (NATS: responses and inferred triples),category:basic"`

	// Rule profile selection
	Profile string `json:"profile" schema:"type:string,description:Rule profile: a built-in name (legal-default or structural) or a path to a YAML profile file,default:legal-default,category:basic"`

	// Engine overrides applied on top of the profile
	MaxIterations int  `json:"max_iterations" schema:"type:int,description:Override for the profile's inference round cap (0 keeps the profile value),default:0,category:advanced"`
	Permissive    bool `json:"permissive" schema:"type:bool,description:Skip failing rules and report them instead of aborting the run,default:false,category:advanced"`
	Parallel      bool `json:"parallel" schema:"type:bool,description:Apply rules concurrently within each inference round,default:false,category:advanced"`

	// Explanation behavior for responses
	DefaultExplanations bool `json:"default_explanations" schema:"type:bool,description:Attach provenance explanations to every response even when the request does not ask for them,default:false,category:advanced"`

	// Run execution
	Workers   int `json:"workers" schema:"type:int,description:Concurrent reasoning workers,default:4,category:advanced"`
	QueueSize int `json:"queue_size" schema:"type:int,description:Pending reasoning run queue size,default:64,category:advanced"`

	// Request admission control
	RequestsPerSecond float64 `json:"requests_per_second" schema:"type:float,description:Sustained reasoning requests admitted per second (0 disables limiting),default:50,category:advanced"`
	RequestBurst      int     `json:"request_burst" schema:"type:int,description:Requests admitted above the sustained rate in a burst,default:10,category:advanced"`

	// Batch accumulation cache configuration (not exposed in schema - internal config)
	BatchCache cache.Config `json:"batch_cache"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "requests",
					Type:        "nats",
					Subject:     "reason.requests",
					Required:    true,
					Description: "Reasoning requests carrying base triples",
				},
				{
					Name:        "triples",
					Type:        "nats",
					Subject:     "reason.triples",
					Required:    false,
					Description: "Triple batches accumulated per context ahead of a reasoning request",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "responses",
					Type:        "nats",
					Subject:     "reason.responses",
					Required:    true,
					Description: "Reasoning responses correlated by request ID",
				},
				{
					Name:        "inferred",
					Type:        "nats",
					Subject:     "events.reason.inferred",
					Required:    false,
					Description: "Inferred triples fanned out for graph storage",
				},
			},
		},
		Profile:           "legal-default",
		Workers:           4,
		QueueSize:         64,
		RequestsPerSecond: 50,
		RequestBurst:      10,
		BatchCache: cache.Config{
			Enabled:         true,
			Strategy:        cache.StrategyTTL,
			MaxSize:         1000,
			TTL:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
	}
}

// applyOverrides copies explicitly set user values onto c. Unset numeric and
// string fields keep their defaults; booleans always take the user value.
func (c *Config) applyOverrides(user Config) {
	if user.Ports != nil {
		c.Ports = user.Ports
	}
	if user.Profile != "" {
		c.Profile = user.Profile
	}
	if user.MaxIterations > 0 {
		c.MaxIterations = user.MaxIterations
	}
	c.Permissive = user.Permissive
	c.Parallel = user.Parallel
	c.DefaultExplanations = user.DefaultExplanations
	if user.Workers > 0 {
		c.Workers = user.Workers
	}
	if user.QueueSize > 0 {
		c.QueueSize = user.QueueSize
	}
	if user.RequestsPerSecond > 0 {
		c.RequestsPerSecond = user.RequestsPerSecond
	}
	if user.RequestBurst > 0 {
		c.RequestBurst = user.RequestBurst
	}
	if user.BatchCache.Strategy != "" {
		c.BatchCache = user.BatchCache
	}
}

// inputSubject returns the subject of the named NATS input port, or "" when
// the port is absent.
func (c *Config) inputSubject(name string) string {
	if c.Ports == nil {
		return ""
	}
	for _, port := range c.Ports.Inputs {
		if port.Name == name && port.Type == "nats" {
			return port.Subject
		}
	}
	return ""
}

// outputSubject returns the subject of the named NATS output port, or ""
// when the port is absent.
func (c *Config) outputSubject(name string) string {
	if c.Ports == nil {
		return ""
	}
	for _, port := range c.Ports.Outputs {
		if port.Name == name && port.Type == "nats" {
			return port.Subject
		}
	}
	return ""
}
