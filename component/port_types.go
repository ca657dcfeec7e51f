package component

import "fmt"

// NATSPort is plain pub/sub on a NATS subject. Multiple components may
// publish or subscribe on the same subject, so the resource is shared.
type NATSPort struct {
	Subject   string             `json:"subject"`
	Queue     string             `json:"queue,omitempty"`
	Interface *InterfaceContract `json:"interface,omitempty"`
}

func (n NATSPort) ResourceID() string { return fmt.Sprintf("nats:%s", n.Subject) }
func (n NATSPort) IsExclusive() bool  { return false }
func (n NATSPort) Type() string       { return "nats" }

// NATSRequestPort is synchronous request/reply over NATS. Timeout is a
// duration string such as "1s" or "500ms".
type NATSRequestPort struct {
	Subject   string             `json:"subject"`
	Timeout   string             `json:"timeout,omitempty"`
	Retries   int                `json:"retries,omitempty"`
	Interface *InterfaceContract `json:"interface,omitempty"`
}

func (n NATSRequestPort) ResourceID() string { return fmt.Sprintf("nats-request:%s", n.Subject) }
func (n NATSRequestPort) IsExclusive() bool  { return false }
func (n NATSRequestPort) Type() string       { return "nats-request" }

// JetStreamPort is durable at-least-once messaging. Outputs declare the
// stream shape; inputs declare the consumer reading from it.
type JetStreamPort struct {
	StreamName      string   `json:"stream_name"`              // e.g. "REASON_EVENTS"
	Subjects        []string `json:"subjects"`                 // e.g. ["events.reason.>"]
	Storage         string   `json:"storage,omitempty"`        // "file" (default) or "memory"
	RetentionPolicy string   `json:"retention,omitempty"`      // "limits" (default), "interest", "work_queue"
	RetentionDays   int      `json:"retention_days,omitempty"` // default 7
	MaxSizeGB       int      `json:"max_size_gb,omitempty"`    // default 10
	Replicas        int      `json:"replicas,omitempty"`       // default 1

	ConsumerName  string `json:"consumer_name,omitempty"`
	DeliverPolicy string `json:"deliver_policy,omitempty"` // "all", "last", "new" (default)
	AckPolicy     string `json:"ack_policy,omitempty"`     // "explicit" (default), "none", "all"
	MaxDeliver    int    `json:"max_deliver,omitempty"`    // default 3

	Interface *InterfaceContract `json:"interface,omitempty"`
}

// ResourceID prefers the stream name; consumers without one fall back to
// their first subject.
func (j JetStreamPort) ResourceID() string {
	switch {
	case j.StreamName != "":
		return fmt.Sprintf("jetstream:%s", j.StreamName)
	case len(j.Subjects) > 0:
		return fmt.Sprintf("jetstream:%s", j.Subjects[0])
	default:
		return "jetstream:unknown"
	}
}

func (j JetStreamPort) IsExclusive() bool { return false }
func (j JetStreamPort) Type() string      { return "jetstream" }

// KVWatchPort observes changes in a NATS KV bucket. An empty Keys list
// watches the whole bucket.
type KVWatchPort struct {
	Bucket    string             `json:"bucket"` // e.g. "RULE_PROFILES"
	Keys      []string           `json:"keys,omitempty"`
	History   bool               `json:"history,omitempty"`
	Interface *InterfaceContract `json:"interface,omitempty"`
}

func (k KVWatchPort) ResourceID() string { return fmt.Sprintf("kvwatch:%s", k.Bucket) }
func (k KVWatchPort) IsExclusive() bool  { return false }
func (k KVWatchPort) Type() string       { return "kvwatch" }

// KVWritePort declares writes into a NATS KV bucket. Concurrent writers
// are allowed; they coordinate through compare-and-swap on revisions.
type KVWritePort struct {
	Bucket    string             `json:"bucket"`
	Interface *InterfaceContract `json:"interface,omitempty"`
}

func (k KVWritePort) ResourceID() string { return fmt.Sprintf("kvwrite:%s", k.Bucket) }
func (k KVWritePort) IsExclusive() bool  { return false }
func (k KVWritePort) Type() string       { return "kvwrite" }

// NetworkPort binds a TCP or UDP socket. Socket bindings are exclusive:
// two components cannot listen on the same address.
type NetworkPort struct {
	Protocol string `json:"protocol"` // "tcp" or "udp"
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

func (n NetworkPort) ResourceID() string {
	return fmt.Sprintf("%s:%s:%d", n.Protocol, n.Host, n.Port)
}

func (n NetworkPort) IsExclusive() bool { return true }
func (n NetworkPort) Type() string      { return "network" }

// FilePort reads or writes files under a path, optionally filtered by a
// glob pattern.
type FilePort struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern,omitempty"`
}

func (f FilePort) ResourceID() string { return fmt.Sprintf("file:%s", f.Path) }
func (f FilePort) IsExclusive() bool  { return false }
func (f FilePort) Type() string       { return "file" }
