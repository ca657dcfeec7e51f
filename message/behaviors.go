package message

import "time"

// Behavioral interfaces a payload may optionally implement. Services
// discover capabilities at runtime by type assertion:
//
//	if correlatable, ok := msg.Payload().(Correlatable); ok {
//	    id := correlatable.CorrelationID()
//	}
//
// Semantic interfaces (Graphable, Storable, TripleGenerator) live in
// their own files.

// Timeable exposes the domain time of a payload so it can be indexed and
// queried temporally. This is the observation or event time, not the
// message creation time carried in Meta.
type Timeable interface {
	Timestamp() time.Time
}

// Correlatable links related messages across a distributed operation:
// a request to its response, or every message in one reasoning run.
type Correlatable interface {
	// CorrelationID is shared by all related messages.
	CorrelationID() string
}

// Processable exposes priority and deadline for queue ordering and
// deadline-aware processing.
type Processable interface {
	// Priority orders processing; higher runs first. Typical range
	// is 0 to 10.
	Priority() int

	// Deadline is when processing must complete. Zero means none.
	Deadline() time.Time
}

// Expirable defines a time-to-live so storage layers can drop stale
// payloads without consulting the producing domain.
type Expirable interface {
	// ExpiresAt is when the payload expires. Zero means never.
	ExpiresAt() time.Time

	// TTL is the lifetime from creation. 0 means never expires.
	TTL() time.Duration
}
