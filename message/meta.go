package message

import "time"

// Meta carries lifecycle metadata for a message: when the underlying event
// happened, when the platform took delivery of it, and which component
// produced it. It is an interface so deployments can attach richer
// metadata (see FederationMeta) without touching the envelope.
type Meta interface {
	// CreatedAt is when the original event or observation occurred:
	// the publication time for ingested documents, the event time for
	// business events.
	CreatedAt() time.Time

	// ReceivedAt is when the message entered the platform. The gap
	// between CreatedAt and ReceivedAt is the ingestion latency.
	ReceivedAt() time.Time

	// Source names the producing service or component, for tracing
	// and provenance. Examples: "registry-reader", "reason-processor".
	Source() string
}
