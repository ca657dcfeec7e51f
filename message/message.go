package message

// Message is the unit of data flow on the reasoning mesh: a typed payload
// plus lifecycle metadata. Messages carry data only. Routing derives from
// Type, storage from the object store, and capabilities from interface
// checks on the payload.
//
//	msg := NewBaseMessage(
//	    Type{Domain: "reason", Category: "triples", Version: "v1"},
//	    batchPayload,
//	    "legal-ingest-service",
//	)
type Message interface {
	// ID is the globally unique identity of this message instance.
	// Distinct from Hash: two messages with equal content still get
	// different IDs.
	ID() string

	// Type carries the domain, category, and version that routing and
	// payload reconstruction key on.
	Type() Type

	// Payload is the typed body. Capabilities are discovered by
	// asserting behavioral interfaces (Graphable, Correlatable, ...).
	Payload() Payload

	// Meta reports creation time, receipt time, and source.
	Meta() Meta

	// Hash is a content hash over type and payload, used for
	// deduplication and content addressing.
	Hash() string

	// Validate checks type validity, payload presence, and the
	// payload's own invariants.
	Validate() error
}
