// Package message provides the core message infrastructure for the SemReason platform.
// It defines interfaces and types for creating, validating, and processing messages
// that flow through the semantic event mesh, and the triple model the reasoning
// engine operates on.
//
// # Architecture
//
// The package follows a clean, domain-agnostic design with four core concepts:
//
// 1. Messages - Containers that combine typed payloads with metadata
// 2. Payloads - Domain-specific data that may implement behavioral interfaces
// 3. Metadata - Information about message lifecycle and origin
// 4. Triples - Typed semantic statements, the unit of knowledge for reasoning
//
// # Message Structure
//
// Every message consists of:
//   - A unique ID for tracking and deduplication
//   - A structured Type (domain, category, version)
//   - A Payload containing the actual data
//   - Metadata about creation time, source, etc.
//   - A content-based hash for integrity
//
// # The Triple Model
//
// Knowledge is expressed as triples: subject, predicate, object. Subjects and
// predicates are IRIs; objects are typed Terms that are either resource
// references (URI terms) or literal values with optional XSD datatypes.
//
//	// A relationship between two resources
//	message.NewTriple(
//	    "https://semreason.c360.io/entity/legal/regulation/dpa-2018",
//	    vocabulary.DcReferences,
//	    message.URI("https://semreason.c360.io/entity/legal/regulation/gdpr"))
//
//	// A literal property value
//	message.NewTriple(
//	    "https://semreason.c360.io/entity/legal/regulation/gdpr",
//	    vocabulary.EliJurisdiction,
//	    message.Literal("EU"))
//
// Triple identity is structural: two triples are equal exactly when subject,
// predicate, and object (kind, value, datatype) all match. Triple.Key()
// exposes that identity as a comparable struct for index maps; no string
// concatenation is involved, so IRIs containing separator characters cannot
// collide. Provenance lives on payloads, never on triples, which keeps
// deduplication honest across sources.
//
// # Reasoning Payloads
//
// Three payload types carry reasoning traffic:
//
//   - TripleBatchPayload ("reason.triples.v1"): a batch of base facts with
//     batch-level provenance, the standard stream input to the reasoner
//   - ReasonRequestPayload ("reason.request.v1"): an explicit request/reply
//     invocation with per-request profile, iteration, and explanation options
//   - ReasonResponsePayload ("reason.response.v1"): inferred triples plus
//     convergence metadata and optional explanations
//
// EntityPayload ("graph.Entity.v1") bridges loosely typed entity messages into
// the triple model via TermFromValue, and GenericJSONPayload ("core.json.v1")
// remains available for prototyping flows.
//
// # Behavioral Interfaces
//
// The message package uses runtime capability discovery through optional interfaces.
// Payloads implement only the interfaces relevant to their domain, and services
// discover these capabilities dynamically through type assertions.
//
// ## Semantic Interfaces
//
// TripleGenerator: Produces semantic triples for reasoning and graph storage
//   - Triples() []Triple - Returns semantic statements carried by the payload
//   - Use when: Payload carries facts the reasoner or graph should see
//   - Example: Triple batches, reasoning responses, entity payloads
//
// Graphable: Declares entities and relationships for knowledge graph storage
//   - EntityID() string - Returns federated entity identifier
//   - Triples() []Triple - Returns semantic facts about the entity
//   - Use when: Payload represents a single entity that should be stored in the graph
//   - Example: Regulation records, document metadata, curated entities
//
// Storable: Extends Graphable with a reference to externally stored full data
//   - StorageRef() *StorageReference - Returns storage location or nil
//   - Use when: Full payload data is stored once and referenced everywhere
//
// ## Temporal Interfaces
//
// Timeable: Provides event/observation timestamp for time-series analysis
//   - Timestamp() time.Time - Returns event time (not message creation time)
//   - Use when: Payload represents time-series data or historical events
//
// Expirable: Defines time-to-live for automatic cleanup
//   - ExpiresAt() time.Time - Returns expiration timestamp
//   - TTL() time.Duration - Returns time-to-live from creation
//   - Use when: Payload should be automatically cleaned up after expiration
//
// ## Correlation and Processing Interfaces
//
// Correlatable: Enables distributed tracing and request/response matching
//   - CorrelationID() string - Returns correlation identifier
//   - Use when: Messages need to be correlated across requests/responses
//   - Example: ReasonRequest/ReasonResponse pairs
//
// Processable: Specifies processing priority and deadlines
//   - Priority() int - Returns priority (0-10, higher = more important)
//   - Deadline() time.Time - Returns processing deadline
//   - Use when: Messages need priority-based or deadline-aware processing
//
// ## Runtime Discovery Pattern
//
// Services discover capabilities at runtime through type assertions:
//
//	// Check for semantic facts
//	if gen, ok := msg.Payload().(TripleGenerator); ok {
//	    triples := gen.Triples()
//	    // Feed the reasoner, store in the graph, etc.
//	}
//
//	// Check for correlation
//	if correlatable, ok := msg.Payload().(Correlatable); ok {
//	    id := correlatable.CorrelationID()
//	    // Match request and response...
//	}
//
// This pattern enables services to process any message type without prior knowledge
// of the specific payload structure, discovering capabilities dynamically.
//
// # Type System Hierarchy
//
// The message package uses three related but distinct type representations,
// each serving a specific purpose. All three implement the Keyable interface,
// providing consistent dotted notation for NATS routing, storage keys, and
// entity identification.
//
// ## 1. Type (Message Schema) - "domain.category.version"
//
// Identifies the wire schema of a message payload, e.g. "reason.triples.v1".
// Used for routing, payload registry lookup, and schema evolution.
//
// ## 2. EntityType (Graph Classification) - "domain.type"
//
// Classifies entities in the knowledge graph, e.g. "legal.regulation".
// Used by Graphable payloads and entity extraction.
//
// ## 3. EntityID (Federated Identity) - "org.platform.domain.system.type.instance"
//
// Canonical 6-part identity for entities across federated deployments,
// e.g. "c360.platform1.legal.registry.regulation.gdpr". The vocabulary
// package maps entity IDs to IRIs before reasoning.
//
// # Message Lifecycle
//
// ## 1. Creation
//
//	payload := message.NewTripleBatch(triples, "legal-ingest")
//	msg := message.NewBaseMessage(payload.Schema(), payload, "legal-ingest")
//
// ## 2. Validation
//
// BaseMessage.Validate() checks type validity and delegates to the payload's
// own Validate for domain rules (non-empty batches, well-formed terms).
//
// ## 3. Serialization
//
// BaseMessage implements json.Marshaler/Unmarshaler. Unmarshalling recreates
// typed payloads through the global PayloadRegistry, so all payload types
// must register in init().
//
// ## 4. Transmission and Processing
//
// Messages travel over NATS subjects derived from their Type keys. Consumers
// assert behavioral interfaces to discover capabilities.
//
// # Best Practices
//
//   - Keep triples minimal: provenance belongs on the payload
//   - Use vocabulary constants for predicates, never ad-hoc strings
//   - Use typed Term constructors; TermFromValue only at ingestion boundaries
//   - Register every payload type in init() so JSON round-trips work
package message
