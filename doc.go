// Package semreason provides a forward-chaining semantic reasoning platform:
// a deterministic inference engine over subject-predicate-object triples,
// wrapped in the component, messaging, and service infrastructure needed to
// run it as a long-lived NATS-attached service.
//
// # Philosophy: Small Core, Full Platform
//
// SemReason separates the reasoning core from the platform shell:
//
// Core Layer (pure, in-memory, no I/O):
//   - message: Triple and Term values, wire envelopes, structural keys
//   - vocabulary: W3C and legal-domain IRIs, predicate semantics registry
//   - reasoner: Rule interface, built-in rules, fixed-point Engine, profiles
//
// Platform Layer (transport, lifecycle, operations):
//   - processor/reason: the engine as a lifecycle component on NATS
//   - component / componentregistry: discovery, ports, factories
//   - service: HTTP control plane (health, metrics, component management)
//   - natsclient, config, metric, errors, health: shared infrastructure
//
// The core layer MUST NOT import the platform layer. Engine semantics are
// fully exercisable from unit tests with plain slices of triples; the
// platform wraps, never reaches in.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        Service Manager              │  HTTP control plane
//	│  (/health, /metrics, /services)     │  OpenAPI, lifecycle
//	└─────────────────────────────────────┘
//	           ↓ orchestrates
//	┌─────────────────────────────────────┐
//	│        Component Manager            │  Config-driven creation
//	│   (reason processor instances)      │  Health, flow graph
//	└─────────────────────────────────────┘
//	           ↓ runs
//	┌─────────────────────────────────────┐
//	│        Reason Processor             │  Batching, rate limits,
//	│  (worker pool around the Engine)    │  run IDs, metrics
//	└─────────────────────────────────────┘
//	           ↓ wraps
//	┌─────────────────────────────────────┐
//	│        Reasoner Engine              │  Ordered rules, bounded
//	│  (fixed-point forward chaining)     │  rounds, provenance
//	└─────────────────────────────────────┘
//
// # Data Flow
//
// Base facts arrive as triple batches, accumulate per graph context, and a
// reason request triggers a run whose derived facts are published back out:
//
//	                ┌──────────────┐
//	 reason.triples │   Reason     │ events.reason.inferred
//	───────────────►│  Processor   ├──────────────►
//	                │              │
//	reason.requests │  ┌────────┐  │ reason.responses
//	───────────────►│  │ Engine │  ├──────────────►
//	                │  └────────┘  │
//	                └──────────────┘
//
// Each run is identified by a ULID, bounded by maxIterations, and reported
// through Prometheus metrics (rounds, inferred counts, durations,
// convergence). Explanations for derived facts travel with the response.
//
// # Reasoning Semantics
//
// The engine applies an ordered list of rules to a growing fact set until a
// round derives nothing new or the iteration bound is hit:
//
//   - Monotone: the inferred set only grows within a run
//   - Deterministic: identical input yields identical output order
//   - Cycle-safe: transitive closure uses per-root visited sets
//   - Explained: every derived fact records rule name and source facts
//
// Built-in rules cover RDFS/OWL structure (transitivity, symmetry, subclass,
// subproperty, inverse properties) plus legal-domain extensions (jurisdiction
// inheritance across reference edges). Rule sets and predicate declarations
// are composed through YAML profiles or functional options.
//
// # Framework Packages
//
// Core:
//   - message: Triple, Term, TripleBatch, ReasonRequest/Response envelopes
//   - vocabulary: IRI constants and the predicate semantics registry
//   - reasoner: Rule, Engine, built-in rules, profiles, explanations
//
// Components:
//   - component: Component lifecycle, registry, port definitions
//   - componentregistry: Registration of platform components
//   - processor/reason: NATS-facing reasoning component
//
// Infrastructure:
//   - natsclient: NATS connection management (circuit breaker, JetStream, KV)
//   - config: Configuration loading, validation, KV-backed updates
//   - service: HTTP services (component manager, metrics, message logger)
//   - metric: Prometheus metrics registry and server
//   - errors: Classified error handling (transient/invalid/fatal)
//   - health: Health status aggregation
//
// Utilities:
//   - pkg/cache: TTL cache used for per-context triple accumulation
//   - pkg/worker: Bounded worker pool executing reasoning runs
//   - pkg/retry: Retry policies for infrastructure operations
//
// # Usage Patterns
//
// Library use (no platform required):
//
//	eng, err := reasoner.NewDefaultEngine(reasoner.WithMaxIterations(10))
//	if err != nil {
//	    return err
//	}
//
//	result, err := eng.Reason(ctx, base)
//	if err != nil {
//	    return err
//	}
//	for _, t := range result.Inferred {
//	    exp, _ := result.ExplanationFor(t)
//	    fmt.Println(t.Subject, t.Predicate, exp.Rule)
//	}
//
// Service use (config-driven):
//
//	// Create NATS client
//	natsClient, _ := natsclient.NewClient("nats://localhost:4222")
//	natsClient.Connect(ctx)
//
//	// Create component registry with platform components
//	registry := component.NewRegistry()
//	componentregistry.Register(registry)
//
//	// Component manager creates reason processors from configuration
//	// (see cmd/semreason for the full wiring)
//
// Custom rule registration:
//
//	type GeoContainmentRule struct{}
//
//	func (r *GeoContainmentRule) Name() string { return "GeoContainment" }
//	func (r *GeoContainmentRule) Apply(base, inferred []message.Triple) ([]message.Triple, error) {
//	    // derive containment facts
//	}
//	func (r *GeoContainmentRule) Explain(t message.Triple, base []message.Triple) (message.Explanation, bool) {
//	    // answer whether this rule could derive t
//	}
//
//	eng := reasoner.NewEngine([]reasoner.Rule{&GeoContainmentRule{}})
//
// # Extension Points
//
//  1. Rules: implement reasoner.Rule and pass it to NewEngine or enable it
//     from a profile. Rules are pure functions over fact slices; the engine
//     owns ordering, deduplication, and termination.
//
//  2. Vocabularies: declare predicate semantics (transitive, symmetric,
//     inverse pairs) in the vocabulary registry; the default engine
//     configuration is discovered from those declarations.
//
//  3. Profiles: ship YAML profiles binding predicate sets, rule toggles, and
//     iteration bounds for a deployment without recompiling.
//
// # Design Principles
//
// Determinism First:
//   - Registration order is evaluation order
//   - Parallel rule mode merges results in registration order
//   - No map-iteration ordering ever reaches an output
//
// Separation of Concerns:
//   - Deriving facts ≠ transporting facts
//   - Engine state is per-call; components own batching and caching
//   - Provenance is recorded where derivation happens
//
// Testability:
//   - Explicit dependencies (no globals)
//   - Core semantics testable with plain slices
//   - Integration tests with testcontainers-backed NATS
//
// # Binary
//
// Build and run SemReason:
//
//	# Build the service binary
//	go build -o bin/semreason ./cmd/semreason
//
//	# Validate configuration without starting
//	./bin/semreason --config configs/semreason.json --validate
//
//	# Run the reasoning service
//	./bin/semreason --config configs/semreason.json
//
// The binary wires configuration, NATS, the component registry, and the
// service manager, then runs until SIGINT/SIGTERM with graceful shutdown.
package semreason
