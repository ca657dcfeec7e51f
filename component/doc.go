// Package component defines the building blocks every SemReason component
// shares: discovery metadata, typed ports, configuration schemas, lifecycle
// control, and the registry that creates and tracks instances.
//
// A component is a self-describing unit of the reasoning platform. Inputs
// bring triples and requests in, processors derive new facts, outputs and
// storage move results onward. Each implements Discoverable so the service
// layer can inspect it at runtime:
//
//	type Discoverable interface {
//		Meta() Metadata
//		InputPorts() []Port
//		OutputPorts() []Port
//		ConfigSchema() ConfigSchema
//		Health() HealthStatus
//		DataFlow() FlowMetrics
//	}
//
// Components that manage goroutines or connections additionally implement
// LifecycleComponent (Start/Stop with context).
//
// # Registration
//
// Registration is explicit. Component packages export a Register function;
// componentregistry calls them all; main wires the populated Registry into
// the service manager. Nothing registers itself from init, so tests build
// isolated registries with exactly the components they need.
//
//	registry := component.NewRegistry()
//	if err := componentregistry.Register(registry); err != nil {
//		log.Fatal(err)
//	}
//
// A component package's Register function describes itself once:
//
//	func Register(registry *component.Registry) error {
//		return registry.RegisterWithConfig(component.RegistrationConfig{
//			Name:        "reason-processor",
//			Factory:     CreateReasonProcessor,
//			Schema:      schema,
//			Type:        "processor",
//			Protocol:    "reason",
//			Domain:      "semantic",
//			Description: "Forward-chaining inference processor",
//			Version:     "1.0.0",
//		})
//	}
//
// Factories receive raw JSON config plus a Dependencies struct (NATS
// client, metrics registry, logger, platform identity) and return a ready
// instance:
//
//	func CreateReasonProcessor(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
//		var config Config
//		if err := json.Unmarshal(rawConfig, &config); err != nil {
//			return nil, fmt.Errorf("parse reason config: %w", err)
//		}
//		return NewProcessorWithMetrics(deps.NATSClient, &config, deps.MetricsRegistry), nil
//	}
//
// The Registry is safe for concurrent use. CreateComponent validates the
// instance name and config, runs the factory, claims any exclusive port
// resources, and tracks the instance until UnregisterInstance releases it.
//
// # Ports
//
// Components declare how they connect through typed ports. Each port
// config implements Portable, which yields a resource ID for conflict
// detection and a type tag for the wire format:
//
//   - NATSPort: pub/sub on a subject ("reason.requests")
//   - JetStreamPort: durable streams ("REASON_EVENTS")
//   - NATSRequestPort: request/reply with a timeout
//   - KVWatchPort / KVWritePort: NATS KV observation and writes
//   - NetworkPort: TCP/UDP socket bindings (exclusive)
//   - FilePort: filesystem paths
//
// A processor declares its ports like so:
//
//	func (p *Processor) OutputPorts() []component.Port {
//		return []component.Port{
//			{
//				Name:      "responses",
//				Direction: component.DirectionOutput,
//				Required:  true,
//				Config:    component.NATSPort{Subject: "reason.responses"},
//			},
//			{
//				Name:      "inferred",
//				Direction: component.DirectionOutput,
//				Config: component.NATSPort{
//					Subject: "events.reason.inferred",
//					Interface: &component.InterfaceContract{
//						Type:    "message.TripleBatchPayload",
//						Version: "v1",
//					},
//				},
//			},
//		}
//	}
//
// Ports marshal to a typed JSON envelope ({"type":"nats","data":{...}})
// so configs round-trip without losing the concrete port type. User
// config overrides default ports by name via MergePortConfigs; the
// flowgraph package consumes the declared ports to validate how a
// configured service wires together.
//
// # Configuration schemas
//
// Every component publishes a ConfigSchema describing its settings. UIs
// render forms from it; ValidateConfig enforces it server-side before a
// config is accepted. Properties carry a type, description, optional
// bounds and enums, and a category ("basic" shows by default, "advanced"
// collapses).
//
// Schemas are usually generated from struct tags rather than written by
// hand:
//
//	type Config struct {
//		Profile       string `json:"profile"        schema:"type:string,description:Rule profile to load,category:basic"`
//		MaxIterations int    `json:"max_iterations" schema:"type:int,description:Cap on forward-chaining rounds,min:1,default:10"`
//	}
//
//	var schema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))
//
// GenerateConfigSchema runs reflection once at init; invalid tags skip
// the field rather than failing the schema. Components may also return a
// hand-built ConfigSchema, or an empty one, in which case UIs fall back
// to a raw JSON editor.
//
// # Validation and errors
//
// Raw factory config passes through ConfigValidator before unmarshaling:
// size limits, nesting depth, string hygiene. SafeUnmarshal combines that
// with json.Unmarshal and an optional Validatable.Validate on the target.
//
// Registry failures wrap with the platform errors package so callers can
// classify instead of string-matching:
//
//	_, err := registry.CreateComponent("reason-1", config, deps)
//	if errors.IsInvalid(err) {
//		// configuration or registration bug, do not retry
//	}
//
// # Testing
//
// Isolated registries keep tests independent:
//
//	registry := component.NewRegistry()
//	if err := reason.Register(registry); err != nil {
//		t.Fatal(err)
//	}
//	deps := component.Dependencies{
//		NATSClient: natsclient.NewTestClient(t).Client,
//		Platform:   component.PlatformMeta{Org: "test", Platform: "test-platform"},
//		Logger:     slog.Default(),
//	}
//	instance, err := registry.CreateComponent("test-1", config, deps)
//
// StandardLifecycleTests exercises any LifecycleComponent against the
// start/stop contract, and integration tests use a containerized NATS
// server through natsclient.NewSharedTestClient.
package component
