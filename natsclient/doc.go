// Package natsclient wraps the NATS Go client with circuit breaker
// protection, health monitoring, and JetStream/KV helpers. It is the
// transport foundation for the reasoning services: triple streams,
// inference results, and rule configuration all move through it.
//
// # Connection lifecycle
//
// A Client moves through Disconnected, Connecting, Connected,
// Reconnecting, and CircuitOpen states. Repeated failures trip the
// circuit breaker (default threshold 5), which fails operations fast
// with ErrCircuitOpen and probes the connection on an exponential
// backoff schedule (1s doubling up to 1m by default).
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("reason-engine"),
//	    natsclient.WithCircuitBreakerThreshold(5),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx := context.Background()
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	if err := client.WaitForConnection(ctx); err != nil {
//	    return err
//	}
//
// # Publish and subscribe
//
// Core NATS messaging with the breaker in front:
//
//	err = client.Publish(ctx, "reason.triples", payload)
//
//	err = client.Subscribe(ctx, "reason.triples", func(msgCtx context.Context, data []byte) {
//	    // msgCtx carries a 30s per-message timeout
//	})
//
// Operations against a tripped breaker return ErrCircuitOpen; against a
// disconnected client they return ErrNotConnected. Both are plain
// sentinels, comparable with errors.Is.
//
// # JetStream
//
// Streams and consumers for durable triple delivery:
//
//	stream, err := client.CreateStream(ctx, jetstream.StreamConfig{
//	    Name:     "REASON",
//	    Subjects: []string{"reason.>"},
//	})
//
//	err = client.PublishToStream(ctx, "reason.triples.ingest", payload)
//
//	err = client.ConsumeStream(ctx, "REASON", "reason.triples.ingest", handler)
//
// With WithMetrics, stream and consumer statistics are polled into
// Prometheus gauges and counters under the semreason_jetstream
// namespace.
//
// # Key-Value store
//
// KVStore layers CAS retry loops over a JetStream KV bucket. Rule sets
// and engine configuration live in KV:
//
//	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
//	    Bucket: "semreason_config",
//	})
//	kv := client.NewKVStore(bucket)
//
//	rev, err := kv.Put(ctx, "engine.rules", ruleBytes)
//
//	entry, err := kv.Get(ctx, "engine.rules")
//
// Concurrent updates use UpdateWithRetry, which re-reads and reapplies
// the update function until the CAS write lands or the retry budget
// runs out:
//
//	err = kv.UpdateWithRetry(ctx, "engine.stats", func(current []byte) ([]byte, error) {
//	    stats := decode(current) // current is nil for a missing key
//	    stats.Derived++
//	    return encode(stats)
//	})
//
// UpdateJSON does the same for JSON object values:
//
//	err = kv.UpdateJSON(ctx, "engine.stats", func(current map[string]any) error {
//	    current["last_run"] = time.Now().UTC().Format(time.RFC3339)
//	    return nil
//	})
//
// KV errors normalize to sentinels: ErrKVKeyNotFound, ErrKVKeyExists,
// ErrKVRevisionMismatch, and ErrKVMaxRetriesExceeded when the retry
// budget is exhausted. IsKVNotFoundError and IsKVConflictError also
// match the raw NATS error shapes for code that sees unwrapped errors.
//
// # Temporal queries
//
// TemporalResolver answers point-in-time queries over a KV bucket's
// revision history, with a short-TTL history cache:
//
//	resolver := natsclient.NewTemporalResolver(ctx, bucket)
//	defer resolver.Close()
//
//	entry, err := resolver.GetAtTimestamp(ctx, "entity.alice", asOf)
//	entries, err := resolver.GetInTimeRange(ctx, "entity.alice", from, to)
//
// # Testing
//
// TestClient runs a real NATS server in a testcontainer:
//
//	func TestInference(t *testing.T) {
//	    tc := natsclient.NewTestClient(t, natsclient.WithKVBuckets("semreason_config"))
//	    // tc.Client is connected; teardown is registered with t.Cleanup
//	}
//
// For shared TestMain setup use NewSharedTestClient, which returns an
// error instead of requiring a testing.T, and call Terminate yourself.
// Preset bundles (WithIntegrationDefaults, WithE2EDefaults and friends)
// cover the common feature/timeout combinations.
package natsclient
