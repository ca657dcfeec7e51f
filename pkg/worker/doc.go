// Package worker provides the bounded worker pool components run their
// work on: a fixed number of goroutines over a buffered queue, generic in
// the work item type.
//
// The contract is load-shedding, not backpressure. Submit never blocks;
// when the queue is full it drops the item and returns ErrQueueFull, so a
// NATS subscription callback feeding the pool stays fast no matter how
// slow processing gets. The reason processor submits one runJob per
// reasoning request this way and answers the caller with an error when the
// pool sheds it.
//
//	pool := worker.NewPool(8, 256, p.executeRun,
//	    worker.WithMetricsRegistry[runJob](registry, "reason_runs"))
//	if err := pool.Start(ctx); err != nil { ... }
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(job); errors.Is(err, worker.ErrQueueFull) {
//	    // shed: tell the caller instead of queueing unboundedly
//	}
//
// Stop closes the queue, lets queued items drain, and waits up to its
// timeout for in-flight work. Stats exposes counters for health
// reporting; WithMetricsRegistry mirrors them into Prometheus under a
// caller-chosen prefix.
package worker
