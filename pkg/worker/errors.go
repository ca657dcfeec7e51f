package worker

import "errors"

var (
	// ErrPoolNotStarted reports a Submit before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolStopped reports a Submit after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrPoolAlreadyStarted reports a second Start.
	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrQueueFull reports a Submit against a full queue. The item was
	// dropped, not queued.
	ErrQueueFull = errors.New("worker pool queue full")

	// ErrNilProcessor reports construction without a process function.
	ErrNilProcessor = errors.New("processor function cannot be nil")

	// ErrStopTimeout reports workers still running when the Stop budget
	// expired.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")
)
