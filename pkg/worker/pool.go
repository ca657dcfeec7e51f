package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultWorkers   = 10
	defaultQueueSize = 1000
)

// Pool runs a fixed number of workers over a bounded queue of T. Submit
// never blocks: when the queue is full the item is dropped and the caller
// told, which keeps slow consumers from backing pressure into NATS
// subscription callbacks.
type Pool[T any] struct {
	workers   int
	queueSize int
	process   func(context.Context, T) error

	queue chan T
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	metrics *poolMetrics
}

// Option configures a Pool at construction.
type Option[T any] func(*Pool[T])

// NewPool builds a pool of the given size over process. Non-positive sizes
// fall back to defaults. A nil process function is a programming error and
// panics.
func NewPool[T any](workers, queueSize int, process func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if process == nil {
		panic(ErrNilProcessor)
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	p := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		process:   process,
		queue:     make(chan T, queueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. The context bounds every worker and every
// process call; cancelling it stops the pool without draining the queue.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}

	p.quit = make(chan struct{})
	for range p.workers {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	if p.metrics != nil {
		p.wg.Add(1)
		go p.observeQueue(ctx)
	}

	p.started = true
	return nil
}

// Submit enqueues one item. It reports ErrQueueFull instead of blocking
// when the queue is at capacity; the drop is counted.
func (p *Pool[T]) Submit(item T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- item:
		p.submitted.Add(1)
		p.metrics.recordSubmit(len(p.queue))
		return nil
	default:
		p.dropped.Add(1)
		p.metrics.recordDrop()
		return ErrQueueFull
	}
}

// Stop closes the queue and waits up to timeout for in-flight work to
// finish. Items still queued are processed; new submissions fail.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return nil
	}
	p.stopped = true
	close(p.queue)
	close(p.quit)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// Stats reports accepted, completed, failed and dropped item counts along
// with the current queue depth.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.queue),
		Submitted:  p.submitted.Load(),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
	}
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.queue:
			if !ok {
				return
			}
			start := time.Now()
			err := p.process(ctx, item)
			p.processed.Add(1)
			if err != nil {
				p.failed.Add(1)
			}
			p.metrics.recordResult(err, time.Since(start))
		}
	}
}
