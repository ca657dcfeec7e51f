package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func startedPool(t *testing.T, workers, queue int, process func(context.Context, int) error) *Pool[int] {
	t.Helper()
	p := NewPool(workers, queue, process)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop(2 * time.Second) })
	return p
}

func TestPoolProcessesSubmittedWork(t *testing.T) {
	var sum atomic.Int64
	var wg sync.WaitGroup

	p := startedPool(t, 4, 16, func(_ context.Context, n int) error {
		sum.Add(int64(n))
		wg.Done()
		return nil
	})

	for i := 1; i <= 10; i++ {
		wg.Add(1)
		if err := p.Submit(i); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	wg.Wait()

	if got := sum.Load(); got != 55 {
		t.Errorf("sum = %d, want 55", got)
	}
	stats := p.Stats()
	if stats.Submitted != 10 || stats.Processed != 10 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPoolCountsFailures(t *testing.T) {
	var wg sync.WaitGroup
	p := startedPool(t, 2, 8, func(_ context.Context, n int) error {
		defer wg.Done()
		if n%2 == 0 {
			return errors.New("even numbers fail")
		}
		return nil
	})

	for i := 1; i <= 6; i++ {
		wg.Add(1)
		if err := p.Submit(i); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	wg.Wait()

	stats := p.Stats()
	if stats.Processed != 6 {
		t.Errorf("processed = %d, want 6", stats.Processed)
	}
	if stats.Failed != 3 {
		t.Errorf("failed = %d, want 3", stats.Failed)
	}
}

func TestSubmitShedsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	running := make(chan struct{}, 1)
	p := startedPool(t, 1, 1, func(_ context.Context, _ int) error {
		running <- struct{}{}
		<-block
		return nil
	})

	// Occupy the single worker, then fill the single queue slot.
	if err := p.Submit(1); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	<-running
	if err := p.Submit(2); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	if err := p.Submit(3); !errors.Is(err, ErrQueueFull) {
		t.Errorf("submit 3 = %v, want ErrQueueFull", err)
	}
	if got := p.Stats().Dropped; got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
	close(block)
}

func TestStopDrainsQueuedWork(t *testing.T) {
	var processed atomic.Int64
	p := NewPool(1, 8, func(_ context.Context, _ int) error {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil
	})
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := range 5 {
		if err := p.Submit(i); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := p.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := processed.Load(); got != 5 {
		t.Errorf("processed = %d, want 5", got)
	}
}

func TestStopTimesOutOnStuckWorker(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	running := make(chan struct{})

	p := NewPool(1, 1, func(_ context.Context, _ int) error {
		close(running)
		<-block
		return nil
	})
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Submit(1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-running

	if err := p.Stop(20 * time.Millisecond); !errors.Is(err, ErrStopTimeout) {
		t.Errorf("stop = %v, want ErrStopTimeout", err)
	}
}

func TestContextCancellationStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(2, 4, func(context.Context, int) error { return nil })
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	// Workers exit on ctx; Stop should find nothing left to wait for.
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("stop after cancel: %v", err)
	}
}

func TestPoolDefaults(t *testing.T) {
	p := NewPool(0, 0, func(context.Context, int) error { return nil })
	stats := p.Stats()
	if stats.Workers != defaultWorkers {
		t.Errorf("workers = %d, want %d", stats.Workers, defaultWorkers)
	}
	if stats.QueueSize != defaultQueueSize {
		t.Errorf("queue size = %d, want %d", stats.QueueSize, defaultQueueSize)
	}
}

func TestNilProcessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil processor")
		}
	}()
	NewPool[int](1, 1, nil)
}
