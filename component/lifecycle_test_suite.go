package component

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/errors"
)

// LifecycleFactory builds a fresh, isolated component instance for lifecycle
// testing. Instances must not share state and must not need live external
// services to start and stop.
type LifecycleFactory func() LifecycleComponent

// StandardLifecycleTests exercises the lifecycle contract every component in
// the platform follows: Start validates its context and rejects reuse with
// ErrAlreadyStarted, Initialize is optional before Start, and Stop is
// idempotent and safe at any point. Call it from the component's own test
// package.
func StandardLifecycleTests(t *testing.T, factory LifecycleFactory) {
	t.Run("Compliance", func(t *testing.T) {
		testLifecycleCompliance(t, factory)
	})
	t.Run("ContextValidation", func(t *testing.T) {
		testStartContextValidation(t, factory)
	})
	t.Run("Concurrent", func(t *testing.T) {
		testConcurrentLifecycle(t, factory)
	})
	t.Run("NoLeaks", func(t *testing.T) {
		testNoResourceLeaks(t, factory)
	})
}

// testLifecycleCompliance checks every state transition a caller can drive.
func testLifecycleCompliance(t *testing.T, factory LifecycleFactory) {
	t.Run("InitializeFresh", func(t *testing.T) {
		comp := factory()
		require.NotNil(t, comp, "factory returned nil component")

		assert.NoError(t, comp.Initialize())
	})

	t.Run("FullCycle", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, comp.Start(ctx))
		assert.True(t, comp.Health().Healthy, "running component should report healthy")

		require.NoError(t, comp.Stop(5*time.Second))
		assert.False(t, comp.Health().Healthy, "stopped component should report unhealthy")
	})

	t.Run("StopBeforeStart", func(t *testing.T) {
		comp := factory()

		assert.NoError(t, comp.Stop(5*time.Second), "Stop without Start is a no-op")
	})

	t.Run("DoubleStart", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, comp.Start(ctx))

		err := comp.Start(ctx)
		require.Error(t, err, "second Start must be rejected")
		assert.ErrorIs(t, err, errors.ErrAlreadyStarted)

		assert.NoError(t, comp.Stop(5*time.Second))
	})

	t.Run("DoubleStop", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, comp.Start(ctx))

		assert.NoError(t, comp.Stop(5*time.Second))
		assert.NoError(t, comp.Stop(5*time.Second), "second Stop is a no-op")
	})

	t.Run("StartWithoutInitialize", func(t *testing.T) {
		comp := factory()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, comp.Start(ctx), "Start performs implicit initialization")
		assert.NoError(t, comp.Stop(5*time.Second))
	})

	t.Run("InitializeAfterStop", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, comp.Start(ctx))
		require.NoError(t, comp.Stop(5*time.Second))

		assert.NoError(t, comp.Initialize(), "component is reinitializable after Stop")
	})

	t.Run("RestartAfterStop", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, comp.Start(ctx))
		require.NoError(t, comp.Stop(5*time.Second))

		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		require.NoError(t, comp.Start(ctx2), "component restarts without reinitialization")
		assert.NoError(t, comp.Stop(5*time.Second))
	})
}

// testStartContextValidation verifies Start screens its context before
// allocating any resources.
func testStartContextValidation(t *testing.T, factory LifecycleFactory) {
	t.Run("CancelledContext", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := comp.Start(ctx)
		require.Error(t, err)
		assert.True(t,
			strings.Contains(err.Error(), "context") || strings.Contains(err.Error(), "cancel"),
			"error should name the context failure: %v", err)
		assert.NoError(t, comp.Stop(5*time.Second), "component stays stoppable after rejected Start")
	})

	t.Run("ExpiredDeadline", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(10 * time.Millisecond)

		err := comp.Start(ctx)
		require.Error(t, err)
		assert.True(t,
			strings.Contains(err.Error(), "context") || strings.Contains(err.Error(), "timeout"),
			"error should name the context failure: %v", err)
		assert.NoError(t, comp.Stop(5*time.Second))
	})

	t.Run("NilContext", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		// Deliberately nil to exercise the validation path
		err := comp.Start(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "context")
		assert.NoError(t, comp.Stop(5*time.Second))
	})
}

// testConcurrentLifecycle drives lifecycle methods from many goroutines at
// once. Run it under the race detector.
func testConcurrentLifecycle(t *testing.T, factory LifecycleFactory) {
	t.Run("StartStopRace", func(t *testing.T) {
		comp := factory()
		require.NoError(t, comp.Initialize())

		const starters, stoppers = 50, 50
		results := make([]error, starters+stoppers)
		var wg sync.WaitGroup

		for i := 0; i < starters; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				results[idx] = comp.Start(ctx)
			}(i)
		}
		for i := starters; i < starters+stoppers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				// Let some starts land first
				time.Sleep(10 * time.Millisecond)
				results[idx] = comp.Stop(5 * time.Second)
			}(i)
		}
		wg.Wait()

		startedOK, stoppedOK := 0, 0
		for i, err := range results {
			switch {
			case i < starters && err == nil:
				startedOK++
			case i >= starters && err == nil:
				stoppedOK++
			}
		}
		assert.GreaterOrEqual(t, startedOK, 1, "at least one Start should win")
		assert.GreaterOrEqual(t, stoppedOK, 1, "at least one Stop should succeed")

		_ = comp.Stop(5 * time.Second)
	})

	t.Run("InitializeRace", func(t *testing.T) {
		comp := factory()

		const callers = 20
		results := make([]error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = comp.Initialize()
			}(i)
		}
		wg.Wait()

		for i, err := range results {
			assert.NoErrorf(t, err, "concurrent Initialize %d failed", i)
		}
		assert.NoError(t, comp.Stop(5*time.Second))
	})

	t.Run("Stress", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping lifecycle stress in short mode")
		}
		testLifecycleStress(t, factory)
	})
}

// testLifecycleStress churns fresh instances through mixed partial lifecycles.
func testLifecycleStress(t *testing.T, factory LifecycleFactory) {
	const workers = 10
	const iterations = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				comp := factory()
				if comp == nil {
					t.Error("factory returned nil component")
					return
				}

				switch i % 4 {
				case 0:
					_ = comp.Initialize()
					ctx, cancel := context.WithTimeout(context.Background(), time.Second)
					_ = comp.Start(ctx)
					cancel()
					_ = comp.Stop(5 * time.Second)
				case 1:
					_ = comp.Initialize()
					_ = comp.Stop(5 * time.Second)
				case 2:
					ctx, cancel := context.WithTimeout(context.Background(), time.Second)
					_ = comp.Start(ctx)
					cancel()
					_ = comp.Stop(5 * time.Second)
				case 3:
					_ = comp.Stop(5 * time.Second)
				}
			}
		}()
	}
	wg.Wait()

	t.Logf("lifecycle stress completed: %d workers x %d iterations", workers, iterations)
}

// testNoResourceLeaks runs many full lifecycles and checks goroutines and
// memory return to baseline.
func testNoResourceLeaks(t *testing.T, factory LifecycleFactory) {
	if testing.Short() {
		t.Skip("skipping resource leak test in short mode")
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	baselineGoroutines := runtime.NumGoroutine()
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)

	const iterations = 1000
	for i := 0; i < iterations; i++ {
		comp := factory()
		require.NotNil(t, comp, "factory returned nil component")

		if err := comp.Initialize(); err != nil {
			t.Fatalf("Initialize failed on iteration %d: %v", i, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		if err := comp.Start(ctx); err != nil {
			t.Fatalf("Start failed on iteration %d: %v", i, err)
		}
		if err := comp.Stop(5 * time.Second); err != nil {
			t.Fatalf("Stop failed on iteration %d: %v", i, err)
		}
		cancel()

		// Settle periodically so transient garbage does not mask a real leak
		if i%100 == 99 {
			runtime.GC()
			time.Sleep(10 * time.Millisecond)
		}
	}

	runtime.GC()
	time.Sleep(200 * time.Millisecond)

	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	finalGoroutines := runtime.NumGoroutine()

	memoryGrowth := int64(after.Alloc) - int64(baseline.Alloc)
	assert.Less(t, memoryGrowth, int64(50*1024*1024),
		"memory grew by %.2f MB across %d lifecycles", float64(memoryGrowth)/(1024*1024), iterations)

	goroutineGrowth := finalGoroutines - baselineGoroutines
	assert.LessOrEqual(t, goroutineGrowth, 5,
		"goroutine count grew by %d (baseline %d, final %d)", goroutineGrowth, baselineGoroutines, finalGoroutines)

	t.Logf("leak check: %d lifecycles, memory growth %d bytes, goroutine growth %d",
		iterations, memoryGrowth, goroutineGrowth)
}

// BenchmarkLifecycleMethods measures the cost of each lifecycle operation.
// Call it from a component's Benchmark function with the same factory used
// for StandardLifecycleTests.
func BenchmarkLifecycleMethods(b *testing.B, factory LifecycleFactory) {
	b.Run("Initialize", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			comp := factory()
			_ = comp.Initialize()
			_ = comp.Stop(5 * time.Second)
		}
	})

	b.Run("StartStop", func(b *testing.B) {
		comp := factory()
		_ = comp.Initialize()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = comp.Start(ctx)
			_ = comp.Stop(5 * time.Second)
			cancel()
		}
	})

	b.Run("FullCycle", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			comp := factory()
			_ = comp.Initialize()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = comp.Start(ctx)
			_ = comp.Stop(5 * time.Second)
			cancel()
		}
	})
}

// ErrorInjectingComponent decorates a LifecycleComponent so tests can force
// failures from individual lifecycle methods. The embedded component still
// handles whatever is not overridden.
type ErrorInjectingComponent struct {
	LifecycleComponent

	initErr  error
	startErr error
	stopErr  error
}

// NewErrorInjectingComponent wraps comp with error injection hooks.
func NewErrorInjectingComponent(comp LifecycleComponent) *ErrorInjectingComponent {
	return &ErrorInjectingComponent{LifecycleComponent: comp}
}

// InjectInitializeError makes Initialize return err instead of delegating.
func (e *ErrorInjectingComponent) InjectInitializeError(err error) { e.initErr = err }

// InjectStartError makes Start return err instead of delegating.
func (e *ErrorInjectingComponent) InjectStartError(err error) { e.startErr = err }

// InjectStopError makes Stop return err instead of delegating.
func (e *ErrorInjectingComponent) InjectStopError(err error) { e.stopErr = err }

// Initialize returns the injected error when one is set.
func (e *ErrorInjectingComponent) Initialize() error {
	if e.initErr != nil {
		return e.initErr
	}
	return e.LifecycleComponent.Initialize()
}

// Start returns the injected error when one is set.
func (e *ErrorInjectingComponent) Start(ctx context.Context) error {
	if e.startErr != nil {
		return e.startErr
	}
	return e.LifecycleComponent.Start(ctx)
}

// Stop returns the injected error when one is set.
func (e *ErrorInjectingComponent) Stop(timeout time.Duration) error {
	if e.stopErr != nil {
		return e.stopErr
	}
	return e.LifecycleComponent.Stop(timeout)
}

// TestErrorInjection verifies lifecycle failures surface to the caller and
// leave the underlying component in a recoverable state.
func TestErrorInjection(t *testing.T, factory LifecycleFactory) {
	t.Run("InitializeFailure", func(t *testing.T) {
		comp := NewErrorInjectingComponent(factory())
		comp.InjectInitializeError(fmt.Errorf("injected initialize failure"))

		assert.Error(t, comp.Initialize())
		assert.NoError(t, comp.LifecycleComponent.Stop(5*time.Second))
	})

	t.Run("StartFailure", func(t *testing.T) {
		comp := NewErrorInjectingComponent(factory())
		comp.InjectStartError(fmt.Errorf("injected start failure"))
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.Error(t, comp.Start(ctx))
		assert.NoError(t, comp.LifecycleComponent.Stop(5*time.Second))
	})

	t.Run("StopFailure", func(t *testing.T) {
		comp := NewErrorInjectingComponent(factory())
		comp.InjectStopError(fmt.Errorf("injected stop failure"))
		require.NoError(t, comp.Initialize())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, comp.Start(ctx))
		cancel()

		assert.Error(t, comp.Stop(5*time.Second))
		// Release the real component's resources behind the injected failure
		assert.NoError(t, comp.LifecycleComponent.Stop(5*time.Second))
	})
}
