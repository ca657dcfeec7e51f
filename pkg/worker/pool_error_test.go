package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitBeforeStart(t *testing.T) {
	p := NewPool(1, 1, func(context.Context, int) error { return nil })
	if err := p.Submit(1); !errors.Is(err, ErrPoolNotStarted) {
		t.Errorf("submit = %v, want ErrPoolNotStarted", err)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1, func(context.Context, int) error { return nil })
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := p.Submit(1); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("submit = %v, want ErrPoolStopped", err)
	}
}

func TestDoubleStart(t *testing.T) {
	p := NewPool(1, 1, func(context.Context, int) error { return nil })
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop(time.Second) })

	if err := p.Start(context.Background()); !errors.Is(err, ErrPoolAlreadyStarted) {
		t.Errorf("second start = %v, want ErrPoolAlreadyStarted", err)
	}
}

func TestDoubleStopIsIdempotent(t *testing.T) {
	p := NewPool(1, 1, func(context.Context, int) error { return nil })
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("second stop: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	p := NewPool(1, 1, func(context.Context, int) error { return nil })
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("stop without start: %v", err)
	}
}
