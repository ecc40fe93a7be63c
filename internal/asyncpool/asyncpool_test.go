package asyncpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestGoRunsTask(t *testing.T) {
	p := New(2, nil)
	var ran atomic.Bool
	done := make(chan struct{})

	if err := p.Go(context.Background(), "test", func(ctx context.Context) error {
		ran.Store(true)
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Go: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	if !ran.Load() {
		t.Fatal("expected task to run")
	}
}

func TestTryGoReturnsFalseWhenSaturated(t *testing.T) {
	p := New(1, nil)
	block := make(chan struct{})
	started := make(chan struct{})

	p.TryGo("occupy", func(ctx context.Context) error {
		close(started)
		<-block
		return nil
	})
	<-started

	if p.TryGo("overflow", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected TryGo to report saturation")
	}
	close(block)
}

func TestGoRespectsContextCancellation(t *testing.T) {
	p := New(1, nil)
	block := make(chan struct{})
	started := make(chan struct{})

	p.Go(context.Background(), "occupy", func(ctx context.Context) error {
		close(started)
		<-block
		return nil
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Go(ctx, "overflow", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("expected error from canceled context while saturated")
	}
	close(block)
}
