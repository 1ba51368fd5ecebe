package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_AllowsCallsWithinLimit(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 2})

	var called bool
	err := b.Execute(context.Background(), func() error {
		called = true
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("function was not called")
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 1})

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	err := b.Execute(context.Background(), func() error {
		t.Error("function should not have been called")
		return nil
	})
	close(release)

	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       20 * time.Millisecond,
	})

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	err := b.Execute(context.Background(), func() error { return nil })
	close(release)

	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_WaitSucceedsWhenSlotFrees(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})

	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			time.Sleep(10 * time.Millisecond)
			return nil
		})
	}()

	<-started

	var called bool
	err := b.Execute(context.Background(), func() error {
		called = true
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("function was not called")
	}
}

func TestBulkhead_ContextCancellationWhileWaiting(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := b.Execute(ctx, func() error { return nil })
	close(release)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBulkhead_OnRejectCallback(t *testing.T) {
	var rejected string
	b := NewBulkhead(BulkheadConfig{
		Name:          "slots",
		MaxConcurrent: 1,
		OnReject:      func(name string) { rejected = name },
	})

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	_ = b.Execute(context.Background(), func() error { return nil })
	close(release)

	if rejected != "slots" {
		t.Errorf("expected OnReject with slots, got %q", rejected)
	}
}

func TestBulkhead_SlotAccounting(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 3})

	if b.InUse() != 0 || b.Available() != 3 {
		t.Fatalf("expected 0 in use and 3 available, got %d/%d", b.InUse(), b.Available())
	}

	started := make(chan struct{}, 2)
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func() error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}

	<-started
	<-started

	if b.InUse() != 2 || b.Available() != 1 {
		t.Errorf("expected 2 in use and 1 available, got %d/%d", b.InUse(), b.Available())
	}

	close(release)
	wg.Wait()

	if b.InUse() != 0 {
		t.Errorf("expected 0 in use after release, got %d", b.InUse())
	}
}
