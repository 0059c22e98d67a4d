package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 50*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := cb.Call(ctx, func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state, got %v", cb.GetState())
	}

	if err := cb.Call(ctx, func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 20*time.Millisecond)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errors.New("boom") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state")
	}

	time.Sleep(30 * time.Millisecond)

	// 半开状态下成功一次即恢复
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected success in half-open, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed state after recovery, got %v", cb.GetState())
	}
}

func TestCircuitBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 20*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	_ = cb.Call(ctx, func() error { return boom })
	time.Sleep(30 * time.Millisecond)

	if err := cb.Call(ctx, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state after half-open failure, got %v", cb.GetState())
	}
}
