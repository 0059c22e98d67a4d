package middleware

import (
	"context"
	"testing"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("expected request %d allowed", i)
		}
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected request rejected after bucket drained")
	}
}
