package middleware

import (
	"errors"
	"testing"
	"time"
)

var errTest = errors.New("test error")

func TestTokenBucketBurstThenDeny(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("expected burst request %d allowed", i)
		}
	}
	if tb.Allow() {
		t.Fatalf("expected request beyond burst denied")
	}
}

func TestSlidingWindowLimit(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, 2)
	if !sw.Allow() || !sw.Allow() {
		t.Fatalf("expected first two requests allowed")
	}
	if sw.Allow() {
		t.Fatalf("expected third request within window denied")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute)
	fail := func() error { return errTest }

	_ = cb.Call(fail)
	_ = cb.Call(fail)
	if cb.State() != BreakerOpen {
		t.Fatalf("expected breaker open after max failures, got %v", cb.State())
	}
	if err := cb.Call(func() error { return nil }); err != ErrBreakerOpen {
		t.Fatalf("expected fast fail while open, got %v", err)
	}
}
