package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://example.org/data/config.json"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host has its own bucket
	if err := limiter.Wait(ctx, "https://cdn.example.org/colors.json"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.getLimiter("example.org").Allow() {
		t.Fatal("first request should be allowed")
	}
	if limiter.getLimiter("example.org").Allow() {
		t.Error("second immediate request should be limited")
	}
	if !limiter.getLimiter("other.example.org").Allow() {
		t.Error("other host should not share the bucket")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.getLimiter("example.org").Allow() {
			t.Fatalf("request %d limited with limiting disabled", i)
		}
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	limiter := NewLimiter(0.1, 1)
	url := "https://example.org/x"
	_ = limiter.Wait(context.Background(), url)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected error when the wait exceeds the deadline")
	}
}

func TestLimiter_BadURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if err := limiter.Wait(context.Background(), "://bad"); err == nil {
		t.Error("expected parse error")
	}
}
