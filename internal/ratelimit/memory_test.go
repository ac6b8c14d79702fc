package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1000, 0)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(ctx, "k", 3, time.Minute, now)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
		if result.Remaining != 3-(i+1) {
			t.Fatalf("expected remaining=%d, got %d", 3-(i+1), result.Remaining)
		}
	}

	result, err := limiter.Allow(ctx, "k", 3, time.Minute, now)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected fourth attempt to be blocked")
	}

	// A new window resets the counter.
	result, err = limiter.Allow(ctx, "k", 3, time.Minute, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected next window to be allowed")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1000, 0)

	if result, _ := limiter.Allow(ctx, "a", 1, time.Minute, now); !result.Allowed {
		t.Fatalf("expected first attempt on key a")
	}
	if result, _ := limiter.Allow(ctx, "a", 1, time.Minute, now); result.Allowed {
		t.Fatalf("expected key a to be exhausted")
	}
	if result, _ := limiter.Allow(ctx, "b", 1, time.Minute, now); !result.Allowed {
		t.Fatalf("expected key b to be unaffected")
	}
}

func TestMemoryLimiter_EvictsStaleEntries(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1000, 0)

	for _, key := range []string{"login:10.0.0.1", "login:10.0.0.2", "login:10.0.0.3"} {
		if _, err := limiter.Allow(ctx, key, 5, time.Minute, now); err != nil {
			t.Fatalf("allow %s: %v", key, err)
		}
	}
	if len(limiter.counters) != 3 {
		t.Fatalf("expected 3 counters, got %d", len(limiter.counters))
	}

	// Once the sweep interval passes, lapsed windows are dropped and only the
	// active key remains.
	later := now.Add(sweepInterval + 2*time.Minute)
	if _, err := limiter.Allow(ctx, "login:10.0.0.9", 5, time.Minute, later); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if len(limiter.counters) != 1 {
		t.Fatalf("expected stale counters evicted, got %d", len(limiter.counters))
	}
	if limiter.counters["login:10.0.0.9"] == nil {
		t.Fatalf("expected active counter to survive the sweep")
	}
}

func TestMemoryLimiter_ZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter()
	result, err := limiter.Allow(context.Background(), "k", 0, time.Minute, time.Now())
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected zero limit to disable throttling")
	}
}
