package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often stale counters are evicted.
const sweepInterval = 5 * time.Minute

type memoryEntry struct {
	window  int64
	count   int
	expires time.Time
}

// MemoryLimiter implements a fixed-window in-memory rate limiter. Counters
// whose window has lapsed are swept periodically so the map stays bounded by
// the set of recently active keys.
type MemoryLimiter struct {
	mu        sync.Mutex
	counters  map[string]*memoryEntry
	nextSweep time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether the request should be allowed in the current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || window <= 0 {
		return Result{Allowed: true}, nil
	}
	win := now.Unix() / int64(window.Seconds())
	reset := time.Unix((win+1)*int64(window.Seconds()), 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for staleKey, stale := range l.counters {
			if now.After(stale.expires) {
				delete(l.counters, staleKey)
			}
		}
		l.nextSweep = now.Add(sweepInterval)
	}

	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: win, expires: reset}
		l.counters[key] = entry
	}
	if entry.window != win {
		entry.window = win
		entry.count = 0
		entry.expires = reset
	}
	if entry.count >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	return Result{Allowed: true, Remaining: limit - entry.count, Reset: reset}, nil
}
