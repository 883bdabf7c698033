package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a process-local sliding-window limiter. Each key keeps
// the timestamps of its admitted requests; entries older than the window
// are discarded on every call. It only bounds abuse as seen by a single
// instance; use RedisLimiter for a cluster-wide view.
type MemoryLimiter struct {
	mux       sync.Mutex
	windows   map[string][]time.Time
	lastSweep time.Time

	now func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

func (rl *MemoryLimiter) Allow(ctx context.Context, key string, quota int, duration time.Duration) (Result, error) {
	rl.mux.Lock()
	defer rl.mux.Unlock()

	now := rl.now()
	cutoff := now.Add(-duration)

	rl.sweep(now, cutoff, duration)

	recent := rl.windows[key][:0]
	for _, ts := range rl.windows[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= quota {
		rl.windows[key] = recent
		return Result{
			Allowed:    false,
			Remaining:  0,
			Reset:      recent[0].Add(duration).Sub(now),
			RetryAfter: duration,
		}, nil
	}

	recent = append(recent, now)
	rl.windows[key] = recent
	return Result{
		Allowed:   true,
		Remaining: quota - len(recent),
		Reset:     duration,
	}, nil
}

// sweep drops keys whose every entry has aged out, so clients that went
// quiet do not stay resident. Runs at most once per window. Caller holds
// the lock.
func (rl *MemoryLimiter) sweep(now time.Time, cutoff time.Time, duration time.Duration) {
	if now.Sub(rl.lastSweep) < duration {
		return
	}
	rl.lastSweep = now

	for key, window := range rl.windows {
		stale := true
		for _, ts := range window {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(rl.windows, key)
		}
	}
}
