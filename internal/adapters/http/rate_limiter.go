package http

import (
	"sync"
	"time"
)

// ProvisionRateLimiter caps how many rooms one client may open per interval.
type ProvisionRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

// NewProvisionRateLimiter returns nil, which allows everything, when limit is not positive.
func NewProvisionRateLimiter(limit int, interval time.Duration) *ProvisionRateLimiter {
	if limit <= 0 {
		return nil
	}
	return &ProvisionRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *ProvisionRateLimiter) Allow(client string) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[client]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[client] = fresh
		return false
	}

	rl.history[client] = append(fresh, now)
	rl.prune(windowStart)
	return true
}

// prune forgets clients with no attempt inside the window.
func (rl *ProvisionRateLimiter) prune(windowStart time.Time) {
	for client, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, client)
		}
	}
}
