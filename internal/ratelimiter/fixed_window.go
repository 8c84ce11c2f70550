package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

// FixedWindowLimiter counts requests per client key inside a fixed window
// and resets all counters when the window rolls over.
type FixedWindowLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
	window time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		counts: make(map[string]int),
		limit:  limit,
		window: window,
	}
	go l.reset()
	return l
}

func (l *FixedWindowLimiter) reset() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		l.counts = make(map[string]int)
		l.mu.Unlock()
	}
}

// Allow reports whether the key may proceed and, when denied, how long
// until the window resets at the latest.
func (l *FixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.counts[key] >= l.limit {
		return false, l.window
	}
	l.counts[key]++
	return true, 0
}
