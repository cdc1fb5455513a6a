// Package ratelimit throttles request volume per requester key using a
// fixed-window counter. The in-memory implementation serves a single
// process; RedisLimiter shares one counter across instances.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter answers whether a request for key may proceed. A false
// return means the key exhausted its window; rejected requests do not
// count against the window.
type Limiter interface {
	Check(ctx context.Context, key string) (bool, error)
}

type entry struct {
	count     int
	windowEnd time.Time
}

// FixedWindow counts requests per key inside fixed windows of the
// configured length. Entries for elapsed windows are evicted lazily on
// each check; cardinality is expected to stay low (one entry per
// client address).
type FixedWindow struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewFixedWindow(max int, window time.Duration) *FixedWindow {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = time.Minute
	}

	return &FixedWindow{
		max:     max,
		window:  window,
		entries: map[string]*entry{},
		now:     time.Now,
	}
}

func (l *FixedWindow) Check(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictLocked(now)

	e, ok := l.entries[key]
	if !ok || !e.windowEnd.After(now) {
		e = &entry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}

	if e.count >= l.max {
		return false, nil
	}

	e.count++
	return true, nil
}

func (l *FixedWindow) evictLocked(now time.Time) {
	for key, e := range l.entries {
		if !e.windowEnd.After(now) {
			delete(l.entries, key)
		}
	}
}
