// Package ratelimit enforces a per-caller cooldown between accepted requests.
package ratelimit

import (
	"sync"
	"time"
)

// sweepThreshold is the map size past which Allow drops expired entries,
// at most once per cooldown.
const sweepThreshold = 1024

// Limiter admits a caller at most once per cooldown. The zero value is not
// usable; create one with New. A Limiter is safe for concurrent use.
type Limiter struct {
	cooldown time.Duration
	now      func() time.Time

	mu        sync.Mutex
	last      map[int64]time.Time
	lastSweep time.Time
}

// New creates a limiter with the given cooldown.
func New(cooldown time.Duration) *Limiter {
	return &Limiter{
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[int64]time.Time),
	}
}

// Allow reports whether id may proceed now. An unseen id always may. On
// success the time is recorded and the cooldown restarts; a denied call
// leaves the record untouched.
func (l *Limiter) Allow(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if t, ok := l.last[id]; ok && now.Sub(t) < l.cooldown {
		return false
	}

	// At most one automatic sweep per cooldown.
	if len(l.last) >= sweepThreshold && now.Sub(l.lastSweep) >= l.cooldown {
		l.sweepLocked(now)
	}
	l.last[id] = now
	return true
}

// Remaining returns the whole seconds, rounded down, until id may proceed
// again. It is 0 for unseen ids and expired cooldowns.
func (l *Limiter) Remaining(id int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.last[id]
	if !ok {
		return 0
	}
	left := l.cooldown - l.now().Sub(t)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// Sweep forgets callers whose cooldown has elapsed.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(l.now())
}

// Len returns the number of callers currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}

func (l *Limiter) sweepLocked(now time.Time) {
	l.lastSweep = now
	for id, t := range l.last {
		if now.Sub(t) >= l.cooldown {
			delete(l.last, id)
		}
	}
}
