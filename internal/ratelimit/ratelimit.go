package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneAfter is how long an idle client entry survives before lazy pruning
// drops it.
const pruneAfter = 15 * time.Minute

// entry tracks the limiter state for a single client.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter enforces a per-client request rate, keyed by client IP. It guards
// the credential endpoints against brute-force attempts. Idle entries are
// pruned lazily on access rather than by a background goroutine.
type Limiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	rate      rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time // injectable clock for testing
}

// New creates a Limiter that allows perMinute requests per minute with the
// given burst per client key.
func New(perMinute, burst int) *Limiter {
	return &Limiter{
		entries:   make(map[string]*entry),
		rate:      rate.Limit(float64(perMinute) / 60.0),
		burst:     burst,
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether a request from key is permitted and consumes one
// token when it is.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked client entries. For tests.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// prune drops entries idle for longer than pruneAfter. Must be called with
// l.mu held. Runs at most once per pruneAfter to keep Allow cheap.
func (l *Limiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < pruneAfter {
		return
	}
	l.lastPrune = now
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > pruneAfter {
			delete(l.entries, key)
		}
	}
}
