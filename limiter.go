package churchsite

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxTrackedIPs bounds the memory the limiter can use under a spray of
// addresses; the least recently seen IPs are forgotten first.
const maxTrackedIPs = 10000

// LoginLimiter rate-limits attempts per IP address. The admin login records
// failures only; visitor forms count every post through Allow. Attempt
// histories expire with the window.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts *expirable.LRU[string, []time.Time]
	max      int
	window   time.Duration
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		attempts: expirable.NewLRU[string, []time.Time](maxTrackedIPs, nil, window),
		max:      max,
		window:   window,
	}
}

// Allow checks if the IP has not exceeded the rate limit and records the attempt.
func (l *LoginLimiter) Allow(ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt; call Record separately on failure.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent(ip)) < l.max
}

// Record registers a failed login attempt for the given IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts.Add(ip, append(l.recent(ip), time.Now()))
}

// Reset forgets the attempts of ip, typically after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	l.attempts.Remove(ip)
	l.mu.Unlock()
}

// Purge forgets every IP.
func (l *LoginLimiter) Purge() {
	l.mu.Lock()
	l.attempts.Purge()
	l.mu.Unlock()
}

// recent returns the attempts of ip inside the window. Callers hold mu.
func (l *LoginLimiter) recent(ip string) []time.Time {
	hits, ok := l.attempts.Peek(ip)
	if !ok {
		return nil
	}
	cutoff := time.Now().Add(-l.window)
	kept := make([]time.Time, 0, len(hits))
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
