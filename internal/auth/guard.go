package auth

import "sync"

// LoginGuard blocks further authentication attempts after a run of
// consecutive failures. The counter lives in memory only; it is the caller's
// policy, not the session's.
type LoginGuard struct {
	mu       sync.Mutex
	failures int
	limit    int
}

// NewLoginGuard creates a guard locking after limit consecutive failures.
func NewLoginGuard(limit int) *LoginGuard {
	if limit <= 0 {
		limit = 3
	}
	return &LoginGuard{limit: limit}
}

// Locked reports whether attempts are currently blocked.
func (g *LoginGuard) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures >= g.limit
}

// RecordFailure counts a failed attempt and reports whether the guard is now
// locked.
func (g *LoginGuard) RecordFailure() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures++
	return g.failures >= g.limit
}

// Reset clears the failure counter. Called on success or explicit re-entry.
func (g *LoginGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
}
