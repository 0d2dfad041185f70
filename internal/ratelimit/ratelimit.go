// Package ratelimit implements the fixed-window-with-reset counter that
// guards the login endpoint. The first action for a key opens a window;
// actions inside the window increment a counter; crossing the window
// boundary resets the count to 1. This is an approximation of a sliding
// window, good enough for a low-traffic login gate.
//
// State is process-local and lost on restart. Multi-instance deployments
// get per-instance budgets; move the map behind a shared store if that
// ever matters.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Login endpoint preset: 5 attempts per 15-minute window per client key.
const (
	LoginLimit  = 5
	LoginWindow = 15 * time.Minute
)

// Result reports the outcome of a Check call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter int // seconds until the window resets, 0 when allowed
}

type record struct {
	count   int
	resetAt time.Time
}

// Limiter counts actions per key within rolling windows.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

// New returns an empty limiter.
func New() *Limiter {
	return &Limiter{records: make(map[string]*record), now: time.Now}
}

// NewWithClock returns a limiter using the given clock. Tests use this to
// cross window boundaries without sleeping.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{records: make(map[string]*record), now: now}
}

// Check records one action for key and reports whether it is allowed under
// limit actions per window. Counting is atomic per key: concurrent calls
// never lose increments.
func (l *Limiter) Check(key string, limit int, window time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[key]

	// No record, or the window has already expired: start fresh.
	if !ok || now.After(rec.resetAt) {
		l.records[key] = &record{count: 1, resetAt: now.Add(window)}
		return Result{Allowed: true, Remaining: limit - 1}
	}

	if rec.count >= limit {
		retryAfter := int((rec.resetAt.Sub(now) + time.Second - 1) / time.Second)
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}
	}

	rec.count++
	return Result{Allowed: true, Remaining: limit - rec.count}
}

// ClientIP extracts the most reliable client address from proxy headers.
// Without a proxy it falls back to "unknown", which means all un-proxied
// clients share a single bucket.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	return "unknown"
}

// LoginKey composes the rate-limit key for a login attempt from the given
// client address.
func LoginKey(clientIP string) string {
	return "login:" + clientIP
}
