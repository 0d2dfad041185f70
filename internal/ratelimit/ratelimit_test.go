package ratelimit

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestCheckAllowsUpToLimit(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		res := l.Check("login:1.2.3.4", 5, time.Minute)
		if !res.Allowed {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
		if res.Remaining != 5-(i+1) {
			t.Errorf("attempt %d: remaining = %d, want %d", i+1, res.Remaining, 5-(i+1))
		}
	}

	res := l.Check("login:1.2.3.4", 5, time.Minute)
	if res.Allowed {
		t.Fatal("6th attempt: expected rejection")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %d, want positive", res.RetryAfter)
	}
}

func TestCheckKeysAreIndependent(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Check("login:1.1.1.1", 5, time.Minute)
	}
	if res := l.Check("login:2.2.2.2", 5, time.Minute); !res.Allowed {
		t.Fatal("different key should not share the exhausted budget")
	}
}

func TestWindowExpiryResetsCount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		l.Check("k", 5, 15*time.Minute)
	}
	if res := l.Check("k", 5, 15*time.Minute); res.Allowed {
		t.Fatal("expected rejection inside window")
	}

	// Cross the window boundary: the next attempt starts a new window.
	now = now.Add(15*time.Minute + time.Second)
	res := l.Check("k", 5, 15*time.Minute)
	if !res.Allowed {
		t.Fatal("expected fresh window after expiry")
	}
	if res.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", res.Remaining)
	}
}

func TestRetryAfterRoundsUp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	l.Check("k", 1, time.Minute)
	now = now.Add(59*time.Second + 500*time.Millisecond) // 500ms left in window
	res := l.Check("k", 1, time.Minute)
	if res.Allowed {
		t.Fatal("expected rejection")
	}
	if res.RetryAfter != 1 {
		t.Errorf("RetryAfter = %d, want 1 (ceil of 0.5s)", res.RetryAfter)
	}
}

func TestConcurrentChecksDoNotLoseIncrements(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	allowed := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Check("k", 5, time.Minute).Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 5 {
		t.Errorf("allowed %d of 100 concurrent attempts, want exactly 5", count)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded-for single", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"forwarded-for chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real-ip fallback", map[string]string{"X-Real-Ip": "198.51.100.2"}, "198.51.100.2"},
		{"no proxy headers", nil, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/login", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
