// Package ratelimit implements a fixed-window request counter per external
// service. The window resets entirely once it elapses; a burst of the full
// quota is possible right after a reset. This is coarse protection for
// outbound API calls, not precise fairness.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimitExceeded indicates the quota for a service is exhausted within
// the current window.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Rule describes the quota for one service.
type Rule struct {
	MaxRequests int
	Window      time.Duration
}

type window struct {
	lastRequest  time.Time
	requestCount int
}

// Limiter tracks fixed-window counters for a set of named services. A Limiter
// is an injected component: callers that need isolation construct their own
// instance instead of sharing process-wide state.
type Limiter struct {
	mu      sync.Mutex
	rules   map[string]Rule
	windows map[string]*window
	now     func() time.Time
}

// NewLimiter creates a Limiter with the given per-service rules.
func NewLimiter(rules map[string]Rule) *Limiter {
	r := make(map[string]Rule, len(rules))
	for name, rule := range rules {
		r[name] = rule
	}

	return &Limiter{
		rules:   r,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow consumes one request from the service's quota. It returns an error
// wrapping ErrRateLimitExceeded when the quota is exhausted, and an error for
// unknown services.
func (l *Limiter) Allow(service string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rule, ok := l.rules[service]
	if !ok {
		return fmt.Errorf("no rate limit rule for service %q", service)
	}

	w, ok := l.windows[service]
	if !ok {
		w = &window{}
		l.windows[service] = w
	}

	now := l.now()
	if now.Sub(w.lastRequest) > rule.Window {
		w.requestCount = 0
		w.lastRequest = now
	}

	if w.requestCount >= rule.MaxRequests {
		return fmt.Errorf("%w for %s, wait before making more requests", ErrRateLimitExceeded, service)
	}

	w.requestCount++
	w.lastRequest = now

	return nil
}

// Reset clears the counter for one service, or for all services when the name
// is empty. Intended for test harnesses.
func (l *Limiter) Reset(service string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if service == "" {
		l.windows = make(map[string]*window)
		return
	}
	delete(l.windows, service)
}

// SetClock overrides the time source. Tests use it to step across windows
// without sleeping.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
