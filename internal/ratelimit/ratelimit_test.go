package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydevup/research-email-multi-agent-system/internal/ratelimit"
)

func newTestLimiter(maxRequests int, window time.Duration) (*ratelimit.Limiter, *time.Time) {
	l := ratelimit.NewLimiter(map[string]ratelimit.Rule{
		"search": {MaxRequests: maxRequests, Window: window},
	})

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return current })

	return l, &current
}

func TestAllowUnknownService(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	err := l.Allow("unknown")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ratelimit.ErrRateLimitExceeded)
}

func TestAllowRejectsWhenQuotaExhausted(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow("search"))
	}

	err := l.Allow("search")
	require.ErrorIs(t, err, ratelimit.ErrRateLimitExceeded)
}

func TestWindowResetAfterElapse(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	require.NoError(t, l.Allow("search"))
	require.NoError(t, l.Allow("search"))
	require.ErrorIs(t, l.Allow("search"), ratelimit.ErrRateLimitExceeded)

	*clock = clock.Add(61 * time.Second)

	require.NoError(t, l.Allow("search"))
	require.NoError(t, l.Allow("search"))
	require.ErrorIs(t, l.Allow("search"), ratelimit.ErrRateLimitExceeded)
}

func TestWindowNotResetWithinWindow(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	require.NoError(t, l.Allow("search"))

	*clock = clock.Add(30 * time.Second)
	require.ErrorIs(t, l.Allow("search"), ratelimit.ErrRateLimitExceeded)
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.NoError(t, l.Allow("search"))
	require.ErrorIs(t, l.Allow("search"), ratelimit.ErrRateLimitExceeded)

	l.Reset("search")
	require.NoError(t, l.Allow("search"))

	l.Reset("")
	require.NoError(t, l.Allow("search"))
}
