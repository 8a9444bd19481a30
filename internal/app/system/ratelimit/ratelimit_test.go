package ratelimit_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := ratelimit.New(3, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "k"))
	assert.True(t, l.Allow(ctx, "k"))
	assert.True(t, l.Allow(ctx, "k"))
	assert.False(t, l.Allow(ctx, "k"))
	assert.Equal(t, 0, l.Remaining("k"))

	assert.True(t, l.Allow(ctx, "other"), "keys are independent")
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := ratelimit.New(1, 20*time.Millisecond)
	defer l.Stop()
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "k"))
	assert.False(t, l.Allow(ctx, "k"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow(ctx, "k"))
}

func TestLimiter_Reset(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	l.Allow(ctx, "k")
	l.Reset(ctx, "k")
	assert.Equal(t, 1, l.Remaining("k"))
	assert.True(t, l.Allow(ctx, "k"))
}

func TestLimiter_StopTwice(t *testing.T) {
	l := ratelimit.New(1, time.Minute)
	l.Stop()
	l.Stop()
}

func TestParseRate(t *testing.T) {
	r, err := ratelimit.ParseRate("10/1m")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.Rate{Limit: 10, Window: time.Minute}, r)

	r, err = ratelimit.ParseRate(" 5 / 5m ")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Limit)

	for _, bad := range []string{"", "10", "x/1m", "0/1m", "10/abc", "10/-1m"} {
		_, err := ratelimit.ParseRate(bad)
		assert.Error(t, err, bad)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ratelimit.ClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ratelimit.ClientIP(r))

	r.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", ratelimit.ClientIP(r))
}

func TestLoginLimiter_EmailLimitAndReset(t *testing.T) {
	ll := ratelimit.NewLoginLimiter(
		ratelimit.Rate{Limit: 100, Window: time.Minute},
		ratelimit.Rate{Limit: 2, Window: time.Minute},
	)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/login", nil)

	ok, _ := ll.Check(r, "Sam@Example.com")
	assert.True(t, ok)
	ok, _ = ll.Check(r, "sam@example.com ")
	assert.True(t, ok)
	ok, reason := ll.Check(r, "SAM@example.com")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	ll.ResetEmail(context.Background(), "sam@example.com")
	ok, _ = ll.Check(r, "sam@example.com")
	assert.True(t, ok)
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiter(
		ratelimit.Rate{Limit: 1, Window: time.Minute},
		ratelimit.Rate{Limit: 100, Window: time.Minute},
	)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/login", nil)
	ok, _ := ll.Check(r, "a@example.com")
	assert.True(t, ok)
	ok, _ = ll.Check(r, "b@example.com")
	assert.False(t, ok)
}
