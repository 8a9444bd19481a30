// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is a fixed-window request counter keyed by an arbitrary string.
type Counter interface {
	Allow(ctx context.Context, key string) bool
	Reset(ctx context.Context, key string)
}

// Limiter is the in-process Counter. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	stop     chan struct{}
	once     sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates an in-process limiter allowing limit requests per duration.
// Call Stop to end its cleanup goroutine.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow reports whether a request for key fits in the current window.
func (l *Limiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || time.Now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset clears the window for key.
func (l *Limiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RedisLimiter is a Counter shared by every instance using the same Redis.
// Each window is an INCR'd key that expires with the window. Redis errors
// fail open so an outage does not lock everyone out.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	limit    int
	duration time.Duration
}

// NewRedis creates a Redis-backed limiter. prefix namespaces its keys.
func NewRedis(client *redis.Client, prefix string, limit int, duration time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, duration: duration}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	k := l.prefix + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		_ = l.client.Expire(ctx, k, l.duration).Err()
	}
	return n <= int64(l.limit)
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) {
	_ = l.client.Del(ctx, l.prefix+key).Err()
}

// Rate is a parsed "N/duration" limit such as "10/1m".
type Rate struct {
	Limit  int
	Window time.Duration
}

// ParseRate parses "N/duration" (e.g. "10/1m", "5/5m").
func ParseRate(s string) (Rate, error) {
	n, d, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("rate %q: want N/duration", s)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("rate %q: limit must be a positive integer", s)
	}
	window, err := time.ParseDuration(strings.TrimSpace(d))
	if err != nil || window <= 0 {
		return Rate{}, fmt.Errorf("rate %q: window must be a positive duration", s)
	}
	return Rate{Limit: limit, Window: window}, nil
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter provides specialized rate limiting for login attempts.
// It tracks both IP-based and email-based limits to prevent:
// - Distributed attacks from multiple IPs
// - Targeted attacks on specific accounts
type LoginLimiter struct {
	ip    Counter
	email Counter
}

// DefaultIPRate and DefaultEmailRate apply when no rate is configured.
var (
	DefaultIPRate    = Rate{Limit: 10, Window: time.Minute}
	DefaultEmailRate = Rate{Limit: 5, Window: 5 * time.Minute}
)

// NewLoginLimiter creates an in-process login limiter.
func NewLoginLimiter(ipRate, emailRate Rate) *LoginLimiter {
	return &LoginLimiter{
		ip:    New(ipRate.Limit, ipRate.Window),
		email: New(emailRate.Limit, emailRate.Window),
	}
}

// NewRedisLoginLimiter creates a login limiter shared through Redis.
func NewRedisLoginLimiter(client *redis.Client, ipRate, emailRate Rate) *LoginLimiter {
	return &LoginLimiter{
		ip:    NewRedis(client, "applytrack:ratelimit:login:ip:", ipRate.Limit, ipRate.Window),
		email: NewRedis(client, "applytrack:ratelimit:login:email:", emailRate.Limit, emailRate.Window),
	}
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	ctx := r.Context()
	if !ll.ip.Allow(ctx, ClientIP(r)) {
		return false, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if key := emailKey(email); key != "" {
		if !ll.email.Allow(ctx, key) {
			return false, "Too many sign-in attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the email window after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(ctx context.Context, email string) {
	if key := emailKey(email); key != "" {
		ll.email.Reset(ctx, key)
	}
}

// Stop releases in-process limiter goroutines.
func (ll *LoginLimiter) Stop() {
	for _, c := range []Counter{ll.ip, ll.email} {
		if l, ok := c.(*Limiter); ok {
			l.Stop()
		}
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
