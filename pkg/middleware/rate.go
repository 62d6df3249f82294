// Package middleware provides the HTTP middleware stack: request logging,
// panic recovery, CORS, per-IP rate limiting, and bearer-token auth.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kasirin/kasirin/pkg/response"
)

// limiter counts requests per client over a fixed window.
type limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*counter
}

type counter struct {
	count   int
	resetAt time.Time
}

func newLimiter(max int, window time.Duration) *limiter {
	l := &limiter{
		max:     max,
		window:  window,
		buckets: make(map[string]*counter),
	}
	go l.janitor()
	return l
}

// allow counts one request and reports whether it fits the window.
// The second return is the seconds until the window resets.
func (l *limiter) allow(key string) (bool, int) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &counter{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}

	b.count++
	return b.count <= l.max, int(time.Until(b.resetAt).Seconds()) + 1
}

// janitor evicts expired windows so the map does not grow without bound.
func (l *limiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for key, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// clientKey identifies the caller: the first forwarded address when
// behind a proxy, otherwise the peer IP without the port.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits each client to max requests per window and answers
// 429 with a Retry-After header beyond that.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(max, window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retryAfter := l.allow(clientKey(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
