// Package ratelimit applies a per-client sliding window to the query
// endpoints. Scans over the dataset are cheap but not free; the window keeps
// one misbehaving client from monopolizing the process. In-memory only, so
// limits are per instance, not fleet-wide.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter tracks request timestamps per client key over a sliding window.
// The sliding window avoids the burst-at-boundary problem of fixed windows.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*windowState
}

type windowState struct {
	timestamps []time.Time
}

// New builds a limiter allowing limit requests per window per client.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*windowState),
	}
}

// Allow records a request for the key and reports whether it fits the
// window, along with the remaining quota and the time the oldest slot frees
// up.
func (l *Limiter) Allow(key string) (allowed bool, remaining int, retryAt time.Time) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.clients[key]
	if st == nil {
		st = &windowState{}
		l.clients[key] = st
	}
	st.evict(now.Add(-l.window))

	if len(st.timestamps) >= l.limit {
		return false, 0, st.timestamps[0].Add(l.window)
	}

	st.timestamps = append(st.timestamps, now)
	return true, l.limit - len(st.timestamps), now.Add(l.window)
}

func (st *windowState) evict(cutoff time.Time) {
	i := 0
	for ; i < len(st.timestamps); i++ {
		if st.timestamps[i].After(cutoff) {
			break
		}
	}
	st.timestamps = st.timestamps[i:]
}

// Middleware enforces the limiter keyed by client IP, answering 429 with
// rate limit headers when the window is full. A nil limiter disables the
// check.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, retryAt := l.Allow(clientKey(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(retryAt).Seconds())+1))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by IP, falling back to the whole
// RemoteAddr when it does not split.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
