package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/unclebandit/framestorm-backend/internal/logger"
	"github.com/unclebandit/framestorm-backend/internal/metrics"
	"github.com/unclebandit/framestorm-backend/internal/session"
)

// RequestLogger logs every request and records its latency under the matched
// route pattern.
func RequestLogger(next http.Handler) http.Handler {
	log := logger.Get("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(status), elapsed.Seconds())

		fields := logrus.Fields{
			"method":   r.Method,
			"route":    route,
			"status":   status,
			"duration": elapsed.String(),
			"bytes":    ww.BytesWritten(),
		}
		if id, ok := session.FromContext(r.Context()); ok {
			fields["owner"] = id.OwnerID
		}
		entry := log.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	})
}

// RateLimiter hands each owner a token bucket. Requests without an identity
// share the bucket keyed by remote address.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*bucket),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.limiters[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = b
	}
	b.seen = l.now()
	return b.lim
}

// Handler rejects requests over the owner's rate with 429.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if id, ok := session.FromContext(r.Context()); ok {
			key = id.OwnerID
		}
		if !l.limiter(key).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("{\"error\":\"rate limit exceeded\"}\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EvictIdle drops buckets not used within ttl and returns how many went.
// An evicted owner starts again with a full burst.
func (l *RateLimiter) EvictIdle(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-ttl)
	n := 0
	for key, b := range l.limiters {
		if b.seen.Before(cutoff) {
			delete(l.limiters, key)
			n++
		}
	}
	return n
}
