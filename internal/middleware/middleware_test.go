package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/framestorm-backend/internal/session"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimiterPerOwner(t *testing.T) {
	l := NewRateLimiter(0.0001, 2)
	h := l.Handler(http.HandlerFunc(ok))

	call := func(owner string) int {
		req := httptest.NewRequest(http.MethodPost, "/dashboard/generate", nil)
		req = req.WithContext(session.WithIdentity(req.Context(), session.Identity{OwnerID: owner}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("user-1"))
	assert.Equal(t, http.StatusOK, call("user-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("user-1"))
	assert.Equal(t, http.StatusOK, call("user-2"))

}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	l := NewRateLimiter(0.0001, 1)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	h := l.Handler(http.HandlerFunc(ok))

	call := func(owner string) int {
		req := httptest.NewRequest(http.MethodPost, "/dashboard/generate", nil)
		req = req.WithContext(session.WithIdentity(req.Context(), session.Identity{OwnerID: owner}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("user-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("user-1"))

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, http.StatusOK, call("user-2"))

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, 1, l.EvictIdle(30*time.Minute))
	assert.Equal(t, http.StatusOK, call("user-1"))
	assert.Equal(t, 0, l.EvictIdle(30*time.Minute))
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Get("/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/campaigns/abc", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
