package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mailjohn/internal/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// apilar todos los middlewares como lo hace el router
func TestMiddlewareStackComposes(t *testing.T) {
	t.Parallel()

	stack := []Middleware{WithRecover(), WithRequestID(), WithSecurityHeaders(), WithNoStore()}
	h := okHandler()
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestWithRequestID_GeneratesUUID(t *testing.T) {
	t.Parallel()

	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	_, err := uuid.Parse(seen)
	require.NoError(t, err, "el ID generado es un uuid")
}

func TestWithRequestID_RespectsClientID(t *testing.T) {
	t.Parallel()

	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "cliente-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "cliente-123", seen)
	require.Equal(t, "cliente-123", rec.Header().Get("X-Request-ID"))
}

type fakeLimiter struct {
	res  rate.Result
	err  error
	keys []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (rate.Result, error) {
	f.keys = append(f.keys, key)
	return f.res, f.err
}

func TestWithRateLimit_Allows(t *testing.T) {
	t.Parallel()

	lim := &fakeLimiter{res: rate.Result{Allowed: true, Remaining: 4}}
	h := WithRateLimit(RateLimitConfig{Limiter: lim, KeyFunc: IPOnlyRateKey})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	require.Len(t, lim.keys, 1)
}

func TestWithRateLimit_DeniesWithRetryAfter(t *testing.T) {
	t.Parallel()

	lim := &fakeLimiter{res: rate.Result{Allowed: false, RetryAfter: 30 * time.Second}}
	h := WithRateLimit(RateLimitConfig{Limiter: lim})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "30", rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestWithRateLimit_FailOpenOnLimiterError(t *testing.T) {
	t.Parallel()

	lim := &fakeLimiter{err: errors.New("redis caído")}
	h := WithRateLimit(RateLimitConfig{Limiter: lim})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/send", nil))

	require.Equal(t, http.StatusOK, rec.Code, "sin limiter disponible el servicio sigue")
}

func TestWithRateLimit_NilLimiterIsNoop(t *testing.T) {
	t.Parallel()

	h := WithRateLimit(RateLimitConfig{})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/send", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
}

func TestWithRecover_Returns500JSON(t *testing.T) {
	t.Parallel()

	h := WithRecover()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}
