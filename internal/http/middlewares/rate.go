package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/mailjohn/internal/http/errors"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
	"github.com/dropDatabas3/mailjohn/internal/rate"
)

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc deriva la clave de rate limiting de un request.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey limita por IP de cliente.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r)
}

// IPPathRateKey limita por IP + path.
func IPPathRateKey(r *http.Request) string {
	return clientIP(r) + ":" + r.URL.Path
}

// RateLimitConfig configura el comportamiento del middleware.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
}

// WithRateLimit crea un middleware de rate limiting.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		// Si no hay limiter, no hacemos nada
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPPathRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				// fail-open: un limiter caído no debe tirar el servicio
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				errors.WriteError(w, errors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
