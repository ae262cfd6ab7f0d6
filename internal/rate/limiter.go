// Package rate implementa limitación de tasa por ventana fija sobre
// Redis. Se usa para frenar fuerza bruta contra /auth y abuso de /send.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result es la respuesta del limiter para un hit.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	WindowTTL  time.Duration
	Hits       int64
}

// Limiter decide si un hit identificado por key entra o espera.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter cuenta hits por clave dentro de ventanas fijas alineadas
// al reloj. La clave redis incluye el inicio de la ventana, así expira
// sola y dos réplicas comparten el mismo contador.
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter crea un limiter de max hits por window.
func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "mailjohn:rl:"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	bucket := time.Now().UTC().Truncate(l.window).Unix()
	k := fmt.Sprintf("%s%s:%d", l.prefix, sanitizeKey(key), bucket)

	hits, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	if hits == 1 {
		// primer hit de la ventana: la clave muere con ella
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Result{}, err
		}
	}

	res := Result{Allowed: hits <= l.max, Hits: hits}
	if rem := l.max - hits; rem > 0 {
		res.Remaining = rem
	}
	if ttl, err := l.client.TTL(ctx, k).Result(); err == nil && ttl > 0 {
		res.WindowTTL = ttl
	}
	if !res.Allowed {
		res.RetryAfter = res.WindowTTL
		if res.RetryAfter <= 0 {
			res.RetryAfter = l.window
		}
	}
	return res, nil
}

func sanitizeKey(key string) string {
	return strings.ReplaceAll(key, " ", "_")
}
