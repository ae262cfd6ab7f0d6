// Package server construye el handler HTTP completo a partir de la
// configuración: stores, transporte SMTP, services, controllers y rutas.
package server

import (
	"context"
	"fmt"
	"net/http"

	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"github.com/dropDatabas3/mailjohn/internal/config"
	"github.com/dropDatabas3/mailjohn/internal/credentials"
	"github.com/dropDatabas3/mailjohn/internal/email"
	authctrl "github.com/dropDatabas3/mailjohn/internal/http/controllers/auth"
	sendctrl "github.com/dropDatabas3/mailjohn/internal/http/controllers/send"
	statusctrl "github.com/dropDatabas3/mailjohn/internal/http/controllers/status"
	"github.com/dropDatabas3/mailjohn/internal/http/router"
	authsvc "github.com/dropDatabas3/mailjohn/internal/http/services/auth"
	sendsvc "github.com/dropDatabas3/mailjohn/internal/http/services/send"
	statussvc "github.com/dropDatabas3/mailjohn/internal/http/services/status"
	"github.com/dropDatabas3/mailjohn/internal/metrics"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
	"github.com/dropDatabas3/mailjohn/internal/rate"
	"github.com/dropDatabas3/mailjohn/internal/security/secretbox"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
	memstore "github.com/dropDatabas3/mailjohn/internal/tokenstore/memory"
	pgstore "github.com/dropDatabas3/mailjohn/internal/tokenstore/postgres"
	redisstore "github.com/dropDatabas3/mailjohn/internal/tokenstore/redis"
)

const serviceName = "mailjohn"

// Build arma el http.Handler del servicio y devuelve un cleanup que
// cierra store y conexiones. cfg tiene que venir ya validada.
func Build(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	log := logger.L().With(logger.Component("server"))

	key, err := secretbox.ParseKey(cfg.Security.MasterKey)
	if err != nil {
		return nil, nil, fmt.Errorf("master key: %w", err)
	}
	box, err := secretbox.New(key)
	if err != nil {
		return nil, nil, fmt.Errorf("secretbox: %w", err)
	}
	cipher := credentials.NewCipher(box)

	ttl, err := cfg.TokenTTL()
	if err != nil {
		return nil, nil, fmt.Errorf("token ttl: %w", err)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Un cliente redis puede servir a la vez de token store y de rate
	// limiter; se abre una sola conexión.
	var redisClient *rdb.Client
	openRedis := func() *rdb.Client {
		if redisClient == nil {
			redisClient = rdb.NewClient(&rdb.Options{
				Addr: cfg.Store.Redis.Addr,
				DB:   cfg.Store.Redis.DB,
			})
			cleanups = append(cleanups, func() { _ = redisClient.Close() })
		}
		return redisClient
	}

	var store tokenstore.Store
	switch cfg.Store.Kind {
	case "redis":
		store = redisstore.New(openRedis(), cfg.Store.Redis.Prefix, ttl)
	case "postgres":
		pg, err := pgstore.New(ctx, cfg.Store.Postgres.DSN, ttl)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		store = pg
	default:
		store = memstore.New(ttl)
	}
	cleanups = append(cleanups, func() { _ = store.Close() })
	log.Info("token store ready", logger.String("kind", cfg.Store.Kind))

	timeout, err := cfg.SMTPTimeout()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("smtp timeout: %w", err)
	}
	transport := email.NewSMTPTransport(email.Config{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		Timeout:            timeout,
	})

	var sem *semaphore.Weighted
	if cfg.SMTP.MaxSessions > 0 {
		sem = semaphore.NewWeighted(int64(cfg.SMTP.MaxSessions))
	}

	stats := metrics.NewStats()
	metricsHandler, err := metrics.Register()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}

	// Rate limiting sólo con redis disponible; sin él el servicio corre
	// igual, sin límite.
	var authLimiter, sendLimiter rate.Limiter
	if cfg.Rate.Enabled && cfg.Store.Redis.Addr != "" {
		client := openRedis()
		authLimiter = rate.NewRedisLimiter(
			client, "mailjohn:rl:auth:", cfg.Rate.Auth.Limit, config.RateWindow(cfg.Rate.Auth.Window))
		sendLimiter = rate.NewRedisLimiter(
			client, "mailjohn:rl:send:", cfg.Rate.Send.Limit, config.RateWindow(cfg.Rate.Send.Window))
		log.Info("rate limiting enabled")
	}

	authService := authsvc.NewService(authsvc.Deps{
		Store:  store,
		Cipher: cipher,
		SMTP:   transport,
		TTL:    ttl,
		Stats:  stats,
	})
	sendService := sendsvc.NewService(sendsvc.Deps{
		Store:     store,
		Cipher:    cipher,
		SMTP:      transport,
		Sem:       sem,
		MaxRepeat: cfg.Token.MaxRepeat,
		Stats:     stats,
	})
	statusService := statussvc.NewService(statussvc.Deps{
		ServiceName: serviceName,
		SMTPHost:    cfg.SMTP.Host,
		Stats:       stats,
	})

	handler := router.New(router.Deps{
		Auth:           authctrl.NewAuthController(authService),
		Send:           sendctrl.NewSendController(sendService),
		Status:         statusctrl.NewStatusController(statusService),
		MetricsHandler: metricsHandler,
		AuthLimiter:    authLimiter,
		SendLimiter:    sendLimiter,
	})

	return handler, cleanup, nil
}
