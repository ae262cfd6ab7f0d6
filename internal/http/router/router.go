// Package router arma el árbol de rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/mailjohn/internal/http/controllers/auth"
	sendctrl "github.com/dropDatabas3/mailjohn/internal/http/controllers/send"
	statusctrl "github.com/dropDatabas3/mailjohn/internal/http/controllers/status"
	httperrors "github.com/dropDatabas3/mailjohn/internal/http/errors"
	mw "github.com/dropDatabas3/mailjohn/internal/http/middlewares"
	"github.com/dropDatabas3/mailjohn/internal/rate"
)

// Deps contiene todo lo que el router necesita para registrar rutas.
type Deps struct {
	// Controllers
	Auth   *authctrl.AuthController
	Send   *sendctrl.SendController
	Status *statusctrl.StatusController

	// MetricsHandler sirve /metrics; nil deshabilita la ruta.
	MetricsHandler http.Handler

	// Rate limiters por endpoint; nil = sin límite.
	AuthLimiter rate.Limiter
	SendLimiter rate.Limiter
}

// New construye el router con todas las rutas y middlewares registrados.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares globales, de afuera hacia adentro: el recover envuelve
	// todo, el request id tiene que existir antes del logging.
	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithSecurityHeaders())
	r.Use(mw.WithLogging())

	r.Get("/", deps.Status.Dashboard)
	r.Get("/healthz", deps.Status.Health)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// /auth lleva credenciales en el body: nunca se cachea y se limita
	// por IP para frenar fuerza bruta contra el proveedor.
	r.Group(func(g chi.Router) {
		g.Use(mw.WithNoStore())
		g.Use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: deps.AuthLimiter,
			KeyFunc: mw.IPOnlyRateKey,
		}))
		g.Post("/auth", deps.Auth.Authenticate)
	})

	r.Group(func(g chi.Router) {
		g.Use(mw.WithNoStore())
		g.Use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: deps.SendLimiter,
			KeyFunc: mw.IPOnlyRateKey,
		}))
		g.Post("/send", deps.Send.Send)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	return r
}
