package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Dominio
	authAttemptsTotal *prometheus.CounterVec
	tokensIssuedTotal prometheus.Counter
	messagesTotal     *prometheus.CounterVec
)

// Register inicializa las métricas en el registry default del proceso y
// devuelve el handler para /metrics. El handler sirve el gatherer
// default, por eso no se acepta un registry custom.
func Register() (http.Handler, error) {
	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		authAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailjohn_auth_attempts_total",
			Help: "Intentos de autenticación SMTP por resultado",
		}, []string{"result"}) // result: ok|failed

		tokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailjohn_tokens_issued_total",
			Help: "Tokens emitidos tras login SMTP exitoso",
		})

		messagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailjohn_messages_total",
			Help: "Mensajes SMTP por resultado",
		}, []string{"result"}) // result: sent|failed

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration,
			authAttemptsTotal, tokensIssuedTotal, messagesTotal,
		} {
			if err := registerCollector(prometheus.DefaultRegisterer, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	return promhttp.Handler(), nil
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	return nil
}

// ObserveHTTP registra un request terminado. No-op si Register no corrió.
func ObserveHTTP(method, path string, status int, seconds float64) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// AuthAttempt cuenta un intento de autenticación.
func AuthAttempt(ok bool) {
	if authAttemptsTotal == nil {
		return
	}
	if ok {
		authAttemptsTotal.WithLabelValues("ok").Inc()
		tokensIssuedTotal.Inc()
	} else {
		authAttemptsTotal.WithLabelValues("failed").Inc()
	}
}

// Messages cuenta mensajes enviados y fallidos.
func Messages(sent, failed int) {
	if messagesTotal == nil {
		return
	}
	if sent > 0 {
		messagesTotal.WithLabelValues("sent").Add(float64(sent))
	}
	if failed > 0 {
		messagesTotal.WithLabelValues("failed").Add(float64(failed))
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
