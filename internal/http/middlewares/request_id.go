package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// WithRequestID asegura que todo request tenga un ID: respeta el que
// trae el cliente y genera un uuid cuando falta. El ID sale en el header
// de respuesta y queda en el contexto para los logs.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if rid == "" {
				rid = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
