// Package middlewares contiene los decoradores HTTP del servicio:
// recover, request id, headers de seguridad, logging y rate limiting.
package middlewares

import "net/http"

// Middleware decora un http.Handler. El router los apila con Use, de
// afuera hacia adentro.
type Middleware func(http.Handler) http.Handler
