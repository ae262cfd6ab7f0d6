package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// El handler de /metrics tiene que servir exactamente lo que Register
// registró: contadores registrados pero no expuestos son invisibles para
// el scraper.
func TestRegisterHandlerExposesCounters(t *testing.T) {
	h, err := Register()
	require.NoError(t, err)

	AuthAttempt(true)
	AuthAttempt(false)
	Messages(2, 1)
	ObserveHTTP(http.MethodPost, "/send", http.StatusOK, 0.05)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "mailjohn_auth_attempts_total")
	require.Contains(t, body, "mailjohn_tokens_issued_total")
	require.Contains(t, body, "mailjohn_messages_total")
	require.Contains(t, body, "http_requests_total")
}

func TestRegisterIsIdempotent(t *testing.T) {
	h1, err := Register()
	require.NoError(t, err)
	h2, err := Register()
	require.NoError(t, err)
	require.NotNil(t, h1)
	require.NotNil(t, h2)
}
