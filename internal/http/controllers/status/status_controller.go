// Package status expone GET / (dashboard) y GET /healthz.
package status

import (
	"net/http"

	dto "github.com/dropDatabas3/mailjohn/internal/http/dto/status"
	"github.com/dropDatabas3/mailjohn/internal/http/helpers"
	svc "github.com/dropDatabas3/mailjohn/internal/http/services/status"
)

// StatusController maneja dashboard y health check.
type StatusController struct {
	service svc.Service
}

// NewStatusController crea un nuevo controller de estado.
func NewStatusController(service svc.Service) *StatusController {
	return &StatusController{service: service}
}

// Dashboard maneja GET /
func (c *StatusController) Dashboard(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Dashboard(r.Context()))
}

// Health maneja GET /healthz
func (c *StatusController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}
