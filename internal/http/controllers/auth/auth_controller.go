// Package auth expone el endpoint POST /auth.
package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/mailjohn/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/mailjohn/internal/http/errors"
	"github.com/dropDatabas3/mailjohn/internal/http/helpers"
	svc "github.com/dropDatabas3/mailjohn/internal/http/services/auth"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
)

// AuthController maneja el endpoint de autenticación.
type AuthController struct {
	service svc.Service
}

// NewAuthController crea un nuevo controller de autenticación.
func NewAuthController(service svc.Service) *AuthController {
	return &AuthController{service: service}
}

// Authenticate maneja POST /auth
func (c *AuthController) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Authenticate"))

	var req dto.AuthRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		log.Debug("auth failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.AuthResponse{
		Token:          result.Token,
		ExpiresInHours: int(result.TTL.Hours()),
		SenderEmail:    result.SenderEmail,
		Message:        "authenticated",
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email y password son obligatorios"))

	case errors.Is(err, svc.ErrAuthenticationFailed):
		httperrors.WriteError(w, httperrors.ErrAuthFailed)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
