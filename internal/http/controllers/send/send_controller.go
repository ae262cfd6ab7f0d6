// Package send expone el endpoint POST /send.
package send

import (
	"errors"
	"fmt"
	"net/http"

	dto "github.com/dropDatabas3/mailjohn/internal/http/dto/send"
	httperrors "github.com/dropDatabas3/mailjohn/internal/http/errors"
	"github.com/dropDatabas3/mailjohn/internal/http/helpers"
	svc "github.com/dropDatabas3/mailjohn/internal/http/services/send"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
)

// tokenHeader lleva el token opaco emitido por /auth.
const tokenHeader = "X-Token"

// SendController maneja el endpoint de envío.
type SendController struct {
	service svc.Service
}

// NewSendController crea un nuevo controller de envío.
func NewSendController(service svc.Service) *SendController {
	return &SendController{service: service}
}

// Send maneja POST /send
func (c *SendController) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SendController.Send"))

	var req dto.SendRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	// El header manda; el campo token del body queda como fallback para
	// clientes viejos.
	token := r.Header.Get(tokenHeader)
	if token == "" {
		token = req.Token
	}
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}

	result, err := c.service.Send(ctx, token, req)
	if err != nil {
		log.Debug("send rejected", logger.Err(err))
		writeSendError(w, err)
		return
	}

	resp := dto.SendResponse{
		Sent:   result.Sent,
		Failed: result.Failed,
	}
	if result.Err != nil {
		// falla total: ningún mensaje salió
		if result.Sent == 0 {
			httperrors.WriteError(w, httperrors.ErrSendFailed.WithDetail(result.Err.Error()))
			return
		}
		// falla parcial: se reporta lo enviado junto con la causa
		resp.Message = fmt.Sprintf("%d enviados, %d fallidos", result.Sent, result.Failed)
		resp.Error = result.Err.Error()
	} else {
		resp.Message = fmt.Sprintf("%d enviados", result.Sent)
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}

func writeSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tokenstore.ErrTokenExpired):
		httperrors.WriteError(w, httperrors.ErrTokenExpired)

	case errors.Is(err, tokenstore.ErrTokenNotFound):
		httperrors.WriteError(w, httperrors.ErrTokenNotFound)

	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("recipients y subject son obligatorios"))

	case errors.Is(err, svc.ErrRepeatOutOfRange):
		httperrors.WriteError(w, httperrors.ErrRepeatOutOfRange.WithDetail(err.Error()))

	case errors.Is(err, svc.ErrCredentialCorrupt):
		httperrors.WriteError(w, httperrors.ErrCredentialCorrupt)

	case errors.Is(err, svc.ErrSendFailed):
		httperrors.WriteError(w, httperrors.ErrSendFailed.WithDetail(err.Error()))

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
