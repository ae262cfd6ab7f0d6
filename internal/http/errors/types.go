package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs
}

// Error implementa la interfaz error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original.
func (e *AppError) Unwrap() error {
	return e.Err
}

// FromError intenta convertir un error genérico en un AppError.
// Si no lo es, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail agrega detalle adicional. Devuelve una COPIA del error para
// no mutar las variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	// 400
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos requeridos en la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrRepeatOutOfRange = &AppError{
		Code:       "REPEAT_OUT_OF_RANGE",
		Message:    "El campo repeat está fuera del rango permitido.",
		HTTPStatus: http.StatusBadRequest,
	}

	// 401
	ErrAuthFailed = &AppError{
		Code:       "AUTH_FAILED",
		Message:    "Las credenciales SMTP no fueron aceptadas por el proveedor.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "Falta el header X-Token.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenNotFound = &AppError{
		Code:       "TOKEN_NOT_FOUND",
		Message:    "El token no existe. Vuelva a autenticarse.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "El token expiró. Vuelva a autenticarse.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// 404 / 405
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido para este recurso.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	// 429
	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Demasiadas solicitudes. Intente de nuevo más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// 5xx
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Error interno del servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrCredentialCorrupt = &AppError{
		Code:       "CREDENTIAL_CORRUPT",
		Message:    "Las credenciales almacenadas no pudieron descifrarse.",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrSendFailed = &AppError{
		Code:       "SEND_FAILED",
		Message:    "El envío SMTP falló.",
		HTTPStatus: http.StatusBadGateway,
	}
)
