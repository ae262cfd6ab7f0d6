// Package auth implementa el flujo de autenticación: login SMTP real,
// cifrado de credenciales y emisión de token.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/mailjohn/internal/credentials"
	"github.com/dropDatabas3/mailjohn/internal/metrics"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
)

// Errores de autenticación
var (
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrAuthenticationFailed = fmt.Errorf("smtp authentication failed")
	ErrTokenIssueFailed     = fmt.Errorf("failed to issue token")
)

// SMTPVerifier es lo mínimo que el service necesita del transporte.
type SMTPVerifier interface {
	Verify(ctx context.Context, cred credentials.Credential) error
}

// Deps contiene las dependencias del auth service.
type Deps struct {
	Store  tokenstore.Store
	Cipher *credentials.Cipher
	SMTP   SMTPVerifier
	TTL    time.Duration
	Stats  *metrics.Stats
}

// Result es el resultado interno de una autenticación exitosa.
type Result struct {
	Token       string
	TTL         time.Duration
	SenderEmail string
}

// Service es el contrato del auth service.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (*Result, error)
}

type service struct {
	deps Deps
}

// NewService crea un auth service.
func NewService(deps Deps) Service {
	return &service{deps: deps}
}

// Authenticate valida el par (email, app password) intentando un login
// SMTP real: es la única verificación posible, no existe endpoint
// independiente. Si el login falla las credenciales no se persisten.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Authenticate"),
	)

	cred := credentials.Credential{Email: email, Password: password}.Normalize()
	if cred.Email == "" || cred.Password == "" {
		return nil, ErrMissingFields
	}

	log = log.With(logger.Sender(cred.Email))

	// Paso 1: login real contra el proveedor
	if err := s.deps.SMTP.Verify(ctx, cred); err != nil {
		log.Info("smtp login rejected")
		s.countAuth(false)
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	// Paso 2: cifrar la credencial (el plaintext muere acá)
	blob, err := s.deps.Cipher.Seal(cred)
	if err != nil {
		log.Error("credential seal failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenIssueFailed, err)
	}

	// Paso 3: emitir token
	token, rec, err := s.deps.Store.Issue(ctx, blob)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenIssueFailed, err)
	}

	s.countAuth(true)
	log.Info("token issued", logger.RecordID(rec.ID), logger.Duration("ttl", s.deps.TTL))

	return &Result{Token: token, TTL: s.deps.TTL, SenderEmail: cred.Email}, nil
}

func (s *service) countAuth(ok bool) {
	if s.deps.Stats != nil {
		s.deps.Stats.CountAuth(ok)
	}
	metrics.AuthAttempt(ok)
}
