// Package send implementa el flujo de envío: lookup del token, descifrado
// de credenciales y uno o más envíos SMTP secuenciales.
package send

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/dropDatabas3/mailjohn/internal/credentials"
	"github.com/dropDatabas3/mailjohn/internal/email"
	dto "github.com/dropDatabas3/mailjohn/internal/http/dto/send"
	"github.com/dropDatabas3/mailjohn/internal/metrics"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
	"github.com/dropDatabas3/mailjohn/internal/security/secretbox"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
)

// Errores de envío
var (
	ErrMissingFields     = fmt.Errorf("missing required fields")
	ErrRepeatOutOfRange  = fmt.Errorf("repeat out of range")
	ErrCredentialCorrupt = fmt.Errorf("stored credential corrupt")
	ErrSendFailed        = fmt.Errorf("smtp send failed")
)

// SMTPOpener es lo mínimo que el service necesita del transporte.
type SMTPOpener interface {
	Open(ctx context.Context, cred credentials.Credential) (email.Session, error)
}

// Deps contiene las dependencias del send service.
type Deps struct {
	Store  tokenstore.Store
	Cipher *credentials.Cipher
	SMTP   SMTPOpener

	// Sem limita las sesiones SMTP concurrentes del proceso; nil = sin tope.
	Sem *semaphore.Weighted

	// MaxRepeat es el tope del campo repeat de un request.
	MaxRepeat int

	Stats *metrics.Stats
}

// Result reporta cuántos envíos salieron antes de una falla. Err es la
// causa de la falla parcial; nil si todos salieron.
type Result struct {
	Sent   int
	Failed int
	Err    error
}

// Service es el contrato del send service.
type Service interface {
	Send(ctx context.Context, token string, req dto.SendRequest) (*Result, error)
}

type service struct {
	deps Deps
}

// NewService crea un send service.
func NewService(deps Deps) Service {
	if deps.MaxRepeat <= 0 {
		deps.MaxRepeat = 25
	}
	return &service{deps: deps}
}

// Send valida token y request, y ejecuta repeat envíos secuenciales sobre
// una única sesión autenticada. El token se resuelve y las credenciales se
// descifran ANTES de abrir cualquier conexión SMTP: un token vencido jamás
// llega a la red.
func (s *service) Send(ctx context.Context, token string, req dto.SendRequest) (*Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("send"),
		logger.Op("Send"),
	)

	// Paso 0: validación
	if token == "" {
		return nil, tokenstore.ErrTokenNotFound
	}
	if len(req.Recipients) == 0 || req.Subject == "" {
		return nil, ErrMissingFields
	}
	repeat := req.Repeat
	if repeat == 0 {
		repeat = 1
	}
	if repeat < 1 || repeat > s.deps.MaxRepeat {
		return nil, fmt.Errorf("%w: %d (máximo %d)", ErrRepeatOutOfRange, repeat, s.deps.MaxRepeat)
	}

	// Paso 1: resolver token. Los errores del store se propagan tal cual:
	// el controller los mapea a fallas de auth del cliente.
	rec, err := s.deps.Store.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	log = log.With(logger.RecordID(rec.ID))

	// Paso 2: descifrar credenciales. Un blob corrupto es un error del
	// lado servidor, nunca se degrada a credencial vacía.
	cred, err := s.deps.Cipher.Open(rec.Ciphertext)
	if err != nil {
		if errors.Is(err, secretbox.ErrDecryptFailed) {
			log.Error("credential blob corrupt", logger.Err(err))
			return nil, fmt.Errorf("%w: %v", ErrCredentialCorrupt, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCredentialCorrupt, err)
	}

	// Paso 3: tope global de sesiones SMTP
	if s.deps.Sem != nil {
		if err := s.deps.Sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.deps.Sem.Release(1)
	}

	// Paso 4: una sesión, repeat envíos secuenciales en orden
	sess, err := s.deps.SMTP.Open(ctx, cred)
	if err != nil {
		log.Warn("smtp dial failed", logger.Err(err))
		s.count(0, 1)
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer sess.Close()

	msg := &email.Message{
		To:      req.Recipients,
		Cc:      req.Cc,
		Bcc:     req.Bcc,
		ReplyTo: req.ReplyTo,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.IsHTML,
	}

	log = log.With(
		logger.Sender(cred.Email),
		logger.Recipients(len(req.Recipients)),
		logger.Repeat(repeat),
	)

	res := &Result{}
	for i := 0; i < repeat; i++ {
		if err := sess.Send(msg); err != nil {
			// fail-stop: reportamos lo que salió y la causa, sin
			// reintentos transparentes
			res.Failed = 1
			res.Err = err
			log.Warn("send failed mid-repeat",
				logger.Int("iteration", i+1),
				logger.Err(err),
			)
			break
		}
		res.Sent++
	}

	s.count(res.Sent, res.Failed)
	if res.Err == nil {
		log.Info("messages sent", logger.Int("sent", res.Sent))
	}
	return res, nil
}

func (s *service) count(sent, failed int) {
	if s.deps.Stats != nil {
		s.deps.Stats.CountMessages(sent, failed)
	}
	metrics.Messages(sent, failed)
}
