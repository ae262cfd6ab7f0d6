// Package email encapsula el transporte SMTP saliente. No implementa el
// protocolo: delega en go-mail tanto el login de verificación como el
// envío de mensajes.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/mailjohn/internal/credentials"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
)

// Config es la configuración del endpoint de submission.
type Config struct {
	Host               string        // default smtp.gmail.com
	Port               int           // default 465
	TLSMode            string        // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool          // solo dev
	Timeout            time.Duration // timeout de dial/cmd por conexión
}

// Message es un envío individual ya normalizado por la capa de servicio.
type Message struct {
	To      []string
	Cc      []string
	Bcc     []string
	ReplyTo string
	Subject string
	Body    string
	HTML    bool
}

// Session es una conexión SMTP autenticada sobre la que se pueden hacer
// varios envíos secuenciales (el "repeat" de un request usa una sola).
type Session interface {
	Send(msg *Message) error
	Close() error
}

// Transport abre sesiones SMTP con credenciales por-request.
type Transport interface {
	// Verify intenta un login real y cierra. Es la única forma de
	// confirmar que un app password es genuino.
	Verify(ctx context.Context, cred credentials.Credential) error

	// Open deja una sesión autenticada lista para enviar.
	Open(ctx context.Context, cred credentials.Credential) (Session, error)
}

// SMTPTransport implementa Transport contra un servidor real.
type SMTPTransport struct {
	cfg Config
}

// NewSMTPTransport crea el transporte con la configuración dada.
func NewSMTPTransport(cfg Config) *SMTPTransport {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "ssl"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) dialer(cred credentials.Credential) *mail.Dialer {
	d := mail.NewDialer(t.cfg.Host, t.cfg.Port, cred.Email, cred.Password)
	d.Timeout = t.cfg.Timeout
	d.TLSConfig = &tls.Config{
		ServerName:         t.cfg.Host,
		InsecureSkipVerify: t.cfg.InsecureSkipVerify, // solo dev
	}

	switch t.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: t.cfg.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si corresponde
	}
	return d
}

// Verify hace dial+auth+quit sin enviar nada.
func (t *SMTPTransport) Verify(ctx context.Context, cred credentials.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := logger.From(ctx).With(
		logger.Component("SMTPTransport"),
		logger.String("host", t.cfg.Host),
		logger.Int("port", t.cfg.Port),
	)

	sc, err := t.dialer(cred).Dial()
	if err != nil {
		log.Debug("smtp login failed", logger.Err(err))
		return fmt.Errorf("smtp login: %w", err)
	}
	_ = sc.Close()

	log.Debug("smtp login verified", logger.Sender(cred.Email))
	return nil
}

// Open abre una sesión autenticada. El caller es dueño del Close.
func (t *SMTPTransport) Open(ctx context.Context, cred credentials.Credential) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc, err := t.dialer(cred).Dial()
	if err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	return &smtpSession{sc: sc, from: cred.Email}, nil
}

type smtpSession struct {
	sc   mail.SendCloser
	from string
}

func (s *smtpSession) Send(msg *Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		// go-mail incluye Bcc en el envelope y lo omite de los headers
		m.SetHeader("Bcc", msg.Bcc...)
	}
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	if err := mail.Send(s.sc, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *smtpSession) Close() error {
	return s.sc.Close()
}
