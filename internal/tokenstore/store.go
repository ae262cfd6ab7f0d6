// Package tokenstore mapea tokens opacos a credenciales cifradas con
// expiración fija. Los registros se indexan por sha256(token): el bearer
// token crudo nunca toca el almacenamiento ni los logs.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTokenNotFound indica que no existe registro para ese token.
	ErrTokenNotFound = errors.New("tokenstore: token not found")

	// ErrTokenExpired indica que el registro existió pero su ventana de
	// validez ya pasó. El cliente debe re-autenticarse.
	ErrTokenExpired = errors.New("tokenstore: token expired")
)

// Record es lo que se persiste por token. ID es un UUID apto para logs;
// Ciphertext es el blob sellado por credentials.Cipher.
type Record struct {
	ID         string    `json:"id"`
	Ciphertext string    `json:"ciphertext"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired evalúa la ventana de validez contra now. Se re-evalúa en cada
// lookup, nunca se cachea el resultado.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store es el contrato de los adapters (memory, redis, postgres).
type Store interface {
	// Issue genera un token nuevo, guarda el registro con expiración
	// now+TTL y devuelve el token crudo (única vez que existe fuera
	// del cliente).
	Issue(ctx context.Context, ciphertext string) (string, Record, error)

	// Lookup devuelve el registro vigente para el token, o
	// ErrTokenExpired / ErrTokenNotFound.
	Lookup(ctx context.Context, token string) (Record, error)

	// Revoke elimina el registro del token si existe.
	Revoke(ctx context.Context, token string) error

	// Close libera recursos del adapter (sweepers, pools, conexiones).
	Close() error
}
