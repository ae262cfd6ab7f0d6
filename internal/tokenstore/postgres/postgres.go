// Package postgres implementa tokenstore.Store sobre una única tabla
// relay_tokens (una fila por token vivo). No hay migraciones: el esquema
// se asegura al construir el store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tokens "github.com/dropDatabas3/mailjohn/internal/security/token"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
)

const tokenBytes = 32

const schema = `
CREATE TABLE IF NOT EXISTS relay_tokens (
    token_hash  TEXT PRIMARY KEY,
    record_id   TEXT NOT NULL,
    ciphertext  TEXT NOT NULL,
    issued_at   TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS relay_tokens_expires_at_idx ON relay_tokens (expires_at);
`

type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration

	now func() time.Time
}

// New abre el pool contra el DSN y asegura el esquema.
func New(ctx context.Context, dsn string, ttl time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Issue(ctx context.Context, ciphertext string) (string, tokenstore.Record, error) {
	token, err := tokens.GenerateOpaqueToken(tokenBytes)
	if err != nil {
		return "", tokenstore.Record{}, err
	}

	now := s.now().UTC()
	rec := tokenstore.Record{
		ID:         uuid.NewString(),
		Ciphertext: ciphertext,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.ttl),
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO relay_tokens (token_hash, record_id, ciphertext, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tokens.SHA256Base64URL(token), rec.ID, rec.Ciphertext, rec.IssuedAt, rec.ExpiresAt)
	if err != nil {
		return "", tokenstore.Record{}, fmt.Errorf("insert token: %w", err)
	}

	// limpieza oportunista de filas muertas; best effort
	_, _ = s.pool.Exec(ctx, `DELETE FROM relay_tokens WHERE expires_at < $1`, now.Add(-s.ttl))

	return token, rec, nil
}

func (s *Store) Lookup(ctx context.Context, token string) (tokenstore.Record, error) {
	hash := tokens.SHA256Base64URL(token)

	var rec tokenstore.Record
	err := s.pool.QueryRow(ctx,
		`SELECT record_id, ciphertext, issued_at, expires_at FROM relay_tokens WHERE token_hash = $1`,
		hash).Scan(&rec.ID, &rec.Ciphertext, &rec.IssuedAt, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return tokenstore.Record{}, tokenstore.ErrTokenNotFound
	}
	if err != nil {
		return tokenstore.Record{}, fmt.Errorf("select token: %w", err)
	}

	if rec.Expired(s.now().UTC()) {
		_, _ = s.pool.Exec(ctx, `DELETE FROM relay_tokens WHERE token_hash = $1`, hash)
		return tokenstore.Record{}, tokenstore.ErrTokenExpired
	}
	return rec, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM relay_tokens WHERE token_hash = $1`, tokens.SHA256Base64URL(token))
	return err
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
