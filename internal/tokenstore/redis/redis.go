// Package redis implementa tokenstore.Store sobre Redis. Útil cuando se
// quiere que los tokens sobrevivan un restart del proceso o se corre más
// de una réplica detrás de un balanceador.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	rdb "github.com/redis/go-redis/v9"

	tokens "github.com/dropDatabas3/mailjohn/internal/security/token"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
)

const tokenBytes = 32

type Store struct {
	client *rdb.Client
	prefix string
	ttl    time.Duration
	grace  time.Duration

	now func() time.Time
}

// New crea el store. El prefix separa claves si la instancia de Redis se
// comparte (default "mj:tok:").
func New(client *rdb.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "mj:tok:"
	}
	grace := ttl
	if grace < time.Hour {
		grace = time.Hour
	}
	return &Store{client: client, prefix: prefix, ttl: ttl, grace: grace, now: time.Now}
}

func (s *Store) key(token string) string {
	return s.prefix + tokens.SHA256Base64URL(token)
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
	b, err := json.Marshal(rec)
	if err != nil {
		return "", tokenstore.Record{}, fmt.Errorf("marshal record: %w", err)
	}

	// La clave vive ttl+grace: dentro de la gracia un lookup todavía
	// puede responder TOKEN_EXPIRED en vez de TOKEN_NOT_FOUND.
	if err := s.client.Set(ctx, s.key(token), b, s.ttl+s.grace).Err(); err != nil {
		return "", tokenstore.Record{}, fmt.Errorf("redis set: %w", err)
	}
	return token, rec, nil
}

func (s *Store) Lookup(ctx context.Context, token string) (tokenstore.Record, error) {
	b, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err == rdb.Nil {
		return tokenstore.Record{}, tokenstore.ErrTokenNotFound
	}
	if err != nil {
		return tokenstore.Record{}, fmt.Errorf("redis get: %w", err)
	}

	var rec tokenstore.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return tokenstore.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	if rec.Expired(s.now().UTC()) {
		_ = s.client.Del(ctx, s.key(token)).Err()
		return tokenstore.Record{}, tokenstore.ErrTokenExpired
	}
	return rec, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
