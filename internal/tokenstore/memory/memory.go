// Package memory implementa tokenstore.Store sobre go-cache. Es el
// adapter por defecto: vive y muere con el proceso.
package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	tokens "github.com/dropDatabas3/mailjohn/internal/security/token"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore"
)

const (
	tokenBytes    = 32
	sweepInterval = time.Minute
)

// Store guarda registros en un go-cache concurrente. Cada item vive
// ttl+grace en el cache: dentro de la gracia un lookup puede distinguir
// "expirado" de "inexistente"; después el janitor lo barre solo.
type Store struct {
	c     *gocache.Cache
	ttl   time.Duration
	grace time.Duration

	now func() time.Time // override en tests
}

// New crea un store en memoria con la TTL de tokens dada.
func New(ttl time.Duration) *Store {
	grace := ttl
	if grace < time.Hour {
		grace = time.Hour
	}
	return &Store{
		c:     gocache.New(ttl+grace, sweepInterval),
		ttl:   ttl,
		grace: grace,
		now:   time.Now,
	}
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
	s.c.Set(tokens.SHA256Base64URL(token), rec, s.ttl+s.grace)
	return token, rec, nil
}

func (s *Store) Lookup(ctx context.Context, token string) (tokenstore.Record, error) {
	key := tokens.SHA256Base64URL(token)
	v, ok := s.c.Get(key)
	if !ok {
		return tokenstore.Record{}, tokenstore.ErrTokenNotFound
	}
	rec, ok := v.(tokenstore.Record)
	if !ok {
		return tokenstore.Record{}, tokenstore.ErrTokenNotFound
	}
	if rec.Expired(s.now().UTC()) {
		// purge lazy: el registro ya no sirve para nada
		s.c.Delete(key)
		return tokenstore.Record{}, tokenstore.ErrTokenExpired
	}
	return rec, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	s.c.Delete(tokens.SHA256Base64URL(token))
	return nil
}

func (s *Store) Close() error {
	s.c.Flush()
	return nil
}
