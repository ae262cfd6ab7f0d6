package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mailjohn/internal/credentials"
	"github.com/dropDatabas3/mailjohn/internal/metrics"
	"github.com/dropDatabas3/mailjohn/internal/security/secretbox"
	"github.com/dropDatabas3/mailjohn/internal/tokenstore/memory"
)

type fakeVerifier struct {
	err   error
	calls int
	seen  credentials.Credential
}

func (f *fakeVerifier) Verify(ctx context.Context, cred credentials.Credential) error {
	f.calls++
	f.seen = cred
	return f.err
}

func newDeps(t *testing.T, v *fakeVerifier) (Deps, *memory.Store) {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 7)
	}
	box, err := secretbox.New(key)
	require.NoError(t, err)

	store := memory.New(time.Hour)
	t.Cleanup(func() { store.Close() })

	return Deps{
		Store:  store,
		Cipher: credentials.NewCipher(box),
		SMTP:   v,
		TTL:    time.Hour,
		Stats:  metrics.NewStats(),
	}, store
}

func TestAuthenticate_SuccessIssuesUsableToken(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{}
	deps, store := newDeps(t, v)
	svc := NewService(deps)

	res, err := svc.Authenticate(context.Background(), "Ana@Gmail.com ", "app-pass")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, time.Hour, res.TTL)
	require.Equal(t, "ana@gmail.com", res.SenderEmail)
	require.Equal(t, 1, v.calls)
	require.Equal(t, "ana@gmail.com", v.seen.Email, "el login usa la credencial normalizada")

	// el token recién emitido resuelve de inmediato
	rec, err := store.Lookup(context.Background(), res.Token)
	require.NoError(t, err)

	// y el blob descifra a la credencial original
	cred, err := deps.Cipher.Open(rec.Ciphertext)
	require.NoError(t, err)
	require.Equal(t, credentials.Credential{Email: "ana@gmail.com", Password: "app-pass"}, cred)
}

func TestAuthenticate_BadCredentialsNothingPersisted(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{err: errors.New("535 bad credentials")}
	deps, _ := newDeps(t, v)
	svc := NewService(deps)

	res, err := svc.Authenticate(context.Background(), "ana@gmail.com", "wrong")
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	snap := deps.Stats.Snapshot()
	require.EqualValues(t, 0, snap.AuthOK)
	require.EqualValues(t, 1, snap.AuthFailed)
}

func TestAuthenticate_MissingFieldsSkipsNetwork(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{}
	deps, _ := newDeps(t, v)
	svc := NewService(deps)

	for _, pair := range [][2]string{{"", "pass"}, {"a@b.com", ""}, {"   ", "   "}} {
		_, err := svc.Authenticate(context.Background(), pair[0], pair[1])
		require.ErrorIs(t, err, ErrMissingFields)
	}
	require.Zero(t, v.calls, "no se intenta login SMTP con campos vacíos")
}
