package credentials

import (
	"errors"
	"testing"

	"github.com/dropDatabas3/mailjohn/internal/security/secretbox"
	"github.com/stretchr/testify/require"
)

func newCipher(t *testing.T, seed byte) *Cipher {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = seed + byte(i)
	}
	box, err := secretbox.New(key)
	require.NoError(t, err)
	return NewCipher(box)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newCipher(t, 1)
	cred := Credential{Email: "ana@gmail.com", Password: "abcd efgh ijkl mnop"}

	blob, err := c.Seal(cred)
	require.NoError(t, err)
	require.NotContains(t, blob, cred.Password, "el blob no debe contener el password en claro")

	got, err := c.Open(blob)
	require.NoError(t, err)
	require.Equal(t, cred, got)
}

func TestOpen_WrongKeyFails(t *testing.T) {
	t.Parallel()

	blob, err := newCipher(t, 1).Seal(Credential{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	_, err = newCipher(t, 99).Open(blob)
	require.Error(t, err)
	require.True(t, errors.Is(err, secretbox.ErrDecryptFailed))
}

func TestOpen_GarbageFails(t *testing.T) {
	t.Parallel()

	_, err := newCipher(t, 1).Open("no-es-un-blob")
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Credential{Email: "  Ana@Gmail.COM ", Password: " pass "}.Normalize()
	require.Equal(t, Credential{Email: "ana@gmail.com", Password: "pass"}, got)
}
