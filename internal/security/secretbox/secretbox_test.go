package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	raw := make([]byte, 32)
	for i := 0; i < 32; i++ {
		raw[i] = byte(i + 1)
	}
	return raw
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	b, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	msg := `{"email":"ana@example.com","password":"apppass ✓"}`
	ct, err := b.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	pt, err := b.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	t.Parallel()

	b, err := New(testKey(t))
	if err != nil {
		t.Fatal(err)
	}

	ct, err := b.Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	parts := strings.Split(ct, "|")
	if len(parts) != 2 {
		t.Fatalf("unexpected ct format")
	}
	// corromper un byte del ciphertext (base64 -> bytes -> flip -> base64)
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01 // flip
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	_, err = b.Decrypt(corrupted)
	if err == nil {
		t.Fatalf("expected auth error, got nil")
	}
	if !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	t.Parallel()

	b1, _ := New(testKey(t))
	other := make([]byte, 32)
	for i := range other {
		other[i] = byte(255 - i)
	}
	b2, _ := New(other)

	ct, err := b1.Encrypt("hola")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b2.Decrypt(ct); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed with wrong key, got %v", err)
	}
}

func TestDecrypt_BadFormat(t *testing.T) {
	t.Parallel()

	b, _ := New(testKey(t))
	for _, ct := range []string{"", "sin-separador", "a|b|c", "!!!|AAAA"} {
		if _, err := b.Decrypt(ct); !errors.Is(err, ErrDecryptFailed) {
			t.Fatalf("ct %q: expected ErrDecryptFailed, got %v", ct, err)
		}
	}
}

func TestNew_RejectsBadKeyLength(t *testing.T) {
	t.Parallel()

	if _, err := New([]byte("short")); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestParseKey_Formats(t *testing.T) {
	t.Parallel()

	raw := testKey(t)

	cases := map[string]string{
		"base64":     base64.StdEncoding.EncodeToString(raw),
		"base64 raw": base64.RawStdEncoding.EncodeToString(raw),
		"hex":        hex.EncodeToString(raw),
		"crudo":      string(raw),
	}
	for name, enc := range cases {
		got, err := ParseKey(enc)
		if err != nil {
			t.Fatalf("%s: ParseKey err: %v", name, err)
		}
		if string(got) != string(raw) {
			t.Fatalf("%s: key mismatch", name)
		}
	}

	if _, err := ParseKey("demasiado-corta"); err == nil {
		t.Fatalf("expected error for invalid key")
	}
}
