// Package secretbox implementa cifrado autenticado AES-256-GCM para blobs
// pequeños (credenciales SMTP). La clave se pasa explícita al constructor:
// nada en este paquete lee entorno ni estado global.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSizeGCM      = 12  // AES-GCM nonce recomendado (96 bits)
	requiredKeyLength = 32  // 32 bytes => AES-256
	sep               = "|" // nonce|ciphertext (ambos en base64)
)

// ErrDecryptFailed indica que el blob está corrupto o fue cifrado con otra
// clave. Nunca debe tragarse en silencio: el caller decide si es fatal.
var ErrDecryptFailed = errors.New("secretbox: decrypt failed")

// Box cifra y descifra con una clave fija de 32 bytes.
type Box struct {
	aead cipher.AEAD
}

// ParseKey acepta la clave en base64 (std o raw), hex o cruda, y devuelve
// los 32 bytes. Mismo orden de intentos que usamos en las tools de enc.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)

	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 64 {
		if h, err := hex.DecodeString(key); err == nil && len(h) == requiredKeyLength {
			return h, nil
		}
	}
	if len(key) == requiredKeyLength {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("clave inválida: requiere %d bytes (base64, hex o raw); genere una con: openssl rand -base64 32", requiredKeyLength)
}

// New crea un Box a partir de una clave cruda de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != requiredKeyLength {
		return nil, fmt.Errorf("clave inválida: %d bytes (requiere %d)", len(key), requiredKeyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Encrypt cifra plainText y devuelve base64(nonce)|base64(ciphertext).
func (b *Box) Encrypt(plainText string) (string, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}

	ct := b.aead.Seal(nil, nonce, []byte(plainText), nil)

	nonceB64 := base64.StdEncoding.EncodeToString(nonce)
	ctB64 := base64.StdEncoding.EncodeToString(ct)
	return nonceB64 + sep + ctB64, nil
}

// Decrypt recibe base64(nonce)|base64(ciphertext) y devuelve el texto plano.
// Cualquier fallo (formato, nonce, autenticación GCM) envuelve ErrDecryptFailed.
func (b *Box) Decrypt(cipherText string) (string, error) {
	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: formato inválido, esperado base64(nonce)|base64(ciphertext)", ErrDecryptFailed)
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: decode nonce: %v", ErrDecryptFailed, err)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", ErrDecryptFailed, err)
	}
	if len(nonce) != nonceSizeGCM {
		return "", fmt.Errorf("%w: nonce inválido, esperado %d bytes, obtuvo %d", ErrDecryptFailed, nonceSizeGCM, len(nonce))
	}

	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gcm auth/decrypt: %v", ErrDecryptFailed, err)
	}
	return string(pt), nil
}
