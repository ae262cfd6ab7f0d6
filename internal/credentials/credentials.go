// Package credentials define el par (email, app password) y su envoltura
// cifrada. El plaintext existe sólo en tránsito: antes de Seal o justo
// después de Open.
package credentials

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dropDatabas3/mailjohn/internal/security/secretbox"
)

// Credential es el par de login SMTP. Password es el app password del
// proveedor, no la contraseña principal de la cuenta.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize limpia espacios y baja el email a minúsculas.
func (c Credential) Normalize() Credential {
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	c.Password = strings.TrimSpace(c.Password)
	return c
}

// Cipher sella y abre credenciales con un secretbox.Box inyectado.
type Cipher struct {
	box *secretbox.Box
}

// NewCipher crea un Cipher sobre el Box dado.
func NewCipher(box *secretbox.Box) *Cipher {
	return &Cipher{box: box}
}

// Seal serializa la credencial como JSON y la cifra.
func (c *Cipher) Seal(cred Credential) (string, error) {
	b, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}
	return c.box.Encrypt(string(b))
}

// Open descifra y deserializa. Un blob corrupto o cifrado con otra clave
// devuelve error (secretbox.ErrDecryptFailed): jamás una credencial vacía.
func (c *Cipher) Open(blob string) (Credential, error) {
	pt, err := c.box.Decrypt(blob)
	if err != nil {
		return Credential{}, err
	}
	var cred Credential
	if err := json.Unmarshal([]byte(pt), &cred); err != nil {
		return Credential{}, fmt.Errorf("unmarshal credential: %w", err)
	}
	if cred.Email == "" {
		return Credential{}, fmt.Errorf("credential blob sin email")
	}
	return cred, nil
}
