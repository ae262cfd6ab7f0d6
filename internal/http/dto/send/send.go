// Package send contiene DTOs para el endpoint de envío.
package send

import (
	"encoding/json"
	"fmt"
)

// RecipientList acepta tanto un string como una lista de strings en JSON:
// "a@b.com" y ["a@b.com"] son equivalentes. El orden se preserva.
type RecipientList []string

func (r *RecipientList) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RecipientList{s}
		return nil
	case '[':
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return err
		}
		*r = RecipientList(ss)
		return nil
	case 'n': // null
		*r = nil
		return nil
	}
	return fmt.Errorf("recipients: se esperaba string o lista de strings")
}

// SendRequest representa una solicitud de envío.
type SendRequest struct {
	Recipients RecipientList `json:"recipients"`
	Subject    string        `json:"subject"`
	Body       string        `json:"body"`
	IsHTML     bool          `json:"is_html"`
	Cc         RecipientList `json:"cc"`
	Bcc        RecipientList `json:"bcc"`
	ReplyTo    string        `json:"reply_to"`
	Repeat     int           `json:"repeat"` // default 1

	// Token en body: compatibilidad con clientes viejos que no mandan
	// el header X-Token.
	Token string `json:"token"`
}

// SendResponse reporta el resultado, incluyendo fallas parciales.
type SendResponse struct {
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
