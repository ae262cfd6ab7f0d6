// Package auth contiene DTOs para el endpoint de autenticación.
package auth

// AuthRequest representa la solicitud de login SMTP.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // app password del proveedor
}

// AuthResponse representa la respuesta exitosa.
type AuthResponse struct {
	Token          string `json:"token"`
	ExpiresInHours int    `json:"expires_in_hours"`
	SenderEmail    string `json:"sender_email"`
	Message        string `json:"message"`
}
