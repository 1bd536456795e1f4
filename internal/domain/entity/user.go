package entity

import "strings"

// Roles válidos para User.
const (
	RoleAdmin   = "ADMIN"
	RoleExterno = "EXTERNO"
)

// User identidad del usuario autenticado tal como la devuelve el backend.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Name nombre para mostrar: nombre y apellido, o el username si no hay.
func (u User) Name() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// IsAdmin true si el rol es ADMIN.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// TokenPair par de tokens emitido en login/registro.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Valid ambos tokens presentes.
func (t TokenPair) Valid() bool { return t.Access != "" && t.Refresh != "" }
