package dto

// LoginForm entrada del formulario de inicio de sesión.
type LoginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// RegisterForm entrada del formulario de registro. ConfirmPassword nunca se envía al backend.
type RegisterForm struct {
	Email           string `form:"email" json:"email"`
	Username        string `form:"username" json:"username"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
}

// UserResponse identidad expuesta por /chat/me y las vistas.
type UserResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Nombre  string `json:"nombre"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}
