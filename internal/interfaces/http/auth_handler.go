package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/validation"
)

// AuthHandler login, registro y logout de la sesión de consola.
type AuthHandler struct {
	views  *Views
	cookie CookieConfig
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(views *Views, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{views: views, cookie: cookie}
}

type loginData struct {
	Form dto.LoginForm
}

type registerData struct {
	Form dto.RegisterForm
}

// LoginPage GET /login. Con sesión iniciada redirige al dashboard.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if GetSession(c).IsAuthenticated() {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	p := newPage(c, "Iniciar sesión", "login")
	p.Data = loginData{}
	return h.views.Render(c, fiber.StatusOK, "login.html", p)
}

// Login POST /login. Valida localmente antes de llamar al backend.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginForm
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(msgBadForm)
	}
	in.Email = strings.TrimSpace(in.Email)

	p := newPage(c, "Iniciar sesión", "login")
	p.Data = loginData{Form: dto.LoginForm{Email: in.Email}}
	if fe := validation.ValidateLogin(in); !fe.Empty() {
		p.Errors = fe
		return h.views.Render(c, fiber.StatusUnprocessableEntity, "login.html", p)
	}

	res := GetSession(c).Login(c.UserContext(), in.Email, in.Password)
	if !res.Success {
		p.Error = res.Error
		return h.views.Render(c, fiber.StatusUnauthorized, "login.html", p)
	}
	return c.Redirect("/dashboard", fiber.StatusFound)
}

// RegisterPage GET /register.
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	if GetSession(c).IsAuthenticated() {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	p := newPage(c, "Crear cuenta", "register")
	p.Data = registerData{}
	return h.views.Render(c, fiber.StatusOK, "register.html", p)
}

// Register POST /register. El registro público siempre crea usuarios EXTERNO.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterForm
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(msgBadForm)
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	p := newPage(c, "Crear cuenta", "register")
	echo := in
	echo.Password, echo.ConfirmPassword = "", ""
	p.Data = registerData{Form: echo}
	if fe := validation.ValidateRegister(in); !fe.Empty() {
		p.Errors = fe
		return h.views.Render(c, fiber.StatusUnprocessableEntity, "register.html", p)
	}

	res := GetSession(c).Register(c.UserContext(), in)
	if !res.Success {
		p.Error = res.Error
		return h.views.Render(c, fiber.StatusBadRequest, "register.html", p)
	}
	return c.Redirect("/dashboard", fiber.StatusFound)
}

// Logout POST /logout. Limpia memoria y almacenamiento de la sesión y la cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if s := GetSession(c); s != nil {
		_ = s.Logout()
	}
	clearSessionCookie(c, h.cookie)
	return c.Redirect("/login", fiber.StatusFound)
}
