package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/session"
)

// LocalSession clave en c.Locals de la sesión de consola del request.
const LocalSession = "console_session"

const msgAdminOnly = "No tienes permisos para acceder a esta sección"

// SessionSource lo que el middleware necesita del session.Manager.
type SessionSource interface {
	Get(id string) (*session.Session, bool)
	Create() *session.Session
}

// CookieConfig cookie que identifica la sesión de consola del navegador.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SessionMiddleware resuelve la sesión de la cookie o abre una anónima nueva, marca
// actividad y la deja en c.Locals. La anónima solo se registra si el request autentica.
func SessionMiddleware(src SessionSource, cc CookieConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := src.Get(c.Cookies(cc.Name))
		if !ok {
			s = src.Create()
			setSessionCookie(c, cc, s.ID())
		}
		s.Touch()
		c.Locals(LocalSession, s)
		return c.Next()
	}
}

func setSessionCookie(c *fiber.Ctx, cc CookieConfig, id string) {
	ck := &fiber.Cookie{
		Name:     cc.Name,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   cc.Secure,
	}
	if cc.MaxAge > 0 {
		ck.MaxAge = int(cc.MaxAge.Seconds())
	}
	c.Cookie(ck)
}

func clearSessionCookie(c *fiber.Ctx, cc CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cc.Name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   cc.Secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// GetSession devuelve la sesión del contexto (después de SessionMiddleware).
func GetSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(LocalSession).(*session.Session)
	return s
}

// RequireAuth redirige a /login si la sesión no está autenticada.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := GetSession(c)
		if s == nil || !s.IsAuthenticated() {
			return c.Redirect("/login", fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireAdmin se usa DESPUÉS de RequireAuth. Un usuario sin rol ADMIN vuelve al
// dashboard con un aviso; el backend sigue siendo la autoridad.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := GetSession(c)
		if s == nil || !s.IsAdmin() {
			return redirectWithFlash(c, "/dashboard", flashError, msgAdminOnly)
		}
		return c.Next()
	}
}

// RequireAuthJSON variante de RequireAuth para los endpoints JSON (/chat).
func RequireAuthJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := GetSession(c)
		if s == nil || !s.IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión no iniciada"})
		}
		return c.Next()
	}
}

// ── Avisos ───────────────────────────────────────────────────────────────────

const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// redirectWithFlash redirige con el aviso en la query (?mensaje=&tipo=) para mostrarlo
// como banner en la página destino.
func redirectWithFlash(c *fiber.Ctx, path, kind, msg string) error {
	if msg == "" {
		return c.Redirect(path, fiber.StatusFound)
	}
	q := url.Values{}
	q.Set("mensaje", msg)
	q.Set("tipo", kind)
	return c.Redirect(path+"?"+q.Encode(), fiber.StatusFound)
}

// flashFrom aviso recibido en la query, si lo hay.
func flashFrom(c *fiber.Ctx) *dto.Flash {
	msg := c.Query("mensaje")
	if msg == "" {
		return nil
	}
	kind := c.Query("tipo")
	switch kind {
	case flashSuccess, flashError, flashInfo:
	default:
		kind = flashInfo
	}
	return &dto.Flash{Kind: kind, Message: msg}
}
