package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// Views plantillas de la consola, parseadas una sola vez al arrancar.
type Views struct {
	tmpl *template.Template
}

// NewViews parsea las plantillas embebidas.
func NewViews() (*Views, error) {
	tmpl, err := template.New("console").Funcs(template.FuncMap{
		"price":      usecase.FormatPrice,
		"amount":     func(d decimal.Decimal) string { return "$" + usecase.FormatAmount(d) },
		"count":      func(n any) string { return usecase.FormatCount(toInt64(n)) },
		"date":       formatDate,
		"currencies": func() []string { return entity.Currencies },
		"fieldErr":   func(fe domain.FieldErrors, k string) string { return fe[k] },
		"priceField": func(f dto.ProductForm, moneda string) string {
			for _, p := range f.Prices() {
				if p.Moneda == moneda {
					return p.Precio
				}
			}
			return ""
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("views: parsear plantillas: %w", err)
	}
	return &Views{tmpl: tmpl}, nil
}

// Render ejecuta la plantilla name con data y la envía con el status dado.
func (v *Views) Render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("views: %s: %w", name, err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// pageData datos comunes a todas las páginas.
type pageData struct {
	Title   string
	Active  string
	User    *entity.User
	IsAdmin bool
	Flash   *dto.Flash
	Error   string             // banner de la operación fallida
	Errors  domain.FieldErrors // errores por campo del formulario
	Data    any
}

func newPage(c *fiber.Ctx, title, active string) pageData {
	p := pageData{Title: title, Active: active, Flash: flashFrom(c), Errors: domain.FieldErrors{}}
	if s := GetSession(c); s != nil {
		if u, ok := s.User(); ok {
			p.User = &u
			p.IsAdmin = u.IsAdmin()
		}
	}
	return p
}

func formatDate(ts entity.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("02/01/2006 15:04")
}

func toInt64(n any) int64 {
	switch v := n.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
