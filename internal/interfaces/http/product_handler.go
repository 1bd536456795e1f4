package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// ProductHandler página de productos (solo ADMIN, ver router).
type ProductHandler struct {
	ws    *usecase.Workspaces
	views *Views
}

// NewProductHandler construye el handler.
func NewProductHandler(ws *usecase.Workspaces, views *Views) *ProductHandler {
	return &ProductHandler{ws: ws, views: views}
}

type productsData struct {
	View    listing.Snapshot[entity.Product]
	Query   string
	Form    dto.ProductForm
	Editing string
}

func (h *ProductHandler) render(c *fiber.Ctx, status int, form dto.ProductForm, editing string, fe domain.FieldErrors, msg string) error {
	page := workspace(c, h.ws).Products
	q := c.Query("q")
	p := newPage(c, "Productos", "productos")
	p.Data = productsData{View: page.View(q), Query: q, Form: form, Editing: editing}
	if fe != nil {
		p.Errors = fe
	}
	p.Error = msg
	return h.views.Render(c, status, "productos.html", p)
}

// formOf precarga el formulario de edición con los precios actuales.
func formOf(pr entity.Product) dto.ProductForm {
	f := dto.ProductForm{Codigo: pr.Codigo, Nombre: pr.Nombre, Caracteristicas: pr.Caracteristicas}
	for _, p := range pr.Precios {
		switch p.Moneda {
		case entity.CurrencyCOP:
			f.PrecioCOP = p.Precio.String()
		case entity.CurrencyUSD:
			f.PrecioUSD = p.Precio.String()
		case entity.CurrencyEUR:
			f.PrecioEUR = p.Precio.String()
		}
	}
	return f
}

// List GET /productos[?q=&editar=<codigo>].
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Products
	loadOnMount(c, page.View("").State, page.Load)

	var form dto.ProductForm
	editing := ""
	if codigo := c.Query("editar"); codigo != "" {
		if pr, ok := page.Find(codigo); ok {
			form, editing = formOf(pr), pr.Codigo
		}
	}
	return h.render(c, fiber.StatusOK, form, editing, nil, "")
}

// Reload POST /productos/recargar.
func (h *ProductHandler) Reload(c *fiber.Ctx) error {
	_ = workspace(c, h.ws).Products.Load(c.UserContext())
	return c.Redirect("/productos", fiber.StatusFound)
}

// Create POST /productos.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/productos", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Products.Create(c.UserContext(), in)
	return h.afterWrite(c, in, "", notice, err)
}

// Update POST /productos/:codigo.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	codigo, _ := url.PathUnescape(c.Params("codigo"))
	var in dto.ProductForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/productos", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Products.Update(c.UserContext(), codigo, in)
	return h.afterWrite(c, in, codigo, notice, err)
}

func (h *ProductHandler) afterWrite(c *fiber.Ctx, in dto.ProductForm, editing, notice string, err error) error {
	if err == nil {
		return redirectWithFlash(c, "/productos", flashSuccess, notice)
	}
	fields, msg, stale := writeOutcome(err)
	if stale {
		return c.Redirect("/productos", fiber.StatusFound)
	}
	if len(fields) > 0 {
		return h.render(c, fiber.StatusUnprocessableEntity, in, editing, fields, msg)
	}
	return redirectWithFlash(c, "/productos", flashError, msg)
}

// RequestDelete POST /productos/:codigo/eliminar.
func (h *ProductHandler) RequestDelete(c *fiber.Ctx) error {
	codigo, _ := url.PathUnescape(c.Params("codigo"))
	conf, err := workspace(c, h.ws).Products.RequestDelete(codigo)
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/productos", flashError, msg)
	}
	return renderConfirm(c, h.views, "Eliminar producto", "productos", conf, "/productos/confirmar", "/productos")
}

// Confirm POST /productos/confirmar.
func (h *ProductHandler) Confirm(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Products
	var in confirmForm
	_ = c.BodyParser(&in)
	if in.Accion != "confirmar" {
		page.CancelDelete(in.Token)
		return c.Redirect("/productos", fiber.StatusFound)
	}
	notice, err := page.ConfirmDelete(c.UserContext(), in.Token)
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/productos", flashError, msg)
	}
	return redirectWithFlash(c, "/productos", flashSuccess, notice)
}
