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

// CompanyHandler página de empresas.
type CompanyHandler struct {
	ws    *usecase.Workspaces
	views *Views
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(ws *usecase.Workspaces, views *Views) *CompanyHandler {
	return &CompanyHandler{ws: ws, views: views}
}

type companiesData struct {
	View    listing.Snapshot[entity.Company]
	Query   string
	Form    dto.CompanyForm
	Editing string // NIT en edición; vacío = formulario de alta
}

func (h *CompanyHandler) render(c *fiber.Ctx, status int, form dto.CompanyForm, editing string, fe domain.FieldErrors, msg string) error {
	page := workspace(c, h.ws).Companies
	q := c.Query("q")
	p := newPage(c, "Empresas", "empresas")
	p.Data = companiesData{View: page.View(q), Query: q, Form: form, Editing: editing}
	if fe != nil {
		p.Errors = fe
	}
	p.Error = msg
	return h.views.Render(c, status, "empresas.html", p)
}

// List GET /empresas[?q=&editar=<nit>]. Cada montaje recarga la colección.
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Companies
	loadOnMount(c, page.View("").State, page.Load)

	var form dto.CompanyForm
	editing := ""
	if nit := c.Query("editar"); nit != "" {
		if e, ok := page.Find(nit); ok {
			form = dto.CompanyForm{NIT: e.NIT, Nombre: e.Nombre, Direccion: e.Direccion, Telefono: e.Telefono}
			editing = e.NIT
		}
	}
	return h.render(c, fiber.StatusOK, form, editing, nil, "")
}

// Reload POST /empresas/recargar. Reintento explícito tras un error de carga.
func (h *CompanyHandler) Reload(c *fiber.Ctx) error {
	_ = workspace(c, h.ws).Companies.Load(c.UserContext())
	return c.Redirect("/empresas", fiber.StatusFound)
}

// Create POST /empresas.
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CompanyForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/empresas", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Companies.Create(c.UserContext(), in)
	return h.afterWrite(c, in, "", notice, err)
}

// Update POST /empresas/:nit. El NIT del formulario debe coincidir con el de la ruta.
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	nit, _ := url.PathUnescape(c.Params("nit"))
	var in dto.CompanyForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/empresas", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Companies.Update(c.UserContext(), nit, in)
	return h.afterWrite(c, in, nit, notice, err)
}

func (h *CompanyHandler) afterWrite(c *fiber.Ctx, in dto.CompanyForm, editing, notice string, err error) error {
	if err == nil {
		return redirectWithFlash(c, "/empresas", flashSuccess, notice)
	}
	fields, msg, stale := writeOutcome(err)
	if stale {
		return c.Redirect("/empresas", fiber.StatusFound)
	}
	if len(fields) > 0 {
		return h.render(c, fiber.StatusUnprocessableEntity, in, editing, fields, msg)
	}
	return redirectWithFlash(c, "/empresas", flashError, msg)
}

// RequestDelete POST /empresas/:nit/eliminar. Muestra la confirmación; no llama al backend.
func (h *CompanyHandler) RequestDelete(c *fiber.Ctx) error {
	nit, _ := url.PathUnescape(c.Params("nit"))
	conf, err := workspace(c, h.ws).Companies.RequestDelete(nit)
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/empresas", flashError, msg)
	}
	return renderConfirm(c, h.views, "Eliminar empresa", "empresas", conf, "/empresas/confirmar", "/empresas")
}

// Confirm POST /empresas/confirmar (token, accion=confirmar|cancelar).
func (h *CompanyHandler) Confirm(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Companies
	var in confirmForm
	_ = c.BodyParser(&in)
	if in.Accion != "confirmar" {
		page.CancelDelete(in.Token)
		return c.Redirect("/empresas", fiber.StatusFound)
	}
	notice, err := page.ConfirmDelete(c.UserContext(), in.Token)
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/empresas", flashError, msg)
	}
	return redirectWithFlash(c, "/empresas", flashSuccess, notice)
}
