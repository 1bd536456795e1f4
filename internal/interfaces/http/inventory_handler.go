package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
)

// InventoryHandler página de inventario (solo ADMIN): tabla filtrable, alta/edición de
// cantidades, exportación PDF, envío por email y reporte local.
type InventoryHandler struct {
	ws    *usecase.Workspaces
	views *Views
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ws *usecase.Workspaces, views *Views) *InventoryHandler {
	return &InventoryHandler{ws: ws, views: views}
}

type inventoryData struct {
	usecase.InventoryView
	Form    dto.InventoryForm
	Editing int64
	Email   dto.EmailForm
}

func filterOf(c *fiber.Ctx) dto.InventoryFilter {
	var f dto.InventoryFilter
	_ = c.QueryParser(&f)
	return f
}

func (h *InventoryHandler) render(c *fiber.Ctx, status int, data inventoryData, fe domain.FieldErrors, msg string) error {
	page := workspace(c, h.ws).Inventory
	data.InventoryView = page.View(filterOf(c))
	p := newPage(c, "Inventario", "inventario")
	p.Data = data
	if fe != nil {
		p.Errors = fe
	}
	p.Error = msg
	return h.views.Render(c, status, "inventario.html", p)
}

// List GET /inventario[?q=&empresa=&editar=<id>].
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Inventory
	loadOnMount(c, page.View(dto.InventoryFilter{}).State, page.Load)

	var data inventoryData
	if id, err := strconv.ParseInt(c.Query("editar"), 10, 64); err == nil {
		if r, ok := page.Find(id); ok {
			data.Form = dto.InventoryForm{Empresa: r.Empresa, Producto: r.Producto, Cantidad: strconv.Itoa(r.Cantidad)}
			data.Editing = r.ID
		}
	}
	data.Email.Empresa = filterOf(c).Empresa
	return h.render(c, fiber.StatusOK, data, nil, "")
}

// Reload POST /inventario/recargar.
func (h *InventoryHandler) Reload(c *fiber.Ctx) error {
	_ = workspace(c, h.ws).Inventory.Load(c.UserContext())
	return c.Redirect("/inventario", fiber.StatusFound)
}

// Create POST /inventario.
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.InventoryForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/inventario", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Inventory.Create(c.UserContext(), in)
	return h.afterWrite(c, in, 0, notice, err)
}

// Update POST /inventario/:id. Solo cambia la cantidad.
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return redirectWithFlash(c, "/inventario", flashError, msgBadForm)
	}
	var in dto.InventoryForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/inventario", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Inventory.Update(c.UserContext(), int64(id), in)
	return h.afterWrite(c, in, int64(id), notice, err)
}

func (h *InventoryHandler) afterWrite(c *fiber.Ctx, in dto.InventoryForm, editing int64, notice string, err error) error {
	if err == nil {
		return redirectWithFlash(c, "/inventario", flashSuccess, notice)
	}
	fields, msg, stale := writeOutcome(err)
	if stale {
		return c.Redirect("/inventario", fiber.StatusFound)
	}
	if len(fields) > 0 {
		return h.render(c, fiber.StatusUnprocessableEntity, inventoryData{Form: in, Editing: editing}, fields, msg)
	}
	return redirectWithFlash(c, "/inventario", flashError, msg)
}

// RequestDelete POST /inventario/:id/eliminar.
func (h *InventoryHandler) RequestDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return redirectWithFlash(c, "/inventario", flashError, msgBadForm)
	}
	conf, err := workspace(c, h.ws).Inventory.RequestDelete(int64(id))
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/inventario", flashError, msg)
	}
	return renderConfirm(c, h.views, "Eliminar registro", "inventario", conf, "/inventario/confirmar", "/inventario")
}

// Confirm POST /inventario/confirmar.
func (h *InventoryHandler) Confirm(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Inventory
	var in confirmForm
	_ = c.BodyParser(&in)
	if in.Accion != "confirmar" {
		page.CancelDelete(in.Token)
		return c.Redirect("/inventario", fiber.StatusFound)
	}
	notice, err := page.ConfirmDelete(c.UserContext(), in.Token)
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/inventario", flashError, msg)
	}
	return redirectWithFlash(c, "/inventario", flashSuccess, notice)
}

// Export GET /inventario/export[?empresa=<nit>]. Descarga el PDF generado por el backend.
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	dl, _, err := workspace(c, h.ws).Inventory.Export(c.UserContext(), c.Query("empresa"))
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/inventario", flashError, msg)
	}
	return sendDownload(c, dl)
}

// Email POST /inventario/email (email, empresa).
func (h *InventoryHandler) Email(c *fiber.Ctx) error {
	var in dto.EmailForm
	if err := c.BodyParser(&in); err != nil {
		return redirectWithFlash(c, "/inventario", flashError, msgBadForm)
	}
	notice, err := workspace(c, h.ws).Inventory.SendEmail(c.UserContext(), in)
	if err != nil {
		fields, msg, _ := writeOutcome(err)
		if len(fields) > 0 {
			return h.render(c, fiber.StatusUnprocessableEntity, inventoryData{Email: in}, fields, msg)
		}
		return redirectWithFlash(c, "/inventario", flashError, msg)
	}
	return redirectWithFlash(c, "/inventario", flashSuccess, notice)
}

// Report GET /inventario/reporte[?q=&empresa=]. PDF local de la vista filtrada actual.
func (h *InventoryHandler) Report(c *fiber.Ctx) error {
	by := ""
	if u, ok := GetSession(c).User(); ok {
		by = u.Name()
	}
	dl, err := workspace(c, h.ws).Inventory.Report(c.UserContext(), filterOf(c), by)
	if err != nil {
		_, msg, _ := writeOutcome(err)
		return redirectWithFlash(c, "/inventario", flashError, msg)
	}
	return sendDownload(c, dl)
}

func sendDownload(c *fiber.Ctx, dl usecase.Download) error {
	c.Set(fiber.HeaderContentType, dl.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dl.Filename))
	return c.Send(dl.Content)
}

