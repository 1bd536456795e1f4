package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/usecase"
)

// DashboardHandler página de inicio con las estadísticas generales.
type DashboardHandler struct {
	ws    *usecase.Workspaces
	views *Views
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(ws *usecase.Workspaces, views *Views) *DashboardHandler {
	return &DashboardHandler{ws: ws, views: views}
}

// Show GET /dashboard. Las estadísticas se piden cada vez que se entra a la página.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	page := workspace(c, h.ws).Dashboard
	_ = page.Load(c.UserContext())
	p := newPage(c, "Dashboard", "dashboard")
	v := page.View()
	p.Data = v
	if v.Error != "" {
		p.Error = v.Error
	}
	return h.views.Render(c, fiber.StatusOK, "dashboard.html", p)
}
