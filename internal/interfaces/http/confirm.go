package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/listing"
)

// confirmForm respuesta del diálogo de confirmación.
type confirmForm struct {
	Token  string `form:"token"`
	Accion string `form:"accion"`
}

type confirmData struct {
	Prompt string
	Token  string
	Action string
	Back   string
}

func renderConfirm(c *fiber.Ctx, views *Views, title, active string, conf listing.Confirmation, action, back string) error {
	p := newPage(c, title, active)
	p.Data = confirmData{Prompt: conf.Prompt, Token: conf.Token, Action: action, Back: back}
	return views.Render(c, fiber.StatusOK, "confirm.html", p)
}
