package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
)

const (
	msgBusy       = "Hay una operación en curso, espera a que termine"
	msgExpired    = "La confirmación expiró, vuelve a intentarlo"
	msgUnexpected = "Ocurrió un error inesperado"
	msgBadForm    = "Formulario inválido"
)

// workspace páginas de la sesión del request.
func workspace(c *fiber.Ctx, ws *usecase.Workspaces) *usecase.Workspace {
	return ws.For(GetSession(c))
}

// pageParams parámetros de la query que pertenecen a una página ya montada: el aviso tras
// una escritura, la fila en edición y los filtros locales.
var pageParams = []string{"mensaje", "editar", "q", "empresa"}

// loadOnMount carga la página cada vez que se monta. Un GET con parámetros propios de la
// página (la redirección tras guardar, editar o filtrar) reutiliza la colección salvo que
// nunca se haya cargado. Una respuesta que llegue tarde la descarta el controlador.
func loadOnMount(c *fiber.Ctx, state listing.State, load func(context.Context) error) {
	if state == listing.StateIdle || mounting(c) {
		_ = load(c.UserContext())
	}
}

func mounting(c *fiber.Ctx) bool {
	for _, k := range pageParams {
		if c.Query(k) != "" {
			return false
		}
	}
	return true
}

// writeOutcome traduce el error de una escritura a errores por campo o a un aviso.
// stale = la respuesta se descartó (la página se desmontó) y no hay nada que mostrar.
func writeOutcome(err error) (fields domain.FieldErrors, msg string, stale bool) {
	switch {
	case errors.Is(err, domain.ErrStale):
		return nil, "", true
	case errors.Is(err, domain.ErrBusy):
		return nil, msgBusy, false
	case errors.Is(err, domain.ErrConfirmation):
		return nil, msgExpired, false
	}
	var f *listing.Failure
	if errors.As(err, &f) {
		msg = f.Message
		if msg == "" && len(f.Fields) == 0 {
			msg = msgUnexpected
		}
		return f.Fields, msg, false
	}
	return nil, domain.MessageOr(err, msgUnexpected), false
}
