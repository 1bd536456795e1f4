package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// Principal lo que las páginas necesitan de la sesión de consola.
type Principal interface {
	ID() string
	AccessToken() string
	IsAdmin() bool
}

// InventoryReport datos del reporte local de inventario (la vista filtrada actual).
type InventoryReport struct {
	Title       string
	Filter      string // descripción legible del filtro aplicado
	Records     []entity.InventoryRecord
	GeneratedAt time.Time
	GeneratedBy string
}

// ReportGenerator genera el PDF del reporte local (implementado en infrastructure/pdf).
type ReportGenerator interface {
	InventoryReport(ctx context.Context, r InventoryReport) ([]byte, error)
}

// Download archivo listo para enviar al navegador.
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}
