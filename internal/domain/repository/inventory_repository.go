package repository

import (
	"context"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// InventoryRepository puerto hacia el recurso inventario (id numérico asignado por el servidor).
type InventoryRepository interface {
	List(ctx context.Context, token string) ([]entity.InventoryRecord, error)
	Get(ctx context.Context, token string, id int64) (*entity.InventoryRecord, error)
	Create(ctx context.Context, token string, r entity.InventoryRecord) (*entity.InventoryRecord, error)
	Update(ctx context.Context, token string, id int64, r entity.InventoryRecord) (*entity.InventoryRecord, error)
	Delete(ctx context.Context, token string, id int64) error
	// ExportPDF devuelve el PDF generado por el backend; empresaNIT vacío = inventario completo.
	ExportPDF(ctx context.Context, token, empresaNIT string) ([]byte, error)
	SendEmail(ctx context.Context, token, email, empresaNIT string) (string, error)
}
