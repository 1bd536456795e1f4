package repository

import (
	"context"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// CompanyRepository puerto hacia el recurso empresas del backend (DIP).
// La implementación vive en infrastructure/api; token es el access token del usuario.
type CompanyRepository interface {
	List(ctx context.Context, token string) ([]entity.Company, error)
	Get(ctx context.Context, token, nit string) (*entity.Company, error)
	Create(ctx context.Context, token string, c entity.Company) (*entity.Company, error)
	Update(ctx context.Context, token, nit string, c entity.Company) (*entity.Company, error)
	Delete(ctx context.Context, token, nit string) error
}
