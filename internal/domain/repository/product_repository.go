package repository

import (
	"context"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// ProductRepository puerto hacia el recurso productos, identificado por código.
type ProductRepository interface {
	List(ctx context.Context, token string) ([]entity.Product, error)
	Get(ctx context.Context, token, codigo string) (*entity.Product, error)
	Create(ctx context.Context, token string, p entity.Product) (*entity.Product, error)
	Update(ctx context.Context, token, codigo string, p entity.Product) (*entity.Product, error)
	Delete(ctx context.Context, token, codigo string) error
}
