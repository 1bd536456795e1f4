package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/application/validation"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

const (
	msgProductLoad    = "Error al cargar los productos"
	msgProductSave    = "Error al guardar el producto"
	msgProductDelete  = "Error al eliminar el producto"
	msgProductCreated = "Producto creado exitosamente"
	msgProductUpdated = "Producto actualizado exitosamente"
	msgProductDeleted = "Producto eliminado exitosamente"
)

// ProductPage página de productos (solo administradores, por ruta).
type ProductPage struct {
	ctrl *listing.Controller[string, entity.Product, dto.ProductForm]
}

// NewProductPage construye la página.
func NewProductPage(repo repository.ProductRepository, who Principal, log *logger.Logger) *ProductPage {
	return &ProductPage{ctrl: listing.NewController(listing.Config[string, entity.Product, dto.ProductForm]{
		Name:   "productos",
		Source: repo,
		Token:  who.AccessToken,
		Key:    entity.ProductKey,
		Validate: func(f dto.ProductForm) domain.FieldErrors {
			return validation.ValidateProduct(f.Normalize())
		},
		Apply: func(base entity.Product, f dto.ProductForm) (entity.Product, error) {
			f = f.Normalize()
			base.Codigo = f.Codigo
			base.Nombre = f.Nombre
			base.Caracteristicas = f.Caracteristicas
			base.Precios = validation.ProductPrices(f)
			return base, nil
		},
		Prompt: func(p entity.Product) string {
			return fmt.Sprintf("¿Estás seguro de que deseas eliminar el producto \"%s\"?\n\nEsta acción no se puede deshacer.", p.Nombre)
		},
		Messages: listing.Messages{Load: msgProductLoad, Save: msgProductSave, Delete: msgProductDelete},
		Log:      log,
	})}
}

// Load trae los productos.
func (p *ProductPage) Load(ctx context.Context) error { return p.ctrl.Load(ctx) }

// View productos cuyo nombre, código o características contienen la búsqueda.
func (p *ProductPage) View(query string) listing.Snapshot[entity.Product] {
	return p.ctrl.View(func(pr entity.Product) bool {
		return listing.AnyContains(query, pr.Nombre, pr.Codigo, pr.Caracteristicas)
	})
}

// Find producto por código.
func (p *ProductPage) Find(codigo string) (entity.Product, bool) { return p.ctrl.Find(codigo) }

// Create crea el producto.
func (p *ProductPage) Create(ctx context.Context, f dto.ProductForm) (string, error) {
	if _, err := p.ctrl.Create(ctx, f); err != nil {
		return "", err
	}
	return msgProductCreated, nil
}

// Update edita el producto codigo. El código no puede cambiar.
func (p *ProductPage) Update(ctx context.Context, codigo string, f dto.ProductForm) (string, error) {
	if _, err := p.ctrl.Update(ctx, codigo, f); err != nil {
		return "", err
	}
	return msgProductUpdated, nil
}

// RequestDelete pide confirmación.
func (p *ProductPage) RequestDelete(codigo string) (listing.Confirmation, error) {
	return p.ctrl.RequestDelete(codigo)
}

// ConfirmDelete elimina tras la confirmación.
func (p *ProductPage) ConfirmDelete(ctx context.Context, token string) (string, error) {
	if _, err := p.ctrl.ConfirmDelete(ctx, token); err != nil {
		return "", err
	}
	return msgProductDeleted, nil
}

// CancelDelete descarta la confirmación.
func (p *ProductPage) CancelDelete(token string) { p.ctrl.CancelDelete(token) }

// Reset desmonta la página.
func (p *ProductPage) Reset() { p.ctrl.Reset() }
