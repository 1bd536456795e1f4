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
	msgCompanyLoad    = "Error al cargar las empresas"
	msgCompanySave    = "Error al guardar la empresa"
	msgCompanyDelete  = "Error al eliminar la empresa"
	msgCompanyCreated = "Empresa creada exitosamente"
	msgCompanyUpdated = "Empresa actualizada exitosamente"
	msgCompanyDeleted = "Empresa eliminada exitosamente"
	msgCompanyAdmin   = "Solo los administradores pueden eliminar empresas"
)

// CompanyPage página de empresas de una sesión de consola.
type CompanyPage struct {
	ctrl *listing.Controller[string, entity.Company, dto.CompanyForm]
}

// NewCompanyPage construye la página. La eliminación se ofrece solo a administradores.
func NewCompanyPage(repo repository.CompanyRepository, who Principal, log *logger.Logger) *CompanyPage {
	return &CompanyPage{ctrl: listing.NewController(listing.Config[string, entity.Company, dto.CompanyForm]{
		Name:   "empresas",
		Source: repo,
		Token:  who.AccessToken,
		Key:    entity.CompanyKey,
		Validate: func(f dto.CompanyForm) domain.FieldErrors {
			return validation.ValidateCompany(f.Normalize())
		},
		Apply: func(base entity.Company, f dto.CompanyForm) (entity.Company, error) {
			f = f.Normalize()
			base.NIT = f.NIT
			base.Nombre = f.Nombre
			base.Direccion = f.Direccion
			base.Telefono = f.Telefono
			return base, nil
		},
		Prompt: func(c entity.Company) string {
			return fmt.Sprintf("¿Estás seguro de que deseas eliminar la empresa \"%s\"?\n\nEsta acción no se puede deshacer.", c.Nombre)
		},
		Gate: func() error {
			if !who.IsAdmin() {
				return &listing.Failure{Message: msgCompanyAdmin, Err: domain.ErrForbidden}
			}
			return nil
		},
		Messages: listing.Messages{Load: msgCompanyLoad, Save: msgCompanySave, Delete: msgCompanyDelete},
		Log:      log,
	})}
}

// Load trae las empresas.
func (p *CompanyPage) Load(ctx context.Context) error { return p.ctrl.Load(ctx) }

// View empresas cuyo nombre, NIT o dirección contienen la búsqueda.
func (p *CompanyPage) View(query string) listing.Snapshot[entity.Company] {
	return p.ctrl.View(func(c entity.Company) bool {
		return listing.AnyContains(query, c.Nombre, c.NIT, c.Direccion)
	})
}

// Find empresa por NIT en la colección local.
func (p *CompanyPage) Find(nit string) (entity.Company, bool) { return p.ctrl.Find(nit) }

// Options todas las empresas cargadas (para selects).
func (p *CompanyPage) Options() []entity.Company { return p.ctrl.Items() }

// Create crea la empresa y devuelve el aviso de éxito.
func (p *CompanyPage) Create(ctx context.Context, f dto.CompanyForm) (string, error) {
	if _, err := p.ctrl.Create(ctx, f); err != nil {
		return "", err
	}
	return msgCompanyCreated, nil
}

// Update edita la empresa nit. El NIT no puede cambiar.
func (p *CompanyPage) Update(ctx context.Context, nit string, f dto.CompanyForm) (string, error) {
	if _, err := p.ctrl.Update(ctx, nit, f); err != nil {
		return "", err
	}
	return msgCompanyUpdated, nil
}

// RequestDelete pide confirmación para eliminar la empresa.
func (p *CompanyPage) RequestDelete(nit string) (listing.Confirmation, error) {
	return p.ctrl.RequestDelete(nit)
}

// ConfirmDelete elimina tras la confirmación.
func (p *CompanyPage) ConfirmDelete(ctx context.Context, token string) (string, error) {
	if _, err := p.ctrl.ConfirmDelete(ctx, token); err != nil {
		return "", err
	}
	return msgCompanyDeleted, nil
}

// CancelDelete descarta la confirmación.
func (p *CompanyPage) CancelDelete(token string) { p.ctrl.CancelDelete(token) }

// Reset desmonta la página.
func (p *CompanyPage) Reset() { p.ctrl.Reset() }
