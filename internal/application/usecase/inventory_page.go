package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/application/validation"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

const (
	msgInventoryLoad    = "Error al cargar el inventario"
	msgInventorySave    = "Error al guardar el registro"
	msgInventoryDelete  = "Error al eliminar el registro"
	msgInventoryCreated = "Registro creado exitosamente"
	msgInventoryUpdated = "Registro actualizado exitosamente"
	msgInventoryDeleted = "Registro eliminado exitosamente"

	msgExportFailed = "Error al exportar PDF"
	msgExported     = "PDF descargado exitosamente"
	msgEmailFailed  = "Error al enviar el email"
	msgReportFailed = "Error al generar el reporte"
)

// InventoryPage página de inventario: registros, opciones de empresa/producto para los
// formularios, exportación y envío por email.
type InventoryPage struct {
	ctrl     *listing.Controller[int64, entity.InventoryRecord, dto.InventoryForm]
	repo     repository.InventoryRepository
	empresas repository.CompanyRepository
	products repository.ProductRepository
	reports  ReportGenerator
	who      Principal
	log      *logger.Logger
	now      func() time.Time

	mu          sync.Mutex
	optGen      uint64
	companyOpts []entity.Company
	productOpts []entity.Product
	optErr      string
}

// InventoryDeps colaboradores de la página de inventario.
type InventoryDeps struct {
	Inventory repository.InventoryRepository
	Companies repository.CompanyRepository
	Products  repository.ProductRepository
	Reports   ReportGenerator
	Log       *logger.Logger
	Now       func() time.Time
}

// NewInventoryPage construye la página.
func NewInventoryPage(d InventoryDeps, who Principal) *InventoryPage {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	p := &InventoryPage{
		repo: d.Inventory, empresas: d.Companies, products: d.Products, reports: d.Reports,
		who: who, log: d.Log, now: d.Now,
	}
	p.ctrl = listing.NewController(listing.Config[int64, entity.InventoryRecord, dto.InventoryForm]{
		Name:   "inventario",
		Source: d.Inventory,
		Token:  who.AccessToken,
		Key:    entity.InventoryKey,
		Validate: func(f dto.InventoryForm) domain.FieldErrors {
			return validation.ValidateInventory(f.Normalize())
		},
		Apply: applyInventory,
		Prompt: func(r entity.InventoryRecord) string {
			return fmt.Sprintf("¿Estás seguro de que deseas eliminar este registro?\n\n%s - %s\n\nEsta acción no se puede deshacer.", r.EmpresaNombre, r.ProductoNombre)
		},
		Messages: listing.Messages{Load: msgInventoryLoad, Save: msgInventorySave, Delete: msgInventoryDelete},
		Log:      d.Log,
	})
	return p
}

// applyInventory al crear toma empresa, producto y cantidad; al editar solo la cantidad.
func applyInventory(base entity.InventoryRecord, f dto.InventoryForm) (entity.InventoryRecord, error) {
	f = f.Normalize()
	if base.ID != 0 {
		if (f.Empresa != "" && f.Empresa != base.Empresa) || (f.Producto != "" && f.Producto != base.Producto) {
			return base, domain.ErrImmutableField
		}
	} else {
		base.Empresa = f.Empresa
		base.Producto = f.Producto
	}
	base.Cantidad = validation.Quantity(f)
	return base, nil
}

// Load trae en paralelo el inventario y las empresas y productos de los formularios.
// Si cualquiera falla la página queda en error.
func (p *InventoryPage) Load(ctx context.Context) error {
	p.mu.Lock()
	p.optGen++
	gen := p.optGen
	p.mu.Unlock()

	var (
		companies []entity.Company
		products  []entity.Product
		loadErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Una carga descartada por obsoleta no invalida las opciones.
		loadErr = p.ctrl.Load(gctx)
		if errors.Is(loadErr, domain.ErrStale) {
			return nil
		}
		return loadErr
	})
	g.Go(func() error {
		var err error
		companies, err = p.empresas.List(gctx, p.who.AccessToken())
		return err
	})
	g.Go(func() error {
		var err error
		products, err = p.products.List(gctx, p.who.AccessToken())
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.optGen {
		return domain.ErrStale
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("inventario: error al cargar")
		p.optErr = msgInventoryLoad
		return &listing.Failure{Message: msgInventoryLoad, Err: err}
	}
	p.companyOpts, p.productOpts, p.optErr = companies, products, ""
	return loadErr
}

// InventoryView vista de la tabla con sus opciones de filtro.
type InventoryView struct {
	listing.Snapshot[entity.InventoryRecord]
	Companies []entity.Company
	Products  []entity.Product
	Filter    dto.InventoryFilter
}

// View registros que cumplen la búsqueda (empresa, producto o código) Y, si se indica,
// pertenecen exactamente a la empresa filtrada.
func (p *InventoryPage) View(f dto.InventoryFilter) InventoryView {
	snap := p.ctrl.View(filterInventory(f)...)
	p.mu.Lock()
	defer p.mu.Unlock()
	if snap.Error == "" && p.optErr != "" {
		snap.Error = p.optErr
		snap.State = listing.StateError
	}
	return InventoryView{
		Snapshot:  snap,
		Companies: append([]entity.Company(nil), p.companyOpts...),
		Products:  append([]entity.Product(nil), p.productOpts...),
		Filter:    f,
	}
}

func filterInventory(f dto.InventoryFilter) []func(entity.InventoryRecord) bool {
	return []func(entity.InventoryRecord) bool{
		func(r entity.InventoryRecord) bool {
			return listing.AnyContains(f.Search, r.EmpresaNombre, r.ProductoNombre, r.ProductoCodigo)
		},
		func(r entity.InventoryRecord) bool { return f.Empresa == "" || r.Empresa == f.Empresa },
	}
}

// Find registro por id.
func (p *InventoryPage) Find(id int64) (entity.InventoryRecord, bool) { return p.ctrl.Find(id) }

// Create crea el registro.
func (p *InventoryPage) Create(ctx context.Context, f dto.InventoryForm) (string, error) {
	if _, err := p.ctrl.Create(ctx, f); err != nil {
		return "", err
	}
	return msgInventoryCreated, nil
}

// Update cambia la cantidad del registro id. Empresa y producto no pueden cambiar.
func (p *InventoryPage) Update(ctx context.Context, id int64, f dto.InventoryForm) (string, error) {
	if _, err := p.ctrl.Update(ctx, id, f); err != nil {
		return "", err
	}
	return msgInventoryUpdated, nil
}

// RequestDelete pide confirmación.
func (p *InventoryPage) RequestDelete(id int64) (listing.Confirmation, error) {
	return p.ctrl.RequestDelete(id)
}

// ConfirmDelete elimina tras la confirmación.
func (p *InventoryPage) ConfirmDelete(ctx context.Context, token string) (string, error) {
	if _, err := p.ctrl.ConfirmDelete(ctx, token); err != nil {
		return "", err
	}
	return msgInventoryDeleted, nil
}

// CancelDelete descarta la confirmación.
func (p *InventoryPage) CancelDelete(token string) { p.ctrl.CancelDelete(token) }

// ExportFilename nombre del PDF exportado: inventario_<nit|completo>_<unix-ms>.pdf.
func ExportFilename(empresaNIT string, at time.Time) string {
	scope := empresaNIT
	if scope == "" {
		scope = "completo"
	}
	return fmt.Sprintf("inventario_%s_%d.pdf", scope, at.UnixMilli())
}

// Export descarga el PDF generado por el backend, opcionalmente filtrado por empresa.
func (p *InventoryPage) Export(ctx context.Context, empresaNIT string) (Download, string, error) {
	raw, err := p.repo.ExportPDF(ctx, p.who.AccessToken(), empresaNIT)
	if err != nil {
		p.log.Warn().Err(err).Str("empresa", empresaNIT).Msg("inventario: error al exportar PDF")
		return Download{}, "", &listing.Failure{Message: msgExportFailed, Err: err}
	}
	return Download{
		Filename:    ExportFilename(empresaNIT, p.now()),
		ContentType: "application/pdf",
		Content:     raw,
	}, msgExported, nil
}

// SendEmail pide al backend que envíe el PDF al destinatario.
func (p *InventoryPage) SendEmail(ctx context.Context, f dto.EmailForm) (string, error) {
	if fe := validation.ValidateEmailRecipient(f); !fe.Empty() {
		return "", &listing.Failure{Message: fe["email"], Fields: fe, Err: domain.ErrInvalidInput}
	}
	if _, err := p.repo.SendEmail(ctx, p.who.AccessToken(), f.Email, f.Empresa); err != nil {
		p.log.Warn().Err(err).Msg("inventario: error al enviar email")
		return "", &listing.Failure{Message: msgEmailFailed, Err: err}
	}
	return "PDF enviado exitosamente a " + f.Email, nil
}

// Report genera localmente el PDF de la vista filtrada actual.
func (p *InventoryPage) Report(ctx context.Context, f dto.InventoryFilter, generatedBy string) (Download, error) {
	view := p.View(f)
	now := p.now()
	r := InventoryReport{
		Title:       "Reporte de Inventario",
		Records:     view.Items,
		GeneratedAt: now,
		GeneratedBy: generatedBy,
	}
	if f.Empresa != "" {
		for _, c := range view.Companies {
			if c.NIT == f.Empresa {
				r.Title += " - " + c.Nombre
			}
		}
	}
	r.Filter = describeFilter(f)
	raw, err := p.reports.InventoryReport(ctx, r)
	if err != nil {
		p.log.Error().Err(err).Msg("inventario: error al generar reporte")
		return Download{}, &listing.Failure{Message: msgReportFailed, Err: err}
	}
	return Download{
		Filename:    fmt.Sprintf("reporte_inventario_%d.pdf", now.UnixMilli()),
		ContentType: "application/pdf",
		Content:     raw,
	}, nil
}

func describeFilter(f dto.InventoryFilter) string {
	switch {
	case f.Search != "" && f.Empresa != "":
		return fmt.Sprintf("Búsqueda \"%s\", empresa %s", f.Search, f.Empresa)
	case f.Search != "":
		return fmt.Sprintf("Búsqueda \"%s\"", f.Search)
	case f.Empresa != "":
		return "Empresa " + f.Empresa
	}
	return "Sin filtros"
}

// Reset desmonta la página.
func (p *InventoryPage) Reset() {
	p.ctrl.Reset()
	p.mu.Lock()
	p.optGen++
	p.companyOpts, p.productOpts, p.optErr = nil, nil, ""
	p.mu.Unlock()
}
