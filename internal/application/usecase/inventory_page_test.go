package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api/apitest"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

type fakeReports struct {
	mu   sync.Mutex
	got  []usecase.InventoryReport
	fail error
}

func (f *fakeReports) InventoryReport(_ context.Context, r usecase.InventoryReport) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.got = append(f.got, r)
	return []byte("%PDF-fake"), nil
}

func seedInventory(b *apitest.Backend) {
	b.SeedCompany(entity.Company{NIT: "900000001", Nombre: "Alfa SAS", Direccion: "Calle 1", Telefono: "3001234"})
	b.SeedCompany(entity.Company{NIT: "900000002", Nombre: "Beta Ltda", Direccion: "Calle 2", Telefono: "3005678"})
	b.SeedProduct(entity.Product{Codigo: "MOU-01", Nombre: "Mouse", Caracteristicas: "Inalámbrico",
		Precios: []entity.Price{{Moneda: entity.CurrencyCOP, Precio: decimal.NewFromInt(45000)}}})
	b.SeedProduct(entity.Product{Codigo: "TEC-01", Nombre: "Teclado", Caracteristicas: "Mecánico",
		Precios: []entity.Price{{Moneda: entity.CurrencyUSD, Precio: decimal.NewFromInt(30)}}})
	b.SeedInventory("900000001", "MOU-01", 0)
	b.SeedInventory("900000001", "TEC-01", 5)
	b.SeedInventory("900000002", "MOU-01", 50)
}

func newInventoryPage(t *testing.T, b *apitest.Backend, who principal, reports usecase.ReportGenerator) *usecase.InventoryPage {
	t.Helper()
	c := apiClient(b)
	return usecase.NewInventoryPage(usecase.InventoryDeps{
		Inventory: api.NewInventoryClient(c),
		Companies: api.NewCompanyClient(c),
		Products:  api.NewProductClient(c),
		Reports:   reports,
		Now:       func() time.Time { return fixedNow },
	}, who)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryPage_CargaOpcionesYFiltraConAND(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})
	require.NoError(t, p.Load(context.Background()))

	all := p.View(dto.InventoryFilter{})
	assert.Equal(t, listing.StateReady, all.State)
	assert.Len(t, all.Items, 3)
	assert.Len(t, all.Companies, 2)
	assert.Len(t, all.Products, 2)

	mouse := p.View(dto.InventoryFilter{Search: "mouse"})
	assert.Len(t, mouse.Items, 2)

	both := p.View(dto.InventoryFilter{Search: "mouse", Empresa: "900000001"})
	require.Len(t, both.Items, 1, "búsqueda Y empresa exacta")
	assert.Equal(t, "Alfa SAS", both.Items[0].EmpresaNombre)

	assert.Len(t, p.View(dto.InventoryFilter{Search: "tec-01"}).Items, 1, "busca en el código del producto")
	assert.Empty(t, p.View(dto.InventoryFilter{Search: "teclado", Empresa: "900000002"}).Items)
}

func TestInventoryPage_NivelesDeStock(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})
	require.NoError(t, p.Load(context.Background()))

	levels := map[int]entity.StockLevel{}
	for _, r := range p.View(dto.InventoryFilter{}).Items {
		levels[r.Cantidad] = r.Level()
	}
	assert.Equal(t, entity.StockDepleted, levels[0])
	assert.Equal(t, entity.StockLow, levels[5])
	assert.Equal(t, entity.StockNormal, levels[50])
}

func TestInventoryPage_CantidadCeroEsValidaYVaciaNo(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))

	_, err := p.Create(ctx, dto.InventoryForm{Empresa: "900000002", Producto: "TEC-01", Cantidad: ""})
	require.Error(t, err)
	assert.Equal(t, "La cantidad es requerida", domain.FieldMessage(err, "cantidad"))

	notice, err := p.Create(ctx, dto.InventoryForm{Empresa: "900000002", Producto: "TEC-01", Cantidad: "0"})
	require.NoError(t, err)
	assert.Equal(t, "Registro creado exitosamente", notice)
	assert.Len(t, p.View(dto.InventoryFilter{}).Items, 4)
}

func TestInventoryPage_EditarSoloCambiaCantidad(t *testing.T) {
	b := apitest.New(t)
	b.SeedCompany(entity.Company{NIT: "900000001", Nombre: "Alfa SAS", Direccion: "Calle 1", Telefono: "3001234"})
	b.SeedCompany(entity.Company{NIT: "900000002", Nombre: "Beta Ltda", Direccion: "Calle 2", Telefono: "3005678"})
	b.SeedProduct(entity.Product{Codigo: "MOU-01", Nombre: "Mouse", Caracteristicas: "x"})
	id := b.SeedInventory("900000001", "MOU-01", 3)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))

	_, err := p.Update(ctx, id, dto.InventoryForm{Empresa: "900000002", Producto: "MOU-01", Cantidad: "7"})
	require.ErrorIs(t, err, domain.ErrImmutableField)

	notice, err := p.Update(ctx, id, dto.InventoryForm{Empresa: "900000001", Producto: "MOU-01", Cantidad: "12"})
	require.NoError(t, err)
	assert.Equal(t, "Registro actualizado exitosamente", notice)
	r, ok := p.Find(id)
	require.True(t, ok)
	assert.Equal(t, 12, r.Cantidad)
	assert.Equal(t, "900000001", r.Empresa)
	assert.Len(t, p.View(dto.InventoryFilter{}).Items, 1)

	conf, err := p.RequestDelete(id)
	require.NoError(t, err)
	assert.Contains(t, conf.Prompt, "Alfa SAS - Mouse")
	_, err = p.ConfirmDelete(ctx, conf.Token)
	require.NoError(t, err)
	assert.Empty(t, p.View(dto.InventoryFilter{}).Items)
}

func TestInventoryPage_FalloDeOpcionesDejaLaPaginaEnError(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	b.Fail("GET", "/productos", 500, nil)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})

	err := p.Load(context.Background())
	require.Error(t, err)
	v := p.View(dto.InventoryFilter{})
	assert.Equal(t, listing.StateError, v.State)
	assert.Equal(t, "Error al cargar el inventario", v.Error)

	require.NoError(t, p.Load(context.Background()))
	assert.Empty(t, p.View(dto.InventoryFilter{}).Error)
}

func TestInventoryPage_ExportarPDF(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})

	dl, notice, err := p.Export(context.Background(), "900000001")
	require.NoError(t, err)
	assert.Equal(t, "PDF descargado exitosamente", notice)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.Equal(t, usecase.ExportFilename("900000001", fixedNow), dl.Filename)
	assert.True(t, strings.HasPrefix(string(dl.Content), apitest.PDFPrefix))
	assert.Contains(t, string(dl.Content), "empresa=900000001")

	b.Fail("GET", "/inventario/export_pdf", 500, nil)
	_, _, err = p.Export(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "Error al exportar PDF", domain.MessageOr(err, ""))
}

func TestExportFilename(t *testing.T) {
	at := time.UnixMilli(1715941800000)
	assert.Equal(t, "inventario_900000001_1715941800000.pdf", usecase.ExportFilename("900000001", at))
	assert.Equal(t, "inventario_completo_1715941800000.pdf", usecase.ExportFilename("", at))
}

func TestInventoryPage_EnviarEmail(t *testing.T) {
	b := apitest.New(t)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})
	ctx := context.Background()

	_, err := p.SendEmail(ctx, dto.EmailForm{Email: "no-es-un-email"})
	require.Error(t, err)
	assert.NotEmpty(t, domain.FieldMessage(err, "email"))
	assert.Equal(t, 0, b.Calls("POST", "/inventario/send_email"))

	notice, err := p.SendEmail(ctx, dto.EmailForm{Email: "gerencia@alfa.co", Empresa: "900000001"})
	require.NoError(t, err)
	assert.Equal(t, "PDF enviado exitosamente a gerencia@alfa.co", notice)
	assert.Equal(t, []apitest.SentEmail{{Email: "gerencia@alfa.co", Empresa: "900000001"}}, b.Emails())

	b.Fail("POST", "/inventario/send_email", 502, nil)
	_, err = p.SendEmail(ctx, dto.EmailForm{Email: "gerencia@alfa.co"})
	require.Error(t, err)
	assert.Equal(t, "Error al enviar el email", domain.MessageOr(err, ""))
}

func TestInventoryPage_ReporteDeLaVistaFiltrada(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	reports := &fakeReports{}
	p := newInventoryPage(t, b, adminOf(t, b), reports)
	require.NoError(t, p.Load(context.Background()))

	dl, err := p.Report(context.Background(), dto.InventoryFilter{Empresa: "900000001"}, "Ana Admin")
	require.NoError(t, err)
	assert.Equal(t, "reporte_inventario_1715941800000.pdf", dl.Filename)
	assert.Equal(t, "%PDF-fake", string(dl.Content))

	require.Len(t, reports.got, 1)
	r := reports.got[0]
	assert.Equal(t, "Reporte de Inventario - Alfa SAS", r.Title)
	assert.Equal(t, "Empresa 900000001", r.Filter)
	assert.Len(t, r.Records, 2)
	assert.Equal(t, "Ana Admin", r.GeneratedBy)
	assert.True(t, r.GeneratedAt.Equal(fixedNow))

	reports.fail = errors.New("maroto: sin fuente")
	_, err = p.Report(context.Background(), dto.InventoryFilter{}, "Ana Admin")
	require.Error(t, err)
	assert.Equal(t, "Error al generar el reporte", domain.MessageOr(err, ""))
}

func TestInventoryPage_ResetDescartaCargaEnVuelo(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	p := newInventoryPage(t, b, adminOf(t, b), &fakeReports{})
	b.OnRequest("GET", "/empresas", p.Reset)

	err := p.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrStale)
	v := p.View(dto.InventoryFilter{})
	assert.Empty(t, v.Companies, "las opciones de una carga descartada no se aplican")
}
