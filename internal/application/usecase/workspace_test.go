package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api/apitest"
)

func newWorkspaces(b *apitest.Backend) *usecase.Workspaces {
	c := apiClient(b)
	return usecase.NewWorkspaces(usecase.Deps{
		Companies: api.NewCompanyClient(c),
		Products:  api.NewProductClient(c),
		Inventory: api.NewInventoryClient(c),
		Dashboard: api.NewDashboardClient(c),
		Chat:      api.NewChatbotClient(c),
		Reports:   &fakeReports{},
	})
}

func TestDashboardPage_CargaEstadisticas(t *testing.T) {
	b := apitest.New(t)
	seedInventory(b)
	p := usecase.NewDashboardPage(api.NewDashboardClient(apiClient(b)), adminOf(t, b), nil)

	assert.Equal(t, listing.StateIdle, p.View().State)
	require.NoError(t, p.Load(context.Background()))

	v := p.View()
	assert.Equal(t, listing.StateReady, v.State)
	require.NotNil(t, v.Stats)
	assert.Equal(t, 2, v.Stats.Resumen.TotalEmpresas)
	assert.Equal(t, 2, v.Stats.Resumen.TotalProductos)
	assert.Equal(t, int64(55), v.Stats.Resumen.TotalInventario)
	assert.True(t, v.Stats.Usuario.EsAdmin)
}

func TestDashboardPage_ErrorYRespuestaObsoleta(t *testing.T) {
	b := apitest.New(t)
	p := usecase.NewDashboardPage(api.NewDashboardClient(apiClient(b)), adminOf(t, b), nil)

	b.Fail("GET", "/auth/dashboard/stats", 500, nil)
	require.Error(t, p.Load(context.Background()))
	assert.Equal(t, "Error al cargar las estadísticas del dashboard", p.View().Error)
	assert.Equal(t, listing.StateError, p.View().State)

	b.OnRequest("GET", "/auth/dashboard/stats", p.Reset)
	require.ErrorIs(t, p.Load(context.Background()), domain.ErrStale)
	assert.Equal(t, listing.StateIdle, p.View().State)
	assert.Nil(t, p.View().Stats)
}

func TestWorkspaces_UnoPorSesionYDrop(t *testing.T) {
	b := apitest.New(t)
	b.SeedCompany(entity.Company{NIT: "900000001", Nombre: "Alfa SAS", Direccion: "Calle 1", Telefono: "3001234"})
	ws := newWorkspaces(b)
	admin := adminOf(t, b)
	other := externoOf(t, b)

	w1 := ws.For(admin)
	assert.Same(t, w1, ws.For(admin))
	assert.NotSame(t, w1, ws.For(other))
	assert.Equal(t, 2, ws.Len())

	require.NoError(t, w1.Companies.Load(context.Background()))
	w1.Chat.Open()
	require.Len(t, w1.Companies.View("").Items, 1)

	ws.Drop(admin.ID())
	assert.Equal(t, 1, ws.Len())
	assert.Empty(t, w1.Companies.View("").Items, "drop desmonta las páginas")
	assert.NotSame(t, w1, ws.For(admin))

	ws.Drop("no-existe")
	assert.Equal(t, 2, ws.Len())
}

func TestFormatPrice(t *testing.T) {
	p := entity.Product{Precios: []entity.Price{
		{Moneda: entity.CurrencyCOP, Precio: decimal.RequireFromString("1234567.5")},
		{Moneda: entity.CurrencyEUR, Precio: decimal.RequireFromString("12.3")},
	}}
	cop := usecase.FormatPrice(p, entity.CurrencyCOP)
	assert.True(t, strings.HasPrefix(cop, "$1"), cop)
	assert.True(t, strings.HasSuffix(cop, "50"), cop)
	assert.True(t, strings.HasPrefix(usecase.FormatPrice(p, entity.CurrencyEUR), "€12"))
	assert.Equal(t, "-", usecase.FormatPrice(p, entity.CurrencyUSD))

	n := usecase.FormatCount(1234567)
	assert.True(t, strings.HasPrefix(n, "1"), n)
	assert.Greater(t, len(n), len("1234567"), "lleva separador de miles")
}
