package usecase

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

const msgDashboardLoad = "Error al cargar las estadísticas del dashboard"

// DashboardView estado de la página de inicio.
type DashboardView struct {
	State listing.State
	Stats *entity.DashboardStats
	Error string
}

// DashboardPage estadísticas generales; solo lectura.
type DashboardPage struct {
	repo repository.DashboardRepository
	who  Principal
	log  *logger.Logger

	mu    sync.Mutex
	gen   uint64
	state listing.State
	stats *entity.DashboardStats
	err   string
}

// NewDashboardPage construye la página.
func NewDashboardPage(repo repository.DashboardRepository, who Principal, log *logger.Logger) *DashboardPage {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardPage{repo: repo, who: who, log: log, state: listing.StateIdle}
}

// Load trae las estadísticas; una respuesta superada por otra carga se descarta.
func (p *DashboardPage) Load(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.state = listing.StateLoading
	p.mu.Unlock()

	stats, err := p.repo.Stats(ctx, p.who.AccessToken())

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return domain.ErrStale
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("dashboard: error al cargar estadísticas")
		p.state, p.err = listing.StateError, msgDashboardLoad
		return &listing.Failure{Message: msgDashboardLoad, Err: err}
	}
	p.state, p.stats, p.err = listing.StateReady, stats, ""
	return nil
}

// View estado actual.
func (p *DashboardPage) View() DashboardView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return DashboardView{State: p.state, Stats: p.stats, Error: p.err}
}

// Reset desmonta la página.
func (p *DashboardPage) Reset() {
	p.mu.Lock()
	p.gen++
	p.state, p.stats, p.err = listing.StateIdle, nil, ""
	p.mu.Unlock()
}
