package usecase

import (
	"sync"
	"time"

	"github.com/jhoicas/inventario-console/internal/application/chat"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

// Deps colaboradores compartidos por todos los workspaces del proceso.
type Deps struct {
	Companies repository.CompanyRepository
	Products  repository.ProductRepository
	Inventory repository.InventoryRepository
	Dashboard repository.DashboardRepository
	Chat      repository.ChatRepository
	Reports   ReportGenerator
	Log       *logger.Logger
	Now       func() time.Time
}

// Workspace páginas y chat de una sesión de consola. Cada página es dueña de su colección.
type Workspace struct {
	Companies *CompanyPage
	Products  *ProductPage
	Inventory *InventoryPage
	Dashboard *DashboardPage
	Chat      *chat.Widget
}

func newWorkspace(d Deps, who Principal) *Workspace {
	l := d.Log.WithStr("session", who.ID())
	return &Workspace{
		Companies: NewCompanyPage(d.Companies, who, l),
		Products:  NewProductPage(d.Products, who, l),
		Inventory: NewInventoryPage(InventoryDeps{
			Inventory: d.Inventory, Companies: d.Companies, Products: d.Products,
			Reports: d.Reports, Log: l, Now: d.Now,
		}, who),
		Dashboard: NewDashboardPage(d.Dashboard, who, l),
		Chat:      chat.NewWidget(d.Chat, who.AccessToken, l),
	}
}

// reset desmonta todas las páginas y descarta lo que esté en vuelo.
func (w *Workspace) reset() {
	w.Companies.Reset()
	w.Products.Reset()
	w.Inventory.Reset()
	w.Dashboard.Reset()
	w.Chat.NewChat()
}

// Workspaces registro de workspaces por id de sesión de consola.
type Workspaces struct {
	deps Deps

	mu   sync.Mutex
	byID map[string]*Workspace
}

// NewWorkspaces construye el registro.
func NewWorkspaces(d Deps) *Workspaces {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Workspaces{deps: d, byID: map[string]*Workspace{}}
}

// For workspace de la sesión, creado la primera vez que se pide.
func (ws *Workspaces) For(who Principal) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w, ok := ws.byID[who.ID()]
	if !ok {
		w = newWorkspace(ws.deps, who)
		ws.byID[who.ID()] = w
	}
	return w
}

// Drop descarta el workspace de la sesión (logout o purga).
func (ws *Workspaces) Drop(id string) {
	ws.mu.Lock()
	w, ok := ws.byID[id]
	delete(ws.byID, id)
	ws.mu.Unlock()
	if ok {
		w.reset()
	}
}

// Len número de workspaces vivos.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.byID)
}
