// Package apitest levanta un backend REST en memoria con el mismo contrato que consume la
// consola. Se sirve con Fiber detrás de httptest.Server y emite JWT reales (pkg/jwt).
package apitest

import (
	"fmt"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	pkgjwt "github.com/jhoicas/inventario-console/pkg/jwt"
)

// Credenciales sembradas.
const (
	Secret = "apitest-secret"

	AdminEmail      = "admin@inventario.test"
	AdminPassword   = "Admin12345"
	ExternoEmail    = "externo@inventario.test"
	ExternoPassword = "Externo12345"
)

type user struct {
	entity.User
	password string
}

type failure struct {
	status int
	body   any
}

type chatSession struct {
	id       int64
	owner    int64
	created  time.Time
	updated  time.Time
	messages []entity.ServerMessage
}

// SentEmail registro de una llamada a send_email.
type SentEmail struct {
	Email   string
	Empresa string
}

// Backend estado del backend simulado. Todos los métodos son seguros entre goroutines.
type Backend struct {
	mu sync.Mutex

	srv *httptest.Server

	users      map[string]*user
	nextUserID int64

	empresas   map[string]entity.Company
	productos  map[string]entity.Product
	inventario map[int64]entity.InventoryRecord
	nextInvID  int64
	nextPrice  int64

	chats      map[int64]*chatSession
	nextChatID int64

	emails   []SentEmail
	pageSize int
	failures map[string][]failure
	hooks    map[string]func()
	calls    map[string]int

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// New arranca el backend y lo cierra al terminar el test.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:      map[string]*user{},
		empresas:   map[string]entity.Company{},
		productos:  map[string]entity.Product{},
		inventario: map[int64]entity.InventoryRecord{},
		chats:      map[int64]*chatSession{},
		failures:   map[string][]failure{},
		hooks:      map[string]func(){},
		calls:      map[string]int{},
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	b.addUser(AdminEmail, "admin", AdminPassword, "Ana", "Admin", entity.RoleAdmin)
	b.addUser(ExternoEmail, "externo", ExternoPassword, "Ernesto", "Externo", entity.RoleExterno)

	b.srv = httptest.NewServer(adaptor.FiberApp(b.app()))
	t.Cleanup(b.srv.Close)
	return b
}

// URL base tal como la configuraría API_URL.
func (b *Backend) URL() string { return b.srv.URL + "/api" }

// ── Controles para tests ─────────────────────────────────────────────────────

// Fail hace que la próxima llamada a method+path (sin /api ni barra final, p.ej.
// "POST /empresas") responda status con body. Se encolan en orden.
func (b *Backend) Fail(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := key(method, path)
	b.failures[k] = append(b.failures[k], failure{status: status, body: body})
}

// OnRequest ejecuta fn (fuera del lock) antes de atender method+path. fn nil elimina el hook.
func (b *Backend) OnRequest(method, path string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn == nil {
		delete(b.hooks, key(method, path))
		return
	}
	b.hooks[key(method, path)] = fn
}

// Paginate activa el sobre {count,next,previous,results} con el tamaño de página dado; 0 = arreglo.
func (b *Backend) Paginate(size int) {
	b.mu.Lock()
	b.pageSize = size
	b.mu.Unlock()
}

// Calls número de peticiones recibidas para method+path.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key(method, path)]
}

// Emails envíos registrados por send_email.
func (b *Backend) Emails() []SentEmail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]SentEmail(nil), b.emails...)
}

// Tokens emite un par de tokens para un usuario sembrado.
func (b *Backend) Tokens(t testing.TB, email string) entity.TokenPair {
	t.Helper()
	b.mu.Lock()
	u, ok := b.users[email]
	b.mu.Unlock()
	if !ok {
		t.Fatalf("apitest: usuario %s no existe", email)
	}
	pair, err := b.issue(u.User)
	if err != nil {
		t.Fatalf("apitest: emitir tokens: %v", err)
	}
	return pair
}

// SeedCompany inserta una empresa directamente.
func (b *Backend) SeedCompany(c entity.Company) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := entity.NewTimestamp(time.Now().UTC())
	c.CreatedAt, c.UpdatedAt = now, now
	b.empresas[c.NIT] = c
}

// SeedProduct inserta un producto directamente.
func (b *Backend) SeedProduct(p entity.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := entity.NewTimestamp(time.Now().UTC())
	p.CreatedAt, p.UpdatedAt = now, now
	if e, ok := b.empresas[p.Empresa]; ok {
		p.EmpresaNombre = e.Nombre
	}
	for i := range p.Precios {
		b.nextPrice++
		p.Precios[i].ID = b.nextPrice
	}
	b.productos[p.Codigo] = p
}

// SeedInventory inserta un registro y devuelve su id.
func (b *Backend) SeedInventory(empresa, producto string, cantidad int) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.newRecord(empresa, producto, cantidad)
	return r.ID
}

// Companies copia ordenada por NIT del estado del servidor.
func (b *Backend) Companies() []entity.Company {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.Company, 0, len(b.empresas))
	for _, c := range b.empresas {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NIT < out[j].NIT })
	return out
}

// ── Internos ─────────────────────────────────────────────────────────────────

func key(method, path string) string {
	path = strings.TrimPrefix(path, "/api")
	path = strings.TrimRight(path, "/")
	return strings.ToUpper(method) + " " + path
}

func (b *Backend) addUser(email, username, password, first, last, role string) *user {
	b.nextUserID++
	u := &user{
		User: entity.User{
			ID: b.nextUserID, Email: email, Username: username,
			FirstName: first, LastName: last, Role: role,
		},
		password: password,
	}
	b.users[email] = u
	return u
}

func (b *Backend) issue(u entity.User) (entity.TokenPair, error) {
	access, err := pkgjwt.Generate(Secret, u.ID, u.Role, pkgjwt.TokenAccess, b.AccessTTL)
	if err != nil {
		return entity.TokenPair{}, err
	}
	refresh, err := pkgjwt.Generate(Secret, u.ID, u.Role, pkgjwt.TokenRefresh, b.RefreshTTL)
	if err != nil {
		return entity.TokenPair{}, err
	}
	return entity.TokenPair{Access: access, Refresh: refresh}, nil
}

func (b *Backend) userByID(id int64) (*user, bool) {
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// newRecord requiere b.mu tomado.
func (b *Backend) newRecord(empresa, producto string, cantidad int) entity.InventoryRecord {
	b.nextInvID++
	now := entity.NewTimestamp(time.Now().UTC())
	r := entity.InventoryRecord{
		ID: b.nextInvID, Empresa: empresa, Producto: producto, Cantidad: cantidad,
		FechaRegistro: now, UpdatedAt: now,
	}
	b.denormalize(&r)
	b.inventario[r.ID] = r
	return r
}

func (b *Backend) denormalize(r *entity.InventoryRecord) {
	if e, ok := b.empresas[r.Empresa]; ok {
		r.EmpresaNombre = e.Nombre
	}
	if p, ok := b.productos[r.Producto]; ok {
		r.ProductoNombre = p.Nombre
		r.ProductoCodigo = p.Codigo
	}
}

// paged responde un listado como arreglo o como sobre paginado según la configuración.
func paged[T any](c *fiber.Ctx, items []T, pageSize int) error {
	if pageSize <= 0 {
		return c.JSON(items)
	}
	p := c.QueryInt("page", 1)
	if p < 1 {
		p = 1
	}
	start := (p - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	var next, prev any
	base := c.BaseURL() + c.Path()
	if end < len(items) {
		next = fmt.Sprintf("%s?page=%d", base, p+1)
	}
	if p > 1 {
		prev = fmt.Sprintf("%s?page=%d", base, p-1)
	}
	return c.JSON(fiber.Map{
		"count":    len(items),
		"next":     next,
		"previous": prev,
		"results":  items[start:end],
	})
}
