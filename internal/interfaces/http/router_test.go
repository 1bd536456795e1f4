package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-console/internal/application/chat"
	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/session"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api/apitest"
	"github.com/jhoicas/inventario-console/internal/infrastructure/bolt"
	"github.com/jhoicas/inventario-console/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-console/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const cookieName = "console_sid"

type harness struct {
	backend    *apitest.Backend
	app        *fiber.App
	workspaces *usecase.Workspaces
	sessions   *session.Manager
}

// newHarness arma la consola completa contra el backend falso: bbolt en TempDir,
// manager de sesiones, workspaces y router.
func newHarness(t *testing.T) *harness {
	t.Helper()
	b := apitest.New(t)
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client := api.NewClient(b.URL(), 5*time.Second, nil)
	manager, err := session.NewManager(store, api.NewAuthClient(client), nil, time.Hour)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	ws := usecase.NewWorkspaces(usecase.Deps{
		Companies: api.NewCompanyClient(client),
		Products:  api.NewProductClient(client),
		Inventory: api.NewInventoryClient(client),
		Dashboard: api.NewDashboardClient(client),
		Chat:      api.NewChatbotClient(client),
		Reports:   pdf.NewInventoryReportGenerator("test"),
	})
	manager.OnDrop(ws.Drop)

	views, err := apphttp.NewViews()
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Sessions:   manager,
		Workspaces: ws,
		Views:      views,
		Cookie:     apphttp.CookieConfig{Name: cookieName},
		AppName:    "inventario-console-test",
	})
	return &harness{backend: b, app: app, workspaces: ws, sessions: manager}
}

// browser conserva la cookie de sesión entre requests, como un navegador.
type browser struct {
	t   *testing.T
	h   *harness
	sid string
}

func (h *harness) browser(t *testing.T) *browser { return &browser{t: t, h: h} }

func (br *browser) do(req *http.Request) (*http.Response, string) {
	br.t.Helper()
	if br.sid != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: br.sid})
	}
	resp, err := br.h.app.Test(req, -1)
	require.NoError(br.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name != cookieName {
			continue
		}
		if ck.MaxAge < 0 || ck.Value == "" {
			br.sid = ""
		} else {
			br.sid = ck.Value
		}
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(br.t, err)
	return resp, string(body)
}

func (br *browser) get(path string) (*http.Response, string) {
	return br.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (br *browser) post(path string, form url.Values) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return br.do(req)
}

func (br *browser) postJSON(path string, body any) (*http.Response, string) {
	raw, err := json.Marshal(body)
	require.NoError(br.t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return br.do(req)
}

func (br *browser) login(email, password string) {
	br.t.Helper()
	resp, _ := br.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(br.t, fiber.StatusFound, resp.StatusCode)
	require.Equal(br.t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))
}

func location(resp *http.Response) string { return resp.Header.Get(fiber.HeaderLocation) }

var tokenRe = regexp.MustCompile(`name="token" value="([^"]+)"`)

// ──────────────────────────────────────────────────────────────────────────────
// Guardas y navegación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_GuardasPorRol(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)

	resp, _ := br.get("/inventario")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", location(resp), "sin sesión va al login")

	br.login(apitest.ExternoEmail, apitest.ExternoPassword)

	resp, _ = br.get("/productos")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(location(resp), "/dashboard?"), "EXTERNO no entra a productos")
	assert.Contains(t, location(resp), "tipo=error")

	resp, _ = br.get("/inventario/export")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, 0, h.backend.Calls("GET", "/inventario/export_pdf"))

	resp, body := br.get("/empresas")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, `href="/productos"`, "el menú oculta secciones de ADMIN")
}

func TestRouter_RutaDesconocidaVaAlLogin(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)

	for _, path := range []string{"/", "/no-existe", "/empresas/algo/mas/profundo"} {
		resp, _ := br.get(path)
		assert.Equal(t, fiber.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", location(resp), path)
	}

	br.login(apitest.AdminEmail, apitest.AdminPassword)
	resp, _ := br.get("/no-existe")
	assert.Equal(t, "/login", location(resp))
	resp, _ = br.get("/login")
	assert.Equal(t, "/dashboard", location(resp), "con sesión el login reenvía al dashboard")
}

func TestRouter_HealthSinSesion(t *testing.T) {
	h := newHarness(t)
	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies(), "health no abre sesión")
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LoginValidacionLocal(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)

	resp, body := br.post("/login", url.Values{"email": {"no-es-email"}, "password": {""}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "field-error")
	assert.Equal(t, 0, h.backend.Calls("POST", "/auth/login"), "no se llama al backend")
}

func TestRouter_LoginCredencialesInvalidas(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)

	resp, body := br.post("/login", url.Values{"email": {apitest.AdminEmail}, "password": {"incorrecta1"}})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Credenciales inválidas")
	assert.Contains(t, body, apitest.AdminEmail, "el email se conserva en el formulario")

	resp, _ = br.get("/dashboard")
	assert.Equal(t, "/login", location(resp))
}

func TestRouter_VisitasSinCookieNoAcumulanSesiones(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(fiber.MethodGet, "/login", nil)
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 0, h.sessions.Len())

	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)
	assert.Equal(t, 1, h.sessions.Len())

	_, _ = br.post("/logout", nil)
	assert.Equal(t, 0, h.sessions.Len(), "logout la retira de memoria")
}

func TestRouter_LogoutDescartaWorkspace(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)

	resp, _ := br.get("/empresas")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, h.workspaces.Len())

	resp, _ = br.post("/logout", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", location(resp))
	assert.Equal(t, 0, h.workspaces.Len())
	assert.Empty(t, br.sid, "la cookie se borra")

	resp, _ = br.get("/dashboard")
	assert.Equal(t, "/login", location(resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Páginas
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_DashboardMuestraTotales(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedCompany(entity.Company{NIT: "900000001", Nombre: "Alfa SAS", Direccion: "Calle 1", Telefono: "3001234"})
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)

	resp, body := br.get("/dashboard")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Alfa SAS")
	assert.Contains(t, body, "Ana Admin")
}

func TestRouter_CrudDeEmpresas(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)

	resp, _ := br.get("/empresas")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	form := url.Values{"nit": {"900123456"}, "nombre": {"Empresa Uno"}, "direccion": {"Calle 1 # 2-3"}, "telefono": {"6041234567"}}
	resp, _ = br.post("/empresas", form)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, location(resp), "tipo=success")

	resp, body := br.get(location(resp))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Empresa creada exitosamente")
	assert.Equal(t, 1, strings.Count(body, "<td>900123456</td>"), "aparece una sola vez")
	assert.Equal(t, 1, h.backend.Calls("GET", "/empresas"), "la página no se recarga tras crear")

	resp, body = br.post("/empresas", form)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, "NIT duplicado")
	assert.Contains(t, body, "Ya existe empresa con este nit.")

	form.Set("nombre", "Empresa Renombrada")
	resp, _ = br.post("/empresas/900123456", form)
	assert.Contains(t, location(resp), "tipo=success")

	resp, body = br.post("/empresas/900123456/eliminar", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Empresa Renombrada")
	m := tokenRe.FindStringSubmatch(body)
	require.Len(t, m, 2, "el diálogo lleva el token de confirmación")
	assert.Len(t, h.backend.Companies(), 1, "pedir confirmación no borra")

	resp, _ = br.post("/empresas/confirmar", url.Values{"token": {m[1]}, "accion": {"confirmar"}})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, location(resp), "tipo=success")
	assert.Empty(t, h.backend.Companies())
}

func TestRouter_InventarioRecargaOpcionesAlMontarse(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)

	resp, body := br.get("/inventario")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, `<option value="900123456"`)

	form := url.Values{"nit": {"900123456"}, "nombre": {"Empresa Uno"}, "direccion": {"Calle 1 # 2-3"}, "telefono": {"6041234567"}}
	resp, _ = br.post("/empresas", form)
	require.Contains(t, location(resp), "tipo=success")

	resp, body = br.get("/inventario")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<option value="900123456"`, "la empresa nueva se puede elegir")
	assert.Equal(t, 2, h.backend.Calls("GET", "/empresas"), "cada montaje vuelve a pedir las empresas")

	_, _ = br.get("/inventario?q=alfa")
	assert.Equal(t, 2, h.backend.Calls("GET", "/empresas"), "filtrar no vuelve a cargar")
}

func TestRouter_CancelarEliminacionNoLlamaAlBackend(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedCompany(entity.Company{NIT: "900000001", Nombre: "Alfa SAS", Direccion: "Calle 1", Telefono: "3001234"})
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)
	br.get("/empresas")

	_, body := br.post("/empresas/900000001/eliminar", nil)
	m := tokenRe.FindStringSubmatch(body)
	require.Len(t, m, 2)

	resp, _ := br.post("/empresas/confirmar", url.Values{"token": {m[1]}, "accion": {"cancelar"}})
	assert.Equal(t, "/empresas", location(resp))
	assert.Equal(t, 0, h.backend.Calls("DELETE", "/empresas/900000001"))

	resp, _ = br.post("/empresas/confirmar", url.Values{"token": {m[1]}, "accion": {"confirmar"}})
	assert.Contains(t, location(resp), "tipo=error", "el token cancelado ya no sirve")
	assert.Len(t, h.backend.Companies(), 1)
}

func TestRouter_ExportarInventario(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedCompany(entity.Company{NIT: "900000001", Nombre: "Alfa SAS", Direccion: "Calle 1", Telefono: "3001234"})
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)

	resp, body := br.get("/inventario/export?empresa=900000001")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "inventario_900000001_")
	assert.True(t, strings.HasPrefix(body, apitest.PDFPrefix))

	resp, body = br.get("/inventario/reporte")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "reporte_inventario_")
	assert.True(t, strings.HasPrefix(body, "%PDF"))
}

func TestRouter_EnviarInventarioPorEmail(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)
	br.login(apitest.AdminEmail, apitest.AdminPassword)

	resp, body := br.post("/inventario/email", url.Values{"email": {"no-valido"}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "field-error")
	assert.Empty(t, h.backend.Emails())

	resp, _ = br.post("/inventario/email", url.Values{"email": {"gerencia@alfa.test"}})
	assert.Contains(t, location(resp), "tipo=success")
	require.Len(t, h.backend.Emails(), 1)
	assert.Equal(t, "gerencia@alfa.test", h.backend.Emails()[0].Email)
}

// ──────────────────────────────────────────────────────────────────────────────
// Chat
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ChatRequiereSesion(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)

	resp, body := br.get("/chat")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &e))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
}

func TestRouter_ChatConversacion(t *testing.T) {
	h := newHarness(t)
	br := h.browser(t)
	br.login(apitest.ExternoEmail, apitest.ExternoPassword)

	resp, body := br.get("/chat")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var state struct {
		Open     bool                 `json:"open"`
		Messages []entity.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &state))
	assert.True(t, state.Open)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, chat.Welcome, state.Messages[0].Content)

	resp, _ = br.postJSON("/chat/message", dto.ChatSendRequest{Message: "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, h.backend.Calls("POST", "/chatbot/message"))

	resp, body = br.postJSON("/chat/message", dto.ChatSendRequest{Message: "hola"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reply struct {
		Reply     entity.ChatMessage   `json:"reply"`
		SessionID entity.SessionID     `json:"session_id"`
		Messages  []entity.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &reply))
	assert.Equal(t, entity.ChatRoleModel, reply.Reply.Role)
	assert.Equal(t, apitest.Reply("hola"), reply.Reply.Content)
	assert.False(t, reply.SessionID.IsZero())
	assert.Len(t, reply.Messages, 3)

	resp, body = br.get("/chat/me")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal([]byte(body), &me))
	assert.Equal(t, apitest.ExternoEmail, me.Email)
	assert.False(t, me.IsAdmin)
}
