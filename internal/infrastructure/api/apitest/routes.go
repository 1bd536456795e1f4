package apitest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	pkgjwt "github.com/jhoicas/inventario-console/pkg/jwt"
)

const localUser = "apitest_user"

func (b *Backend) app() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(b.instrument)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", b.login)
	auth.Post("/register", b.optionalAuth, b.register)
	auth.Post("/token/refresh", b.refresh)
	auth.Get("/profile", b.requireAuth, b.profile)
	auth.Get("/dashboard/stats", b.requireAuth, b.stats)

	emp := api.Group("/empresas", b.requireAuth)
	emp.Get("/", b.listEmpresas)
	emp.Post("/", b.createEmpresa)
	emp.Get("/:nit", b.getEmpresa)
	emp.Put("/:nit", b.updateEmpresa)
	emp.Delete("/:nit", b.requireAdmin, b.deleteEmpresa)

	prod := api.Group("/productos", b.requireAuth)
	prod.Get("/", b.listProductos)
	prod.Post("/", b.requireAdmin, b.createProducto)
	prod.Get("/:codigo", b.getProducto)
	prod.Put("/:codigo", b.requireAdmin, b.updateProducto)
	prod.Delete("/:codigo", b.requireAdmin, b.deleteProducto)

	inv := api.Group("/inventario", b.requireAuth, b.requireAdmin)
	inv.Get("/export_pdf", b.exportPDF)
	inv.Post("/send_email", b.sendEmail)
	inv.Get("/", b.listInventario)
	inv.Post("/", b.createInventario)
	inv.Get("/:id", b.getInventario)
	inv.Put("/:id", b.updateInventario)
	inv.Delete("/:id", b.deleteInventario)

	chat := api.Group("/chatbot", b.requireAuth)
	chat.Post("/message", b.chatMessage)
	chat.Get("/history", b.chatHistory)
	chat.Get("/sessions", b.chatSessions)
	chat.Delete("/sessions/delete", b.chatDelete)

	return app
}

// instrument cuenta llamadas, ejecuta hooks y aplica fallos inyectados.
func (b *Backend) instrument(c *fiber.Ctx) error {
	k := key(c.Method(), c.Path())
	b.mu.Lock()
	b.calls[k]++
	hook := b.hooks[k]
	var f *failure
	if q := b.failures[k]; len(q) > 0 {
		f = &q[0]
		b.failures[k] = q[1:]
	}
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	if f != nil {
		if f.body == nil {
			return c.SendStatus(f.status)
		}
		if s, ok := f.body.(string); ok {
			return c.Status(f.status).SendString(s)
		}
		return c.Status(f.status).JSON(f.body)
	}
	return c.Next()
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (b *Backend) claims(c *fiber.Ctx) (*pkgjwt.Claims, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}
	cl, err := pkgjwt.Parse(Secret, strings.TrimPrefix(h, "Bearer "))
	if err != nil || cl.TokenType != pkgjwt.TokenAccess {
		return nil, false
	}
	return cl, true
}

func (b *Backend) requireAuth(c *fiber.Ctx) error {
	cl, ok := b.claims(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Las credenciales de autenticación no se proveyeron."})
	}
	c.Locals(localUser, cl)
	return c.Next()
}

func (b *Backend) optionalAuth(c *fiber.Ctx) error {
	if cl, ok := b.claims(c); ok {
		c.Locals(localUser, cl)
	}
	return c.Next()
}

func (b *Backend) requireAdmin(c *fiber.Ctx) error {
	cl, _ := c.Locals(localUser).(*pkgjwt.Claims)
	if cl == nil || cl.Role != entity.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "No tiene permiso para realizar esta acción."})
	}
	return c.Next()
}

func currentID(c *fiber.Ctx) int64 {
	cl, _ := c.Locals(localUser).(*pkgjwt.Claims)
	if cl == nil {
		return 0
	}
	return cl.UserID
}

func (b *Backend) login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	b.mu.Lock()
	u, ok := b.users[in.Email]
	b.mu.Unlock()
	if !ok || u.password != in.Password {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Credenciales inválidas"})
	}
	pair, err := b.issue(u.User)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"user": u.User, "tokens": pair})
}

func (b *Backend) register(c *fiber.Ctx) error {
	var in struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	if in.Role == entity.RoleAdmin {
		cl, _ := c.Locals(localUser).(*pkgjwt.Claims)
		if cl == nil || cl.Role != entity.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Solo administradores pueden crear usuarios administradores"})
		}
	}
	if in.Role == "" {
		in.Role = entity.RoleExterno
	}

	b.mu.Lock()
	fields := fiber.Map{}
	if _, dup := b.users[in.Email]; dup {
		fields["email"] = []string{"Ya existe usuario con este email."}
	}
	for _, u := range b.users {
		if u.Username == in.Username {
			fields["username"] = []string{"Ya existe un usuario con este nombre."}
		}
	}
	if len(in.Password) < 8 {
		fields["password"] = []string{"Esta contraseña es demasiado corta."}
	}
	if len(fields) > 0 {
		b.mu.Unlock()
		return c.Status(fiber.StatusBadRequest).JSON(fields)
	}
	u := b.addUser(in.Email, in.Username, in.Password, in.FirstName, in.LastName, in.Role)
	b.mu.Unlock()

	pair, err := b.issue(u.User)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u.User, "tokens": pair})
}

func (b *Backend) refresh(c *fiber.Ctx) error {
	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = c.BodyParser(&in)
	cl, err := pkgjwt.Parse(Secret, in.Refresh)
	if err != nil || cl.TokenType != pkgjwt.TokenRefresh {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "El token es inválido o ha expirado"})
	}
	access, err := pkgjwt.Generate(Secret, cl.UserID, cl.Role, pkgjwt.TokenAccess, b.AccessTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"access": access})
}

func (b *Backend) profile(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.userByID(currentID(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	return c.JSON(u.User)
}

func (b *Backend) stats(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total int64
	valor := decimal.Zero
	porEmpresa := map[string]*entity.CompanyStock{}
	for _, r := range b.inventario {
		total += int64(r.Cantidad)
		if p, ok := b.productos[r.Producto]; ok {
			if cop, ok := p.PriceIn(entity.CurrencyCOP); ok {
				valor = valor.Add(cop.Mul(decimal.NewFromInt(int64(r.Cantidad))))
			}
		}
		cs := porEmpresa[r.Empresa]
		if cs == nil {
			cs = &entity.CompanyStock{NIT: r.Empresa, Nombre: b.empresas[r.Empresa].Nombre}
			porEmpresa[r.Empresa] = cs
		}
		cs.TotalProductos++
		cs.TotalCantidad += int64(r.Cantidad)
	}
	inv := make([]entity.CompanyStock, 0, len(porEmpresa))
	for _, cs := range porEmpresa {
		inv = append(inv, *cs)
	}
	sort.Slice(inv, func(i, j int) bool { return inv[i].TotalCantidad > inv[j].TotalCantidad })

	recientes := make([]entity.RecentCompany, 0, len(b.empresas))
	for _, e := range b.empresas {
		recientes = append(recientes, entity.RecentCompany{NIT: e.NIT, Nombre: e.Nombre, Telefono: e.Telefono, CreatedAt: e.CreatedAt})
	}
	sort.Slice(recientes, func(i, j int) bool { return recientes[i].NIT < recientes[j].NIT })

	u, _ := b.userByID(currentID(c))
	var usuario entity.StatsUser
	if u != nil {
		usuario = entity.StatsUser{Nombre: u.FirstName + " " + u.LastName, Email: u.Email, Rol: u.Role, EsAdmin: u.IsAdmin()}
	}
	return c.JSON(entity.DashboardStats{
		Resumen: entity.StatsSummary{
			TotalEmpresas:   len(b.empresas),
			TotalProductos:  len(b.productos),
			TotalInventario: total,
			ValorTotalCOP:   valor,
		},
		EmpresasRecientes:    recientes,
		ProductosTop:         []entity.TopProduct{},
		InventarioPorEmpresa: inv,
		ProductosPorEmpresa:  []entity.CompanyProducts{},
		Usuario:              usuario,
		ActividadReciente:    []entity.Activity{},
	})
}

// ── Empresas ─────────────────────────────────────────────────────────────────

type empresaIn struct {
	NIT       string `json:"nit"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
}

func (b *Backend) listEmpresas(c *fiber.Ctx) error {
	return paged(c, b.Companies(), b.currentPageSize())
}

func (b *Backend) currentPageSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageSize
}

func (b *Backend) getEmpresa(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.empresas[c.Params("nit")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	return c.JSON(e)
}

func (b *Backend) createEmpresa(c *fiber.Ctx) error {
	var in empresaIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.empresas[in.NIT]; dup {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"nit": []string{"Ya existe empresa con este nit."}})
	}
	now := entity.NewTimestamp(time.Now().UTC())
	creator := ""
	if u, ok := b.userByID(currentID(c)); ok {
		creator = u.Email
	}
	e := entity.Company{
		NIT: in.NIT, Nombre: in.Nombre, Direccion: in.Direccion, Telefono: in.Telefono,
		CreatedBy: creator, CreatedAt: now, UpdatedAt: now,
	}
	b.empresas[e.NIT] = e
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (b *Backend) updateEmpresa(c *fiber.Ctx) error {
	var in empresaIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.empresas[c.Params("nit")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	e.Nombre, e.Direccion, e.Telefono = in.Nombre, in.Direccion, in.Telefono
	e.UpdatedAt = entity.NewTimestamp(time.Now().UTC())
	b.empresas[e.NIT] = e
	return c.JSON(e)
}

func (b *Backend) deleteEmpresa(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	nit := c.Params("nit")
	if _, ok := b.empresas[nit]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	delete(b.empresas, nit)
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Productos ────────────────────────────────────────────────────────────────

type productoIn struct {
	Codigo          string `json:"codigo"`
	Nombre          string `json:"nombre"`
	Caracteristicas string `json:"caracteristicas"`
	Empresa         string `json:"empresa"`
	Precios         []struct {
		Moneda string          `json:"moneda"`
		Precio decimal.Decimal `json:"precio"`
	} `json:"precios"`
}

func (b *Backend) listProductos(c *fiber.Ctx) error {
	b.mu.Lock()
	out := make([]entity.Product, 0, len(b.productos))
	for _, p := range b.productos {
		out = append(out, p)
	}
	size := b.pageSize
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return paged(c, out, size)
}

func (b *Backend) getProducto(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.productos[c.Params("codigo")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	return c.JSON(p)
}

// applyProducto requiere b.mu tomado.
func (b *Backend) applyProducto(p *entity.Product, in productoIn) fiber.Map {
	errs := fiber.Map{}
	precios := make([]entity.Price, 0, len(in.Precios))
	for _, pr := range in.Precios {
		if !pr.Precio.IsPositive() {
			errs["precios"] = []string{"El precio debe ser mayor a cero"}
			continue
		}
		b.nextPrice++
		precios = append(precios, entity.Price{ID: b.nextPrice, Moneda: pr.Moneda, Precio: pr.Precio})
	}
	if len(errs) > 0 {
		return errs
	}
	p.Nombre, p.Caracteristicas, p.Empresa, p.Precios = in.Nombre, in.Caracteristicas, in.Empresa, precios
	p.EmpresaNombre = ""
	if e, ok := b.empresas[p.Empresa]; ok {
		p.EmpresaNombre = e.Nombre
	}
	p.UpdatedAt = entity.NewTimestamp(time.Now().UTC())
	return nil
}

func (b *Backend) createProducto(c *fiber.Ctx) error {
	var in productoIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.productos[in.Codigo]; dup {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"codigo": []string{"Ya existe producto con este codigo."}})
	}
	p := entity.Product{Codigo: in.Codigo}
	if errs := b.applyProducto(&p, in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}
	p.CreatedAt = p.UpdatedAt
	b.productos[p.Codigo] = p
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (b *Backend) updateProducto(c *fiber.Ctx) error {
	var in productoIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.productos[c.Params("codigo")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	if errs := b.applyProducto(&p, in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}
	b.productos[p.Codigo] = p
	return c.JSON(p)
}

func (b *Backend) deleteProducto(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	codigo := c.Params("codigo")
	if _, ok := b.productos[codigo]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No encontrado."})
	}
	delete(b.productos, codigo)
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Inventario ───────────────────────────────────────────────────────────────

type inventarioIn struct {
	Empresa  string `json:"empresa"`
	Producto string `json:"producto"`
	Cantidad int    `json:"cantidad"`
}

func (b *Backend) listInventario(c *fiber.Ctx) error {
	filter := c.Query("empresa")
	b.mu.Lock()
	out := make([]entity.InventoryRecord, 0, len(b.inventario))
	for _, r := range b.inventario {
		if filter == "" || r.Empresa == filter {
			out = append(out, r)
		}
	}
	size := b.pageSize
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paged(c, out, size)
}

func (b *Backend) recordID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

func (b *Backend) getInventario(c *fiber.Ctx) error {
	id, _ := b.recordID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.inventario[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("Inventario con ID %d no encontrado", id)})
	}
	return c.JSON(r)
}

func (b *Backend) validateInventario(in inventarioIn) fiber.Map {
	errs := fiber.Map{}
	if _, ok := b.empresas[in.Empresa]; !ok {
		errs["empresa"] = []string{"Empresa no existe."}
	}
	if _, ok := b.productos[in.Producto]; !ok {
		errs["producto"] = []string{"Producto no existe."}
	}
	if in.Cantidad < 0 {
		errs["cantidad"] = []string{"La cantidad no puede ser negativa"}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (b *Backend) createInventario(c *fiber.Ctx) error {
	var in inventarioIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if errs := b.validateInventario(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}
	r := b.newRecord(in.Empresa, in.Producto, in.Cantidad)
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (b *Backend) updateInventario(c *fiber.Ctx) error {
	var in inventarioIn
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "JSON inválido"})
	}
	id, _ := b.recordID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.inventario[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("Inventario con ID %d no encontrado", id)})
	}
	if errs := b.validateInventario(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}
	r.Cantidad = in.Cantidad
	r.UpdatedAt = entity.NewTimestamp(time.Now().UTC())
	b.inventario[id] = r
	return c.JSON(r)
}

func (b *Backend) deleteInventario(c *fiber.Ctx) error {
	id, _ := b.recordID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.inventario[id]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("Inventario con ID %d no encontrado", id)})
	}
	delete(b.inventario, id)
	return c.Status(fiber.StatusNoContent).JSON(fiber.Map{"message": fmt.Sprintf("Inventario con ID %d eliminado exitosamente", id)})
}

// PDFPrefix primeros bytes del PDF simulado.
const PDFPrefix = "%PDF-1.4\n% apitest"

func (b *Backend) exportPDF(c *fiber.Ctx) error {
	empresa := c.Query("empresa")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.SendString(PDFPrefix + " empresa=" + empresa + "\n%%EOF")
}

func (b *Backend) sendEmail(c *fiber.Ctx) error {
	var in struct {
		Email   string `json:"email"`
		Empresa string `json:"empresa"`
	}
	_ = c.BodyParser(&in)
	if in.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "El campo email es requerido"})
	}
	b.mu.Lock()
	b.emails = append(b.emails, SentEmail{Email: in.Email, Empresa: in.Empresa})
	b.mu.Unlock()
	return c.JSON(fiber.Map{"message": "PDF enviado exitosamente a " + in.Email})
}

// ── Chatbot ──────────────────────────────────────────────────────────────────

// Reply respuesta determinista del asistente simulado.
func Reply(message string) string { return "Eco: " + message }

func (s *chatSession) view() fiber.Map {
	msgs := s.messages
	if msgs == nil {
		msgs = []entity.ServerMessage{}
	}
	return fiber.Map{
		"id":         s.id,
		"user":       s.owner,
		"created_at": s.created,
		"updated_at": s.updated,
		"is_active":  true,
		"messages":   msgs,
	}
}

func (b *Backend) chatMessage(c *fiber.Ctx) error {
	var in struct {
		Message   string           `json:"message"`
		SessionID entity.SessionID `json:"session_id"`
	}
	if err := c.BodyParser(&in); err != nil || strings.TrimSpace(in.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Datos inválidos", "details": fiber.Map{"message": []string{"Este campo es requerido."}}})
	}
	owner := currentID(c)
	now := time.Now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()
	var s *chatSession
	if !in.SessionID.IsZero() {
		if id, err := strconv.ParseInt(in.SessionID.String(), 10, 64); err == nil {
			if cs, ok := b.chats[id]; ok && cs.owner == owner {
				s = cs
			}
		}
	}
	if s == nil {
		b.nextChatID++
		s = &chatSession{id: b.nextChatID, owner: owner, created: now}
		b.chats[s.id] = s
	}
	reply := Reply(in.Message)
	n := int64(len(s.messages))
	s.messages = append(s.messages,
		entity.ServerMessage{ID: json.Number(strconv.FormatInt(n+1, 10)), Role: entity.ChatRoleUser, Content: in.Message, CreatedAt: entity.NewTimestamp(now)},
		entity.ServerMessage{ID: json.Number(strconv.FormatInt(n+2, 10)), Role: entity.ChatRoleModel, Content: reply, CreatedAt: entity.NewTimestamp(now)},
	)
	s.updated = now
	return c.JSON(fiber.Map{
		"session_id": s.id,
		"message":    reply,
		"tool_calls": nil,
		"created_at": now,
	})
}

func (b *Backend) chatHistory(c *fiber.Ctx) error {
	raw := c.Query("session_id")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id es requerido"})
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.chats[id]
	if !ok || s.owner != currentID(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Sesión no encontrada"})
	}
	return c.JSON(s.view())
}

func (b *Backend) chatSessions(c *fiber.Ctx) error {
	owner := currentID(c)
	b.mu.Lock()
	out := make([]fiber.Map, 0)
	ids := make([]int64, 0, len(b.chats))
	for id, s := range b.chats {
		if s.owner == owner {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		out = append(out, b.chats[id].view())
	}
	b.mu.Unlock()
	return c.JSON(out)
}

func (b *Backend) chatDelete(c *fiber.Ctx) error {
	id, _ := strconv.ParseInt(c.Query("session_id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.chats[id]
	if !ok || s.owner != currentID(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Sesión no encontrada"})
	}
	delete(b.chats, id)
	return c.JSON(fiber.Map{"message": "Sesión eliminada exitosamente"})
}
