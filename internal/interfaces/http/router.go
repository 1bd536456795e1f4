package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions   SessionSource
	Workspaces *usecase.Workspaces
	Views      *Views
	Cookie     CookieConfig
	Log        *logger.Logger
	AppName    string
	DocsPath   string // swagger.json; si no existe no se monta /docs
}

// Router registra las rutas de la consola.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}

	// Fuera de la sesión: no crean cookie ni workspace.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.DocsPath != "" {
		if _, err := os.Stat(deps.DocsPath); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.DocsPath,
				Path:     "docs",
				Title:    deps.AppName + " API",
			}))
		}
	}

	app.Use(SessionMiddleware(deps.Sessions, deps.Cookie))
	app.Use(RequestLogger(deps.Log))

	// Auth (público)
	authHandler := NewAuthHandler(deps.Views, deps.Cookie)
	app.Get("/login", authHandler.LoginPage)
	app.Post("/login", authHandler.Login)
	app.Get("/register", authHandler.RegisterPage)
	app.Post("/register", authHandler.Register)
	app.Post("/logout", authHandler.Logout)

	// Chat (JSON, cualquier usuario autenticado)
	chatHandler := NewChatHandler(deps.Workspaces)
	chat := app.Group("/chat", RequireAuthJSON())
	chat.Get("/", chatHandler.Open)
	chat.Post("/message", chatHandler.Send)
	chat.Post("/new", chatHandler.NewChat)
	chat.Post("/close", chatHandler.Close)
	chat.Get("/sessions", chatHandler.Sessions)
	chat.Post("/resume", chatHandler.Resume)
	chat.Delete("/session", chatHandler.DeleteSession)
	chat.Get("/me", chatHandler.Me)

	// Rutas protegidas (requieren sesión iniciada)
	protected := app.Group("/", RequireAuth())

	dashboardHandler := NewDashboardHandler(deps.Workspaces, deps.Views)
	protected.Get("/dashboard", dashboardHandler.Show)

	// Empresas (cualquier rol; eliminar lo restringe la página)
	companyHandler := NewCompanyHandler(deps.Workspaces, deps.Views)
	protected.Get("/empresas", companyHandler.List)
	protected.Post("/empresas", companyHandler.Create)
	protected.Post("/empresas/recargar", companyHandler.Reload)
	protected.Post("/empresas/confirmar", companyHandler.Confirm)
	protected.Post("/empresas/:nit/eliminar", companyHandler.RequestDelete)
	protected.Post("/empresas/:nit", companyHandler.Update)

	// Solo ADMIN
	productHandler := NewProductHandler(deps.Workspaces, deps.Views)
	products := protected.Group("/productos", RequireAdmin())
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Post("/recargar", productHandler.Reload)
	products.Post("/confirmar", productHandler.Confirm)
	products.Post("/:codigo/eliminar", productHandler.RequestDelete)
	products.Post("/:codigo", productHandler.Update)

	inventoryHandler := NewInventoryHandler(deps.Workspaces, deps.Views)
	inventory := protected.Group("/inventario", RequireAdmin())
	inventory.Get("/", inventoryHandler.List)
	inventory.Get("/export", inventoryHandler.Export)
	inventory.Get("/reporte", inventoryHandler.Report)
	inventory.Post("/", inventoryHandler.Create)
	inventory.Post("/recargar", inventoryHandler.Reload)
	inventory.Post("/confirmar", inventoryHandler.Confirm)
	inventory.Post("/email", inventoryHandler.Email)
	inventory.Post("/:id/eliminar", inventoryHandler.RequestDelete)
	inventory.Post("/:id", inventoryHandler.Update)

	// Cualquier otra ruta vuelve al login (o al dashboard, vía LoginPage, si hay sesión).
	app.Use(func(c *fiber.Ctx) error {
		return c.Redirect("/login", fiber.StatusFound)
	})
}
