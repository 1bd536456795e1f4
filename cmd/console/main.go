package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-console/internal/application/session"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/inventario-console/internal/infrastructure/bolt"
	infrapdf "github.com/jhoicas/inventario-console/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/inventario-console/internal/interfaces/http"
	"github.com/jhoicas/inventario-console/pkg/config"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("api", cfg.API.BaseURL).
		Msg("iniciando consola")

	store, err := bolt.Open(cfg.Session.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Session.DBPath).Msg("abrir almacenamiento de sesiones")
	}
	defer store.Close()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), log)

	sessions, err := session.NewManager(store, api.NewAuthClient(client), log, cfg.Session.IdleTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("hidratar sesiones")
	}
	defer sessions.Close()

	workspaces := usecase.NewWorkspaces(usecase.Deps{
		Companies: api.NewCompanyClient(client),
		Products:  api.NewProductClient(client),
		Inventory: api.NewInventoryClient(client),
		Dashboard: api.NewDashboardClient(client),
		Chat:      api.NewChatbotClient(client),
		Reports:   infrapdf.NewInventoryReportGenerator(cfg.App.Name),
		Log:       log,
	})
	// logout y purga descartan las páginas de la sesión
	sessions.OnDrop(workspaces.Drop)

	if err := sessions.StartJanitor(cfg.Session.PurgeSchedule); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Session.PurgeSchedule).Msg("programar purga de sesiones")
	}

	views, err := httpRouter.NewViews()
	if err != nil {
		log.Fatal().Err(err).Msg("plantillas")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.API.Timeout() + time.Second*5,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions:   sessions,
		Workspaces: workspaces,
		Views:      views,
		Cookie: httpRouter.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.IdleTTL(),
		},
		Log:      log,
		AppName:  cfg.App.Name,
		DocsPath: cfg.Docs.Path,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("consola detenida")
}
