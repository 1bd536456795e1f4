// seed carga empresas y productos desde CSV a través del backend REST, validando cada
// fila con las mismas reglas de los formularios de la consola.
//
// Uso: go run ./cmd/seed -empresas empresas.csv -productos productos.csv [-encoding latin1]
// Credenciales: -email/-password o SEED_EMAIL/SEED_PASSWORD. API_URL como en la consola.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/inventario-console/pkg/config"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

func main() {
	companiesPath := flag.String("empresas", "", "CSV de empresas (nit,nombre,direccion,telefono)")
	productsPath := flag.String("productos", "", "CSV de productos (codigo,nombre,caracteristicas,precio_cop,precio_usd,precio_eur)")
	encoding := flag.String("encoding", "utf-8", "codificación de los CSV: utf-8 o latin1")
	email := flag.String("email", os.Getenv("SEED_EMAIL"), "usuario ADMIN")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "contraseña")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	if *companiesPath == "" && *productsPath == "" {
		log.Fatal().Msg("indique -empresas y/o -productos")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), log)
	user, tokens, err := api.NewAuthClient(client).Login(ctx, *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("login")
	}
	log.Info().Str("usuario", user.Email).Str("rol", user.Role).Msg("sesión iniciada")

	if *companiesPath != "" {
		rows, err := readFile[companyRow](*companiesPath, *encoding)
		if err != nil {
			log.Fatal().Err(err).Str("archivo", *companiesPath).Msg("empresas")
		}
		report(log, "empresas", loadCompanies(ctx, api.NewCompanyClient(client), tokens.Access, rows))
	}
	if *productsPath != "" {
		rows, err := readFile[productRow](*productsPath, *encoding)
		if err != nil {
			log.Fatal().Err(err).Str("archivo", *productsPath).Msg("productos")
		}
		report(log, "productos", loadProducts(ctx, api.NewProductClient(client), tokens.Access, rows))
	}
}

func readFile[T any](path, encoding string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeRows[T](f, encoding)
}

func report(log *logger.Logger, kind string, res result) {
	for _, f := range res.Failed {
		log.Warn().Int("fila", f.Row).Str("clave", f.Key).Str("error", f.Error).Msg(kind + ": fila rechazada")
	}
	log.Info().Int("creados", res.Created).Int("fallidos", len(res.Failed)).Msg(kind + ": carga terminada")
}
