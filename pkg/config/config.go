package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la consola (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
	Docs    DocsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP de la consola.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig backend REST consumido por la consola.
// El timeout es el del transporte; la aplicación no agrega otro.
type APIConfig struct {
	BaseURL        string // ej. http://localhost:8000/api
	TimeoutSeconds int
}

// Timeout devuelve el timeout de transporte como time.Duration.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig persistencia y ciclo de vida de las sesiones de consola.
type SessionConfig struct {
	DBPath        string // archivo bbolt con user/tokens por sesión
	CookieName    string
	CookieSecure  bool
	IdleMinutes   int    // sesiones anónimas o sin actividad más antiguas se purgan
	PurgeSchedule string // expresión cron, ej. "@every 10m"
}

// IdleTTL devuelve el tiempo máximo de inactividad de una sesión.
func (c SessionConfig) IdleTTL() time.Duration {
	if c.IdleMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.IdleMinutes) * time.Minute
}

// LogConfig nivel y destino opcional de archivo (rotado con lumberjack).
type LogConfig struct {
	Level string
	File  string
}

// DocsConfig ruta del swagger.json servido en /docs (se omite si el archivo no existe).
type DocsConfig struct {
	Path string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_URL, SESSION_DB_PATH, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "inventario-console"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3000),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(getString(v, "API_URL", "http://localhost:8000/api"), "/"),
			TimeoutSeconds: getInt(v, "API_TIMEOUT_SECONDS", 15),
		},
		Session: SessionConfig{
			DBPath:        getString(v, "SESSION_DB_PATH", "console-sessions.db"),
			CookieName:    getString(v, "SESSION_COOKIE", "console_sid"),
			CookieSecure:  getBool(v, "SESSION_COOKIE_SECURE", false),
			IdleMinutes:   getInt(v, "SESSION_IDLE_MINUTES", 720),
			PurgeSchedule: getString(v, "SESSION_PURGE_SCHEDULE", "@every 10m"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
			File:  getString(v, "LOG_FILE", ""),
		},
		Docs: DocsConfig{
			Path: getString(v, "DOCS_PATH", "./docs/swagger.json"),
		},
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: API_URL vacío")
	}
	if cfg.Session.CookieName == "" {
		return nil, fmt.Errorf("config: SESSION_COOKIE vacío")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
