package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTP.Addr())
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout())
	assert.Equal(t, "console_sid", cfg.Session.CookieName)
	assert.Equal(t, 12*time.Hour, cfg.Session.IdleTTL())
	assert.Equal(t, "@every 10m", cfg.Session.PurgeSchedule)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("API_URL", "https://backend.example.com/api/")
	v.Set("HTTP_PORT", "8081")
	v.Set("API_TIMEOUT_SECONDS", "abc")
	v.Set("SESSION_COOKIE_SECURE", true)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example.com/api", cfg.API.BaseURL, "se recorta la barra final")
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, 15, cfg.API.TimeoutSeconds, "valor no numérico cae al default")
	assert.True(t, cfg.Session.CookieSecure)
}

func TestFromViper_APIURLVacio(t *testing.T) {
	v := viper.New()
	v.Set("API_URL", "/")
	_, err := fromViper(v)
	assert.Error(t, err)
}
