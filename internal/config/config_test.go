package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "0.08", cfg.Checkout.TaxRate)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
log_level: debug
http_addr: ":9000"
checkout:
  tax_rate: "0.1"
rate_limit:
  enabled: true
  max: 3
  window: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("STOREFRONT_HTTP_ADDR", ":9100")
	t.Setenv("STOREFRONT_AUTH_JWT_SECRET", "s3cret")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTPAddr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "0.1", cfg.Checkout.TaxRate)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_MissingFileIsAllowed(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
}
