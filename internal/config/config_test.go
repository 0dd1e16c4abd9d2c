package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.False(t, cfg.Server.DebugRoutes)
	assert.Equal(t, "http://localhost:8080", cfg.Upstream.BaseURL)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.Gateway.URL)
	assert.Equal(t, time.Hour, cfg.Session.CookieTTL)
	assert.Equal(t, "chat_bff_events", cfg.AMQP.Exchange)
	assert.Equal(t, "audit.chat_bff", cfg.AMQP.AuditRoutingKey)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4000
  environment: production
upstream:
  base_url: https://api.example.com
session:
  cookie_ttl: 30m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Session.CookieTTL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "ws://localhost:8080/ws", cfg.Gateway.URL)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	t.Setenv("CHATBFF_SERVER_PORT", "5000")
	t.Setenv("CHATBFF_UPSTREAM_BASE_URL", "https://staging.example.com")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "https://staging.example.com", cfg.Upstream.BaseURL)
}
