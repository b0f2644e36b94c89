package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.False(t, cfg.Chat.Enabled)
	require.Equal(t, "https://api.telegram.org", cfg.Chat.BaseURL)
	require.Equal(t, 7*24*time.Hour, cfg.Invites.Expiry)
	require.Equal(t, "@daily", cfg.Invites.SweepSpec)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  log_level: debug
database:
  driver: postgres
  postgres:
    host: db.internal
    database: wollyshare
    username: wolly
    password: secret
chat:
  enabled: true
  bot_token: "123:abc"
  timeout: 3s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.True(t, cfg.Chat.Enabled)
	require.Equal(t, 3*time.Second, cfg.Chat.Timeout)

	dbCfg := cfg.Database.DatabaseConnConfig()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, "wollyshare", dbCfg.Name)
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "super-secret"
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresBotTokenWhenChatEnabled(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWT.Secret = "super-secret"
	cfg.Chat.Enabled = true
	require.Error(t, cfg.Validate())

	cfg.Chat.BotToken = "123:abc"
	require.NoError(t, cfg.Validate())
}

func TestDatabaseConnConfigDefaultsToSQLite(t *testing.T) {
	cfg := DatabaseConfig{}
	require.Equal(t, "sqlite", cfg.DatabaseConnConfig().Driver)
}
