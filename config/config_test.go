package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "event_master_session", cfg.Session.CookieName)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "@every 15m", cfg.Worker.RefreshCron)
	assert.True(t, cfg.Worker.InProcess)
	assert.Equal(t, time.Minute, cfg.Limits.LoginWindow)
	assert.False(t, cfg.Server.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL_DAYS", "7")
	t.Setenv("WORKER_IN_PROCESS", "false")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("LOGIN_ATTEMPTS_PER_WINDOW", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Worker.InProcess)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 3, cfg.Limits.LoginAttempts)
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CHECKIN_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CHECKIN_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Server.IsProduction())
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "event_master", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/event_master?sslmode=disable", c.DSN())

	c.URL = "postgres://other/db"
	assert.Equal(t, "postgres://other/db", c.DSN())
}
