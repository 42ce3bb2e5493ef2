package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "zenbuy")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "zenbuy")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsPath)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, int32(2), cfg.Postgres.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.Postgres.MaxConnLifetime)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MAX_CONN_LIFETIME_MINUTES", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Postgres.MaxConnLifetime)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
}

func TestLoad_BadInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_CONNS", "lots")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONNS must be an integer")
}
