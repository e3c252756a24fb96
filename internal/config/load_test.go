package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	t.Setenv("BOOKSTORE_DATABASE_URL", "postgres://localhost:5432/bookstore")
	t.Setenv("BOOKSTORE_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/bookstore", cfg.Database.URL)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)

	// Defaults fill in everything not set through the environment.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 30, cfg.Throttle.AnonymousPerMinute)
	assert.Equal(t, 120, cfg.Throttle.CustomerPerMinute)
	assert.Equal(t, 300, cfg.Throttle.StaffPerMinute)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("BOOKSTORE_DATABASE_URL", "postgres://localhost:5432/bookstore")
	t.Setenv("BOOKSTORE_AUTH_JWT_SECRET", testSecret)
	t.Setenv("BOOKSTORE_SERVER_PORT", "9090")
	t.Setenv("BOOKSTORE_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("BOOKSTORE_AUTH_JWT_SECRET", testSecret)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	t.Setenv("BOOKSTORE_DATABASE_URL", "postgres://localhost:5432/bookstore")
	t.Setenv("BOOKSTORE_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
