package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/shiftline_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("ROLE_SOURCE", "")
	t.Setenv("CLIENT_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, RoleSourceLiveLookup, cfg.RoleSource)
	assert.Equal(t, []byte("test-secret"), cfg.JWTSecret)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:5173")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shiftline_test")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidRoleSource(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROLE_SOURCE", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RoleSourceToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROLE_SOURCE", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, RoleSourceToken, cfg.RoleSource)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLIENT_URL", "https://app.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.AllowedOrigins, "https://app.example.com")
	assert.Contains(t, cfg.AllowedOrigins, "https://a.example.com")
	assert.Contains(t, cfg.AllowedOrigins, "https://b.example.com")
}
