package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auth-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, RegisterModeOpen, cfg.Policy.RegisterMode)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "2")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("POLICY_REGISTER_MODE", "admin")
	t.Setenv("REDIS_CACHE_TTL_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL())
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, RegisterModeAdmin, cfg.Policy.RegisterMode)
	assert.Zero(t, cfg.Redis.CacheTTL())
}

func TestValidate(t *testing.T) {
	valid := Config{
		Auth:   AuthConfig{JWTSecret: "s", TokenTTLHours: 24},
		Policy: PolicyConfig{RegisterMode: RegisterModeOpen},
	}
	require.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.Auth.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badTTL := valid
	badTTL.Auth.TokenTTLHours = 0
	assert.Error(t, badTTL.Validate())

	badMode := valid
	badMode.Policy.RegisterMode = "closed"
	assert.Error(t, badMode.Validate())

	halfAdmin := valid
	halfAdmin.Auth.AdminUsername = "root"
	assert.Error(t, halfAdmin.Validate())
}
