package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatecore/core/internal/auth"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("SERVICE_KEY", testServiceKey)
	t.Setenv("ADMIN_PASSWORD", "admin")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "/v3/api-docs", cfg.DocsAPIPath)
	assert.Equal(t, []string{"/swagger-ui.html/**", "/v3/api-docs/**", "/swagger-ui/**"}, cfg.PublicPaths)
	assert.Equal(t, "2s", cfg.IdentityLookupTimeout.String())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVICE_KEY", testServiceKey)
	t.Setenv("ADMIN_PASSWORD", "admin")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidateRejectsBadBase64(t *testing.T) {
	cfg := testConfig()
	cfg.ServiceKey = "not base64!"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidSecret)

	cfg = testConfig()
	cfg.JWTSecret = "%%%"
	assert.ErrorIs(t, cfg.Validate(), auth.ErrInvalidSecret)
}

func TestIsProductionNilSafe(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.IsProduction())
}
