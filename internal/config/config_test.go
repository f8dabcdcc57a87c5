package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultKaiterraBaseURL, cfg.KaiterraBaseURL)
	assert.Equal(t, 30*time.Second, cfg.KaiterraTimeout)
	assert.Equal(t, 10, cfg.RegistrationRate)
	assert.Equal(t, ":8080", cfg.Address())
	assert.True(t, cfg.IsDev())
}

func TestLoadProductionRequiresStores(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADMIN_TOKEN", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("KAITERRA_TIMEOUT", "5s")
	t.Setenv("KAITERRA_BASE_URL", "http://vendor.local/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, 90*time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 5*time.Second, cfg.KaiterraTimeout)
	assert.Equal(t, "http://vendor.local", cfg.KaiterraBaseURL)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("KAITERRA_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}
