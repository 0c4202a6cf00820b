package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("SEGMENTER_MODE", "semantic")
	t.Setenv("LEFTOVER_MIN_CONFIDENCE", "0.55")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "semantic", cfg.Segmenter.Mode)
	assert.InDelta(t, 0.55, cfg.Leftover.LeftoverMinConfidence, 1e-9)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "leftover_db", cfg.Database.Name)
	assert.Equal(t, 60, cfg.Auth.AccessTokenExpireMin)
	assert.Equal(t, "leftover-images", cfg.Storage.KeyPrefix)
	assert.Equal(t, 1, cfg.Leftover.PlateClass)
	assert.Equal(t, 2, cfg.Leftover.LeftoverClass)
	assert.Equal(t, 5000, cfg.Leftover.MinPlatePixels)
	assert.Equal(t, 6, cfg.Leftover.Border)
	assert.True(t, cfg.Leftover.Weighted)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"

	t.Setenv(key, "0.25")
	assert.InDelta(t, 0.25, getEnvFloat(key, 0), 1e-9)

	t.Setenv(key, "nope")
	assert.InDelta(t, 1.5, getEnvFloat(key, 1.5), 1e-9)
}
