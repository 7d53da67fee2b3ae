package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("IMPORT_MAX_ROWS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Import.MaxRows)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxFileSize)
	assert.Equal(t, 30*time.Minute, cfg.Import.SessionTTL)
	assert.Equal(t, "backoffice-imports", cfg.MinIO.Bucket)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IMPORT_MAX_ROWS", "100")
	t.Setenv("IMPORT_SESSION_TTL", "5m")
	t.Setenv("IMPORT_ASYNC", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Import.MaxRows)
	assert.Equal(t, 5*time.Minute, cfg.Import.SessionTTL)
	assert.True(t, cfg.Import.AsyncDefault)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidateProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "real-secret")
	t.Setenv("MINIO_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidateRejectsNonPositive(t *testing.T) {
	t.Setenv("IMPORT_MAX_ROWS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)

	t.Setenv("DB_PORT", "abc")
	_, err = LoadDatabaseConfig()
	assert.Error(t, err)
}
