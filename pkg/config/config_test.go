package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/sanse-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "Otro", cfg.Sync.Supplier)
	assert.Equal(t, 30*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Sync.LockTTL)
	assert.Equal(t, []string{"Alcohol"}, cfg.Sync.Bases.Alcohol)
	assert.Equal(t, []string{"Frascos femeninos", "Frasco femenino"}, cfg.Sync.Bases.FemaleBottle)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SYNC_FETCH_TIMEOUT_SECONDS", "5")
	t.Setenv("SYNC_BASE_BOX", " Caja , Cajas ,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, []string{"Caja", "Cajas"}, cfg.Sync.Bases.Box)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoad_ProduccionExigeSecretos(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s")
	_, err := config.Load()
	assert.Error(t, err, "sin CRON_SECRET")

	t.Setenv("CRON_SECRET", "c")
	_, err = config.Load()
	assert.NoError(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "sanse", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/sanse?sslmode=disable", db.ConnectionString())

	db.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", db.ConnectionString())
}
