package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "REDIS_ENABLED", "LOCK_WAIT", "LOCK_TTL", "SEED_FILE"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Scheduling.LockWait)
	assert.Equal(t, 10*time.Second, cfg.Scheduling.LockTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_SchedulingConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("LOCK_WAIT", "500ms")
	t.Setenv("SEED_FILE", "testdata/seed.yaml")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduling.LockWait)
	assert.Equal(t, "testdata/seed.yaml", cfg.Scheduling.SeedFile)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsLockTTLBelowWait(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LOCK_TTL", "1s")
	t.Setenv("LOCK_WAIT", "2s")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "carebook", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=carebook sslmode=disable", cfg.DatabaseDSN())
}
