package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, 30*time.Second, cfg.TxStatementTimeout)
	assert.True(t, cfg.IdempotencyEnabled)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 5*time.Second, cfg.WorkerPollInterval)
	assert.Equal(t, 100, cfg.WorkerBatchSize)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://localhost/factura")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TX_STATEMENT_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT", " 100-M ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MIGRATE_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.TxStatementTimeout)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.MigrateOnStart)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:               "8080",
			StorageDriver:      DriverMemory,
			DBMaxConns:         10,
			DBMinConns:         1,
			IdempotencyEnabled: true,
			IdempotencyTTL:     time.Hour,
			WorkerPollInterval: time.Second,
			WorkerBatchSize:    10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid memory", mutate: func(c *Config) {}},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.StorageDriver = DriverPostgres },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.StorageDriver = "sqlite" },
			wantErr: "unknown STORAGE_DRIVER",
		},
		{
			name:    "min above max",
			mutate:  func(c *Config) { c.DBMinConns = 20 },
			wantErr: "DB_MIN_CONNS",
		},
		{
			name:    "zero ttl",
			mutate:  func(c *Config) { c.IdempotencyTTL = 0 },
			wantErr: "IDEMPOTENCY_TTL",
		},
		{
			name:   "zero ttl ignored when disabled",
			mutate: func(c *Config) { c.IdempotencyEnabled = false; c.IdempotencyTTL = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
