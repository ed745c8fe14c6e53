// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	StorageDriver      string
	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	TxStatementTimeout time.Duration
	MigrateOnStart     bool

	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	// RateLimit uses the ulule format, e.g. "100-M"; empty disables it
	RateLimit   string
	CORSOrigins []string

	WorkerPollInterval time.Duration
	WorkerBatchSize    int
}

// IsDevelopment reports whether the process runs in a dev environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev" || c.AppEnv == "local"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TX_STATEMENT_TIMEOUT", "30s")
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("IDEMPOTENCY_ENABLED", true)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("RATE_LIMIT", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("WORKER_POLL_INTERVAL", "5s")
	v.SetDefault("WORKER_BATCH_SIZE", 100)
}

// Load reads .env when present, then the environment. Real environment
// variables win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:             strings.ToLower(v.GetString("APP_ENV")),
		Port:               v.GetString("APP_PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		StorageDriver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBMaxConns:         v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:         v.GetInt32("DB_MIN_CONNS"),
		TxStatementTimeout: v.GetDuration("TX_STATEMENT_TIMEOUT"),
		MigrateOnStart:     v.GetBool("MIGRATE_ON_START"),
		IdempotencyEnabled: v.GetBool("IDEMPOTENCY_ENABLED"),
		IdempotencyTTL:     v.GetDuration("IDEMPOTENCY_TTL"),
		RateLimit:          strings.TrimSpace(v.GetString("RATE_LIMIT")),
		CORSOrigins:        splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		WorkerPollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
		WorkerBatchSize:    v.GetInt("WORKER_BATCH_SIZE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.Port == "" {
		errs = append(errs, errors.New("APP_PORT is required"))
	}
	if c.DBMaxConns < 1 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be positive"))
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS"))
	}
	if c.TxStatementTimeout < 0 {
		errs = append(errs, errors.New("TX_STATEMENT_TIMEOUT must not be negative"))
	}
	if c.IdempotencyEnabled && c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}
	if c.WorkerPollInterval <= 0 {
		errs = append(errs, errors.New("WORKER_POLL_INTERVAL must be positive"))
	}
	if c.WorkerBatchSize < 1 {
		errs = append(errs, errors.New("WORKER_BATCH_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
