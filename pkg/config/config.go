package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Storage StorageConfig
	Redis   RedisConfig
	UI      UIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOOKWORM_APP_ENV" default:"dev"`
	Port         string `envconfig:"BOOKWORM_APP_PORT" default:"7150"`
	LogLevel     string `envconfig:"BOOKWORM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKWORM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the remote bookworm catalog/auth/order API.
type BackendConfig struct {
	BaseURL string        `envconfig:"BOOKWORM_BACKEND_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"BOOKWORM_BACKEND_TIMEOUT" default:"15s"`
}

// StorageConfig selects the device-local key/value backend.
type StorageConfig struct {
	Driver     string `envconfig:"BOOKWORM_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"BOOKWORM_STORAGE_SQLITE_PATH" default:"bookworm.db"`
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverSQLite, StorageDriverRedis, StorageDriverMemory:
		return nil
	}
	return fmt.Errorf("unknown storage driver %q", s.Driver)
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKWORM_REDIS_URL"`
	Address      string        `envconfig:"BOOKWORM_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKWORM_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKWORM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKWORM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKWORM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKWORM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKWORM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKWORM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// UIConfig describes the browser frontend that calls this gateway.
type UIConfig struct {
	Origin string `envconfig:"BOOKWORM_UI_ORIGIN" default:"http://localhost:5173"`
}
