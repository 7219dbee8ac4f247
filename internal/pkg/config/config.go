package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Env       string `env:"ENV,            default=development"`
	LogLevel  string `env:"LOG_LEVEL,      default=info"`
	LogPretty bool   `env:"LOG_PRETTY,     default=false"`
	Storage   string `env:"STORAGE_DRIVER, default=mongo"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Login    LoginConfig
	Password PasswordConfig
	Metrics  MetricsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

type PostgresConfig struct {
	DSN      string `env:"POSTGRES_DSN, default=postgres://localhost:5432/backoffice?sslmode=disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS, default=10"`
}

// RedisConfig backs login throttling. An empty Addr disables throttling.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type PasswordConfig struct {
	Scheme     string `env:"PASSWORD_SCHEME, default=bcrypt"`
	BcryptCost int    `env:"BCRYPT_COST,     default=10"`
}

// MetricsConfig points at a Prometheus Pushgateway. Empty disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `env:"METRICS_PUSHGATEWAY_URL"`
	Job            string `env:"METRICS_JOB, default=backoffice"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context, dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", dotenv, err)
		}
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l using go-envconfig and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the wiring cannot act on.
func (c *Config) Validate() error {
	switch c.Storage {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage)
	}
	switch c.Password.Scheme {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("config: unknown PASSWORD_SCHEME %q", c.Password.Scheme)
	}
	return nil
}
