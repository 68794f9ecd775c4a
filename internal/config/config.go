package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MINISHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Cart      CartConfig
	Catalog   CatalogConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
}

// Load reads .env files when present, then the process environment.
// Variables already set in the environment win over .env values.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && len(dotenv) > 0 {
		return nil, fmt.Errorf("loading dotenv: %w", err)
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("MINISHOP_STORE_DSN is required for driver %q", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MINISHOP_STORE_DRIVER %q", c.Store.Driver))
	}
	if c.Checkout.Timeout <= 0 {
		errs = append(errs, errors.New("MINISHOP_CHECKOUT_TIMEOUT must be positive"))
	}
	if c.Checkout.FanOut <= 0 {
		errs = append(errs, errors.New("MINISHOP_CHECKOUT_FAN_OUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

type AppConfig struct {
	Service         string        `envconfig:"MINISHOP_SERVICE_NAME" default:"minishop-cart"`
	Version         string        `envconfig:"MINISHOP_VERSION" default:"dev"`
	Env             string        `envconfig:"MINISHOP_ENV" default:"dev"`
	HTTPAddr        string        `envconfig:"MINISHOP_HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"MINISHOP_LOG_LEVEL" default:"info"`
	LogFile         string        `envconfig:"MINISHOP_LOG_FILE"`
	ShutdownTimeout time.Duration `envconfig:"MINISHOP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type StoreConfig struct {
	Driver          string        `envconfig:"MINISHOP_STORE_DRIVER" default:"memory"`
	DSN             string        `envconfig:"MINISHOP_STORE_DSN"`
	MaxOpenConns    int           `envconfig:"MINISHOP_STORE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MINISHOP_STORE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MINISHOP_STORE_CONN_MAX_LIFETIME" default:"1h"`
}

// RedisConfig enables the shared checkout idempotency guard when URL or Address is set.
type RedisConfig struct {
	URL          string        `envconfig:"MINISHOP_REDIS_URL"`
	Address      string        `envconfig:"MINISHOP_REDIS_ADDR"`
	Password     string        `envconfig:"MINISHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MINISHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MINISHOP_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"MINISHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MINISHOP_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MINISHOP_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type CheckoutConfig struct {
	Timeout        time.Duration `envconfig:"MINISHOP_CHECKOUT_TIMEOUT" default:"10s"`
	FanOut         int           `envconfig:"MINISHOP_CHECKOUT_FAN_OUT" default:"4"`
	IdempotencyTTL time.Duration `envconfig:"MINISHOP_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type CartConfig struct {
	IdleTTL       time.Duration `envconfig:"MINISHOP_CART_IDLE_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"MINISHOP_CART_SWEEP_INTERVAL" default:"5m"`
}

type CatalogConfig struct {
	// SeedFile overrides the bundled catalog.
	SeedFile string `envconfig:"MINISHOP_CATALOG_SEED_FILE"`
	Seed     bool   `envconfig:"MINISHOP_CATALOG_SEED" default:"true"`
}

type EventsConfig struct {
	QueueSize      int           `envconfig:"MINISHOP_EVENTS_QUEUE_SIZE" default:"1024"`
	Concurrency    int           `envconfig:"MINISHOP_EVENTS_CONCURRENCY" default:"8"`
	HandlerTimeout time.Duration `envconfig:"MINISHOP_EVENTS_HANDLER_TIMEOUT" default:"30s"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}
