package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

type ServiceConfig struct {
	Name     string `env:"SERVICE_NAME" envDefault:"garmentshop"`
	Env      string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type StoreConfig struct {
	Driver   string `env:"STORE_DRIVER" envDefault:"memory"`
	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"garmentshop"`
}

type SessionConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	RedisAddr  string        `env:"REDIS_ADDR"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

type RabbitConfig struct {
	URL      string `env:"RABBIT_URL"`
	Exchange string `env:"RABBIT_EXCHANGE" envDefault:"garmentshop.events"`
}

type ShopConfig struct {
	RequireShippingFields bool `env:"SHOP_REQUIRE_SHIPPING_FIELDS" envDefault:"false"`
	SeedOnStart           bool `env:"SHOP_SEED_ON_START" envDefault:"true"`
}

type OtelConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

type Config struct {
	Service ServiceConfig
	HTTP    HTTPConfig
	Store   StoreConfig
	Session SessionConfig
	Rabbit  RabbitConfig
	Shop    ShopConfig
	Otel    OtelConfig
}

// Load reads the environment. Empty RABBIT_URL and REDIS_ADDR leave those
// integrations off.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDB == "" {
			return fmt.Errorf("config: STORE_DRIVER=mongo needs MONGO_URI and MONGO_DB")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want %s or %s)", c.Store.Driver, StoreMemory, StoreMongo)
	}
	if c.Session.Secret == "" && c.Service.Env != "dev" {
		return fmt.Errorf("config: JWT_SECRET is required outside dev")
	}
	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		return fmt.Errorf("config: OTEL_SAMPLE_RATIO must be within [0,1], got %v", c.Otel.SampleRatio)
	}
	return nil
}

// SessionSecret falls back to a fixed development secret when none is set.
// Validate refuses that outside dev.
func (c Config) SessionSecret() string {
	if c.Session.Secret != "" {
		return c.Session.Secret
	}
	return "garmentshop-dev-secret"
}
