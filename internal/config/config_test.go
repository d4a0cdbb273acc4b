package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "garmentshop", cfg.Service.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Shop.RequireShippingFields)
	assert.True(t, cfg.Shop.SeedOnStart)
	assert.Equal(t, "garmentshop-dev-secret", cfg.SessionSecret())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("SHOP_REQUIRE_SHIPPING_FIELDS", "true")
	t.Setenv("RABBIT_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.MongoURI)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Shop.RequireShippingFields)
	assert.Equal(t, "garmentshop.events", cfg.Rabbit.Exchange)
	assert.Equal(t, "s3cret", cfg.SessionSecret())
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":     {"STORE_DRIVER": "postgres"},
		"secret outside dev": {"APP_ENV": "prod"},
		"bad ratio":          {"OTEL_SAMPLE_RATIO": "1.5"},
		"bad duration":       {"JWT_TTL": "forever"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
