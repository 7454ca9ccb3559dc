package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "STORE_DRIVER", "DB_NAME", "ACCESS_TOKEN_TTL", "CART_TTL", "KAFKA_BROKERS", "STORE_TIMEZONE"} {
		t.Setenv(key, "")
	}
}

func TestFromViperDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromViper(newViper())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "storefront", cfg.DBName)
	assert.Equal(t, 720*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.CartTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "Asia/Taipei", cfg.Location.String())
}

func TestFromViperOverrides(t *testing.T) {
	clearEnv(t)
	v := newViper()
	v.Set("STORE_DRIVER", " Postgres ")
	v.Set("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	v.Set("ACCESS_TOKEN_TTL", -5)
	v.Set("CART_TTL", 2)
	v.Set("STORE_TIMEZONE", "Not/AZone")

	cfg := FromViper(v)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 720*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.CartTTL)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestValidate(t *testing.T) {
	cfg := FromViper(viper.New())
	cfg.StoreDriver = DriverMongo

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "MONGO_URI")

	cfg.JWTSecret = "secret"
	cfg.MongoURI = "mongodb://localhost:27017"
	cfg.DBName = "storefront"
	assert.NoError(t, cfg.Validate())

	cfg.StoreDriver = DriverPostgres
	assert.ErrorContains(t, cfg.Validate(), "POSTGRES_DSN")

	cfg.StoreDriver = DriverMemory
	assert.NoError(t, cfg.Validate())
	cfg.Environment = "production"
	assert.ErrorContains(t, cfg.Validate(), "not allowed in production")

	cfg.StoreDriver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "unsupported STORE_DRIVER")
}
