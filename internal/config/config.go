package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var AppEnv Config

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port               string
	Environment        string
	StoreDriver        string
	MongoURI           string
	DBName             string
	PostgresDSN        string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RedisURL           string
	CartTTL            time.Duration
	KafkaBrokers       []string
	KafkaTopic         string
	Location           *time.Location
	LoginRatePerMinute int
	SeedDemoUsers      bool
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("ACCESS_TOKEN_TTL", 720)
	v.SetDefault("CART_TTL", 24)
	v.SetDefault("KAFKA_TOPIC", "order-events")
	v.SetDefault("STORE_TIMEZONE", "Asia/Taipei")
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 20)
	v.SetDefault("SEED_DEMO_USERS", false)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		Port:               strings.TrimSpace(v.GetString("PORT")),
		Environment:        strings.TrimSpace(v.GetString("APP_ENV")),
		StoreDriver:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		MongoURI:           strings.TrimSpace(v.GetString("MONGO_URI")),
		DBName:             strings.TrimSpace(v.GetString("DB_NAME")),
		PostgresDSN:        strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		JWTSecret:          strings.TrimSpace(v.GetString("JWT_SECRET")),
		AccessTokenTTL:     positiveDuration(v.GetInt("ACCESS_TOKEN_TTL"), 720, time.Minute),
		RedisURL:           strings.TrimSpace(v.GetString("REDIS_URL")),
		CartTTL:            positiveDuration(v.GetInt("CART_TTL"), 24, time.Hour),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:         strings.TrimSpace(v.GetString("KAFKA_TOPIC")),
		Location:           loadLocation(v.GetString("STORE_TIMEZONE")),
		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
		SeedDemoUsers:      v.GetBool("SEED_DEMO_USERS"),
	}
}

func positiveDuration(value, defaultValue int, unit time.Duration) time.Duration {
	if value > 0 {
		return time.Duration(value) * unit
	}
	return time.Duration(defaultValue) * unit
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func loadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("unknown STORE_TIMEZONE %q, falling back to local time: %v", name, err)
		return time.Local
	}
	return loc
}
