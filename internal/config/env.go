package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every required setting that is missing for the selected
// store driver.
func (c Config) Validate() error {
	var missing []string

	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			missing = append(missing, "POSTGRES_DSN")
		}
	case DriverMemory:
		if c.Production() {
			return fmt.Errorf("STORE_DRIVER %s is not allowed in production", DriverMemory)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want %s, %s or %s)", c.StoreDriver, DriverMongo, DriverPostgres, DriverMemory)
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		missing = append(missing, "KAFKA_TOPIC")
	}

	if len(missing) > 0 {
		return errors.New("missing required env: " + strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) Production() bool {
	return c.Environment == "production"
}
