package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	// HTTP server
	Port string

	// Storage backend: "sqlite" or "postgres"
	DBBackend    string
	SQLiteDBPath string
	PostgresDSN  string

	// Auth
	JWTSecret        string
	JWTTokenDuration time.Duration

	// Identity provider webhook signing secret ("whsec_..."). Optional;
	// empty disables the webhook endpoint.
	WebhookSecret string
}

// Load reads configuration from environment variables, applying defaults
// for everything that has a sensible one.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DBBackend:    getEnv("DB_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/splitfair.db"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTTokenDuration: getEnvDuration("JWT_TOKEN_DURATION", 24*time.Hour),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLITE_DB_PATH cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errs = append(errs, "POSTGRES_DSN is required when using postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid db backend '%s': must be one of [sqlite postgres]", c.DBBackend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if c.JWTTokenDuration < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.JWTTokenDuration))
	}

	if c.WebhookSecret != "" && !strings.HasPrefix(c.WebhookSecret, "whsec_") {
		errs = append(errs, "invalid WEBHOOK_SECRET: must start with 'whsec_'")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
