package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record store backends.
const (
	StoreBackendDatabase = "database"
	StoreBackendREST     = "rest"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Admin gate
	AdminEmails     []string
	AdminPasscodes  []string
	AdminSessionTTL time.Duration

	// Password reset tokens (fernet key, base64)
	ResetTokenKey string

	// Record store
	StoreBackend     string
	ServiceURL       string
	ServicePublicKey string
	StoreTimeout     time.Duration

	// Reconciliation (cron spec, empty disables)
	ResyncSchedule string

	// Shared key for operator endpoints, empty disables them
	OpsAPIKey string

	// ISO 4217 code used when formatting amounts for display
	Currency string
}

// devJWTSecret is only used outside production when JWT_SECRET is unset.
const devJWTSecret = "fallback-secret-key-for-dev-only"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	env := getEnv("ENV", "development")
	config := &Config{
		Env: env,

		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "vestora"),
		DBPassword: getEnv("DB_PASSWORD", "vestora"),
		DBName:     getEnv("DB_NAME", "vestora"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "vestora.db"),

		// JWT
		JWTSecret: os.Getenv("JWT_SECRET"),

		// Admin gate
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS"), true),
		AdminPasscodes: splitList(os.Getenv("ADMIN_PASSCODES"), false),

		ResetTokenKey: os.Getenv("RESET_TOKEN_KEY"),

		// Record store
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", StoreBackendDatabase)),
		ServiceURL:       os.Getenv("SERVICE_URL"),
		ServicePublicKey: os.Getenv("SERVICE_PUBLIC_KEY"),

		ResyncSchedule: os.Getenv("RESYNC_SCHEDULE"),
		OpsAPIKey:      os.Getenv("OPS_API_KEY"),
		Currency:       strings.ToUpper(getEnv("DISPLAY_CURRENCY", "USD")),
	}

	if config.JWTSecret == "" && env != "production" {
		config.JWTSecret = devJWTSecret
	}

	config.JWTExpirationDur = parseDuration("JWT_EXPIRES_IN", 15*time.Minute)
	config.AdminSessionTTL = parseDuration("ADMIN_SESSION_TTL", 30*time.Minute)
	config.StoreTimeout = parseDuration("STORE_TIMEOUT", 10*time.Second)

	return config, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RecordStoreConfigured reports whether the selected record store has what
// it needs to connect. The database backend shares the main connection and
// is always considered configured.
func (c *Config) RecordStoreConfigured() bool {
	if c.StoreBackend != StoreBackendREST {
		return true
	}
	return c.ServiceURL != "" && c.ServicePublicKey != ""
}

// parseDuration reads a duration variable, falling back with a warning when invalid.
func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

// splitList splits a comma-separated variable, trimming blanks.
func splitList(raw string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
