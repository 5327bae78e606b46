package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for tokens

	SigningMode string // JWT signing mode (hmac, rsa) (default: hmac)
	HMACSecret  string // Shared secret for hmac mode
	RSAKeyPath  string // Path to PEM private key for rsa mode
	RSAKeyID    string // kid published in tokens and the JWKS for rsa mode

	AccessTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	SessionPolicy string // Refresh session policy (single, multi) (default: single)

	StoreDriver string // Database driver (sqlite, postgres) (default: sqlite)
	DatabaseDSN string // DSN for postgres, file path for sqlite (default: ./hub.db)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	BlacklistSweepLimit  int           // Max blacklist entries removed per sweep (default: 1000)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer: getEnvOrDefault("HUB_ISSUER", "accesshub"),

		SigningMode: getEnvOrDefault("HUB_SIGNING_MODE", "hmac"),
		HMACSecret:  os.Getenv("HUB_HMAC_SECRET"),
		RSAKeyPath:  os.Getenv("HUB_RSA_KEY_PATH"),
		RSAKeyID:    getEnvOrDefault("HUB_RSA_KEY_ID", "hub-1"),

		AccessTTL:  getEnvDurationOrDefault("HUB_ACCESS_TTL", time.Hour),
		RefreshTTL: getEnvDurationOrDefault("HUB_REFRESH_TTL", 7*24*time.Hour),

		SessionPolicy: getEnvOrDefault("HUB_SESSION_POLICY", "single"),

		StoreDriver: getEnvOrDefault("HUB_STORE_DRIVER", "sqlite"),
		DatabaseDSN: getEnvOrDefault("HUB_DATABASE_DSN", "hub.db"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		BlacklistSweepLimit:  getEnvIntOrDefault("HUB_BLACKLIST_SWEEP_LIMIT", 1000),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// e.g. "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
