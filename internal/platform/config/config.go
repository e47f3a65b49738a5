package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Request rate limiting, in ulule/limiter format (e.g. "100-M").
	RateLimit string

	// Rate lock engine settings.
	RateLockingEnabled         bool
	MaxActiveLocksPerClient    int
	MaxLockDuration            time.Duration
	AllowLockExtension         bool
	MaxLockExtensionDuration   time.Duration
	LockExpiryWarningThreshold time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "fx-wallet-app")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("RATE_LOCKING_ENABLED", true)
	viper.SetDefault("MAX_ACTIVE_LOCKS_PER_CLIENT", 5)
	viper.SetDefault("MAX_LOCK_DURATION", "30m")
	viper.SetDefault("ALLOW_LOCK_EXTENSION", true)
	viper.SetDefault("MAX_LOCK_EXTENSION_DURATION", "15m")
	viper.SetDefault("LOCK_EXPIRY_WARNING_THRESHOLD", "5m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.RateLockingEnabled = viper.GetBool("RATE_LOCKING_ENABLED")
	cfg.MaxActiveLocksPerClient = viper.GetInt("MAX_ACTIVE_LOCKS_PER_CLIENT")
	if cfg.MaxActiveLocksPerClient <= 0 {
		cfg.MaxActiveLocksPerClient = 5
		log.Printf("Warning: MAX_ACTIVE_LOCKS_PER_CLIENT invalid. Defaulting to %d.\n", cfg.MaxActiveLocksPerClient)
	}

	cfg.MaxLockDuration = parseDurationOr("MAX_LOCK_DURATION", 30*time.Minute)
	cfg.AllowLockExtension = viper.GetBool("ALLOW_LOCK_EXTENSION")
	cfg.MaxLockExtensionDuration = parseDurationOr("MAX_LOCK_EXTENSION_DURATION", 15*time.Minute)
	cfg.LockExpiryWarningThreshold = parseDurationOr("LOCK_EXPIRY_WARNING_THRESHOLD", 5*time.Minute)

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
