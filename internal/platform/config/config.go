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

	// Balance mutation retry policy. A mutation that keeps losing the
	// compare-and-swap race gives up after BalanceMaxRetries attempts, with
	// exponential backoff starting at RetryBackoffBase.
	BalanceMaxRetries uint64
	RetryBackoffBase  time.Duration

	// Rate limiting, expressed in ulule/limiter notation (e.g. "100-M").
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BALANCE_MAX_RETRIES", 5)
	viper.SetDefault("RETRY_BACKOFF_BASE", "10ms")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.BalanceMaxRetries = viper.GetUint64("BALANCE_MAX_RETRIES")
	if cfg.BalanceMaxRetries == 0 {
		cfg.BalanceMaxRetries = 5
		log.Printf("Warning: BALANCE_MAX_RETRIES not set or zero. Defaulting to %d.\n", cfg.BalanceMaxRetries)
	}

	retryBaseStr := viper.GetString("RETRY_BACKOFF_BASE")
	retryBase, err := time.ParseDuration(retryBaseStr)
	if err != nil || retryBase <= 0 {
		retryBase = 10 * time.Millisecond
		if retryBaseStr != "" {
			log.Printf("Warning: Invalid value for RETRY_BACKOFF_BASE ('%s'). Defaulting to %s.\n", retryBaseStr, retryBase.String())
		}
	}
	cfg.RetryBackoffBase = retryBase

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "100-M"
		log.Printf("Warning: RATE_LIMIT not set. Defaulting to %s.\n", cfg.RateLimit)
	}

	return cfg, nil
}
