package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the persistent store adapter.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

// Refresh intervals for the gold price scheduler.
const (
	ForegroundRefreshInterval = 15 * time.Minute
	BackgroundRefreshInterval = 6 * time.Hour
)

// Config holds application configuration
type Config struct {
	// Runtime
	Env      string
	LogLevel string

	// Local API
	Port   string
	APIKey string

	// Persistent store
	StoreDriver   string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Gold price source
	GoldAPIURL       string
	GoldAPIKey       string
	GoldFetchTimeout time.Duration

	// Refresh scheduler
	BackgroundMode  bool
	RefreshInterval time.Duration
	StaleAfter      time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		Port:   getEnv("PORT", "8080"),
		APIKey: getEnv("API_KEY", ""),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
		DBPath:        getEnv("DB_PATH", "kumbara.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "kumbara:"),

		GoldAPIURL:       getEnv("GOLD_API_URL", "http://209.38.188.91/gold-prices"),
		GoldAPIKey:       getEnv("GOLD_API_KEY", ""),
		GoldFetchTimeout: getEnvAsDuration("GOLD_FETCH_TIMEOUT", 10*time.Second),

		BackgroundMode: getEnvAsBool("BACKGROUND_MODE", false),
		StaleAfter:     getEnvAsDuration("STALE_AFTER", 15*time.Minute),
	}

	config.RefreshInterval = ForegroundRefreshInterval
	if config.BackgroundMode {
		config.RefreshInterval = BackgroundRefreshInterval
	}
	if os.Getenv("REFRESH_INTERVAL") != "" {
		config.RefreshInterval = getEnvAsDuration("REFRESH_INTERVAL", config.RefreshInterval)
	}

	switch config.StoreDriver {
	case StoreDriverSQLite, StoreDriverRedis, StoreDriverMemory:
	default:
		log.Printf("Warning: unknown STORE_DRIVER '%s', falling back to %s\n", config.StoreDriver, StoreDriverSQLite)
		config.StoreDriver = StoreDriverSQLite
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
