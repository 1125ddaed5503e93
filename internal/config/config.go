package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Engine   EngineConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// EngineConfig holds the verification engine policy and principals.
//
// A zero bound disables that bound; deployments can run max-only (abuse
// prevention), min-only, or both.
type EngineConfig struct {
	AutoVerify  bool
	MinDistance int64 // meters
	MaxDistance int64 // meters
	MinDuration int64 // seconds

	AdminPrincipal    string
	VerifierPrincipal string

	// Rate table (integer token units).
	DistanceUnit        int64
	RatePerDistanceUnit int64
	DurationUnit        int64
	RatePerDurationUnit int64
	CarbonUnit          int64
	CarbonMultiplier    int64
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "greenride"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "greenride-ledger"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Engine: EngineConfig{
			AutoVerify:  getBoolEnv("ENGINE_AUTO_VERIFY", false),
			MinDistance: getInt64Env("ENGINE_MIN_DISTANCE_M", 500),
			MaxDistance: getInt64Env("ENGINE_MAX_DISTANCE_M", 200_000),
			MinDuration: getInt64Env("ENGINE_MIN_DURATION_S", 60),

			AdminPrincipal:    getEnv("ENGINE_ADMIN_PRINCIPAL", "admin"),
			VerifierPrincipal: getEnv("ENGINE_VERIFIER_PRINCIPAL", "verifier"),

			DistanceUnit:        getInt64Env("REWARD_DISTANCE_UNIT_M", 1000),
			RatePerDistanceUnit: getInt64Env("REWARD_RATE_PER_DISTANCE_UNIT", 10),
			DurationUnit:        getInt64Env("REWARD_DURATION_UNIT_S", 60),
			RatePerDurationUnit: getInt64Env("REWARD_RATE_PER_DURATION_UNIT", 1),
			CarbonUnit:          getInt64Env("REWARD_CARBON_UNIT_G", 1000),
			CarbonMultiplier:    getInt64Env("REWARD_CARBON_MULTIPLIER", 2),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
