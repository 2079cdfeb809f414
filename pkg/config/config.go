// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database. DatabaseURL selects PostgreSQL when set; otherwise plans
	// are stored in the SQLite file at DatabasePath.
	DatabaseURL  string
	DatabasePath string

	// Redis. Empty disables result caching.
	RedisURL string
	CacheTTL time.Duration

	// RabbitMQ. Empty disables event publishing.
	RabbitMQURL string

	// Scheduler
	BufferRatio float64
	LeadWindow  time.Duration

	// Conflict detection
	DetectorWorkers int
	CriticalWindow  time.Duration
	DefaultCapacity int

	// Vendor assignment
	MinFitness          float64
	LowFitnessThreshold float64
}

// Load loads configuration from environment variables. A .env file is
// read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DatabasePath: getEnv("GALA_DB_PATH", "gala.db"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("GALA_CACHE_TTL", 24*time.Hour),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		BufferRatio: getFloatEnv("GALA_BUFFER_RATIO", 0.10),
		LeadWindow:  getDurationEnv("GALA_LEAD_WINDOW", 30*24*time.Hour),

		DetectorWorkers: getIntEnv("GALA_DETECTOR_WORKERS", 4),
		CriticalWindow:  getDurationEnv("GALA_CRITICAL_WINDOW", 48*time.Hour),
		DefaultCapacity: getIntEnv("GALA_DEFAULT_CAPACITY", 1),

		MinFitness:          getFloatEnv("GALA_MIN_FITNESS", 0),
		LowFitnessThreshold: getFloatEnv("GALA_LOW_FITNESS_THRESHOLD", 0.5),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
