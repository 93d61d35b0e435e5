package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the CLI delivery layer's environment-sourced settings. The
// scheduling engine itself never reads the environment (spec §7); this is
// only consulted by cmd/scheduler before it builds an engine request.
type Config struct {
	AppEnv   string
	LogLevel string
	LogFormat string

	// RNGSeed seeds the multi-restart driver when the CLI doesn't pass
	// --seed explicitly. Zero is passed through as the seed value itself.
	RNGSeed int64

	MaxRestarts        int
	MaxWallClockMillis int64
	NoImprovementLimit int
}

// Load reads CLI configuration from the environment, loading a .env file
// first if one is present in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:             getEnv("SCHEDULER_ENV", "development"),
		LogLevel:           getEnv("SCHEDULER_LOG_LEVEL", "info"),
		LogFormat:          getEnv("SCHEDULER_LOG_FORMAT", "text"),
		RNGSeed:            getInt64Env("SCHEDULER_RNG_SEED", 0),
		MaxRestarts:        getIntEnv("SCHEDULER_MAX_RESTARTS", 0),
		MaxWallClockMillis: getInt64Env("SCHEDULER_MAX_WALL_CLOCK_MS", 0),
		NoImprovementLimit: getIntEnv("SCHEDULER_NO_IMPROVEMENT_LIMIT", 0),
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

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
