package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config aggregates the runtime settings of the service.
type Config struct {
	Addr     string
	DBPath   string
	DBEcho   bool
	LogLevel string
}

// Load reads configuration from the environment, honouring a local .env
// file when one exists. Every setting has a default, so Load never fails.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:     envOrDefault("TASKS_ADDR", ":8080"),
		DBPath:   envOrDefault("TASKS_DB_PATH", "database.db"),
		DBEcho:   envBool("TASKS_DB_ECHO", false),
		LogLevel: envOrDefault("TASKS_LOG_LEVEL", "info"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
