// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion  string
	Development bool

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Record store backend: memory | mongo | postgres
	StoreBackend string
	SeedPath     string

	// MongoDB
	MongoURI            string
	MongoDB             string
	MongoUser           string
	MongoPassword       string
	MongoConnectTimeout time.Duration

	// PostgreSQL
	PostgresURI string

	// Run history
	RunHistoryPath string

	// Criteria parser collaborator
	ParserEndpoint     string
	ParserClientID     string
	ParserClientSecret string
	ParserTokenURL     string

	// Settings file with live tuning overrides
	SettingsPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Development:  getEnvAsBool("DEVELOPMENT", false),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		SeedPath:     getEnv("SEED_PATH", ""),

		MongoURI:            getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "flightdeck"),
		MongoUser:           getEnv("MONGO_USER", ""),
		MongoPassword:       getEnv("MONGO_PASSWORD", ""),
		MongoConnectTimeout: time.Duration(getEnvAsInt("MONGO_CONNECT_TIMEOUT", 10)) * time.Second,

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		RunHistoryPath: getEnv("RUN_HISTORY_PATH", "runs.db"),

		ParserEndpoint:     getEnv("PARSER_ENDPOINT", ""),
		ParserClientID:     getEnv("PARSER_CLIENT_ID", ""),
		ParserClientSecret: getEnv("PARSER_CLIENT_SECRET", ""),
		ParserTokenURL:     getEnv("PARSER_TOKEN_URL", ""),

		SettingsPath: getEnv("SETTINGS_PATH", ""),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
